package server

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/ccview/internal/auth"
	"github.com/danmuck/ccview/internal/plugins"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/danmuck/ccview/internal/socket"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var ErrNoSession = errors.New("server: no session attached")

type messageInfo struct {
	ID        uint64             `json:"id"`
	Key       string             `json:"key"`
	Name      string             `json:"name"`
	Transport []field.Properties `json:"transport,omitempty"`
	Fields    []field.Properties `json:"fields"`
}

type decodeRequest struct {
	Protocol string `json:"protocol"`
	Data     string `json:"data" binding:"required"`
	// Partial keeps an incomplete trailing frame out of the result.
	Partial bool `json:"partial"`
}

type encodeRequest struct {
	Protocol string            `json:"protocol"`
	Message  string            `json:"message" binding:"required"`
	Index    int               `json:"index"`
	Fields   map[string]string `json:"fields"`
}

type logEntry struct {
	Seq       uint64           `json:"seq"`
	Direction string           `json:"direction"`
	LoggedAt  time.Time        `json:"logged_at"`
	Message   message.Snapshot `json:"message"`
}

func (s *Server) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.name,
		}
		if s.session != nil {
			body["session"] = s.session.ID()
			body["connected"] = s.session.Socket().Connected()
		}
		c.JSON(http.StatusOK, body)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/plugins", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"plugins": s.registry.List()})
	})
	api.GET("/protocol", s.handleProtocol)
	api.POST("/decode", s.handleDecode)
	api.POST("/encode", s.handleEncode)
	api.GET("/messages", s.handleMessages)
	if s.token != "" {
		api.POST("/send", auth.Require(auth.StaticToken{Token: s.token}), s.handleSend)
	} else {
		api.POST("/send", s.handleSend)
	}
}

func (s *Server) newProtocol(name string) (*protocol.Protocol, error) {
	if strings.TrimSpace(name) == "" {
		name = s.protocol
	}
	return s.registry.Protocol(name)
}

func (s *Server) handleProtocol(c *gin.Context) {
	p, err := s.newProtocol(c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	msgs := p.CreateAllMessages()
	out := make([]messageInfo, 0, len(msgs))
	for _, m := range msgs {
		info := messageInfo{ID: m.ID(), Key: m.IDString(), Name: m.Name(), Fields: m.Properties()}
		for _, f := range m.Transport {
			info.Transport = append(info.Transport, f.Properties())
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"name": p.Name(), "messages": out})
}

func (s *Server) handleDecode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := hex.DecodeString(strings.ReplaceAll(req.Data, " ", ""))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be hex: " + err.Error()})
		return
	}
	p, err := s.newProtocol(req.Protocol)
	if err != nil {
		writeError(c, err)
		return
	}
	msgs := p.Read(protocol.DataInfo{Timestamp: time.Now(), Data: data}, !req.Partial)
	out := make([]message.Snapshot, len(msgs))
	for i, m := range msgs {
		out[i] = m.Snapshot()
	}
	c.JSON(http.StatusOK, gin.H{"protocol": p.Name(), "messages": out, "pending": p.Pending()})
}

// build creates and fills the requested message.
func (s *Server) build(req encodeRequest) (*protocol.Protocol, *message.Message, error) {
	p, err := s.newProtocol(req.Protocol)
	if err != nil {
		return nil, nil, err
	}
	m, err := p.CreateMessage(req.Message, req.Index)
	if err != nil {
		return nil, nil, err
	}
	if err := m.SetAll(req.Fields); err != nil {
		return nil, nil, err
	}
	p.UpdateMessage(m)
	return p, m, nil
}

func (s *Server) handleEncode(c *gin.Context) {
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, m, err := s.build(req)
	if err != nil {
		writeError(c, err)
		return
	}
	info, err := p.Encode(m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hex.EncodeToString(info.Data), "message": m.Snapshot()})
}

func (s *Server) handleMessages(c *gin.Context) {
	if s.session == nil {
		writeError(c, ErrNoSession)
		return
	}
	entries := s.session.Log().List()
	out := make([]logEntry, len(entries))
	for i, e := range entries {
		out[i] = logEntry{Seq: e.Seq, Direction: string(e.Direction), LoggedAt: e.LoggedAt, Message: e.Message.Snapshot()}
	}
	c.JSON(http.StatusOK, gin.H{"session": s.session.ID(), "messages": out})
}

func (s *Server) handleSend(c *gin.Context) {
	if s.session == nil {
		writeError(c, ErrNoSession)
		return
	}
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := s.session.Protocol().CreateMessage(req.Message, req.Index)
	if err == nil {
		err = m.SetAll(req.Fields)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	if err := s.session.Send(ctx, m); err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("session", s.session.ID()).Str("message", m.IDString()).Msg("http_send")
	c.JSON(http.StatusOK, gin.H{"status": "sent", "message": m.Snapshot()})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plugins.ErrUnknownPlugin), errors.Is(err, protocol.ErrUnknownID):
		status = http.StatusNotFound
	case errors.Is(err, message.ErrNoField), errors.Is(err, field.ErrNotAssignable):
		status = http.StatusBadRequest
	case errors.Is(err, protocol.ErrMessageTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, socket.ErrNotConnected):
		status = http.StatusConflict
	case errors.Is(err, ErrNoSession):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
