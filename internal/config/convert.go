package config

import (
	"time"

	"github.com/danmuck/ccview/internal/filter"
	"github.com/danmuck/ccview/internal/plugins"
	"github.com/danmuck/ccview/internal/session"
)

func SessionLoop(c SessionConfig) session.Config {
	out := session.DefaultConfig()
	out.ConnectOnStart = !c.ManualConnect
	if c.ConnectTimeoutMS > 0 {
		out.ConnectTimeout = time.Duration(c.ConnectTimeoutMS) * time.Millisecond
	}
	if c.QueueSize > 0 {
		out.QueueSize = c.QueueSize
	}
	if c.LogLimit > 0 {
		out.LogLimit = c.LogLimit
	}
	return out
}

// BuildSession constructs the protocol, filters and socket named by cfg.
func BuildSession(cfg Config, reg *plugins.Registry, handler session.Handler) (*session.Session, error) {
	proto, err := reg.Protocol(cfg.Protocol)
	if err != nil {
		return nil, err
	}
	filters := make([]filter.Filter, 0, len(cfg.Filters))
	for _, fc := range cfg.Filters {
		f, err := reg.Filter(fc.Type, plugins.Options(fc.Options))
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	sock, err := reg.Socket(cfg.Socket.Type, plugins.Options(cfg.Socket.Options))
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Config:   SessionLoop(cfg.Session),
		Protocol: proto,
		Chain:    filter.NewChain(filters...),
		Socket:   sock,
		Handler:  handler,
	})
}
