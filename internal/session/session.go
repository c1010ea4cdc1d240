// Package session ties one protocol, one filter chain and one socket together.
//
// Socket callbacks arrive on arbitrary goroutines and are queued; Run drains
// the queue on a single goroutine, so filters, the protocol decoder and the
// Handler never see concurrent calls.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/danmuck/ccview/internal/filter"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/danmuck/ccview/internal/socket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyRunning = errors.New("session: already running")
	ErrStopped        = errors.New("session: stopped")
	ErrNilProtocol    = errors.New("session: protocol required")
	ErrNilSocket      = errors.New("session: socket required")
)

// Handler observes a session. All calls happen on the Run goroutine.
type Handler interface {
	MessageReceived(m *message.Message)
	MessageSent(m *message.Message)
	ErrorReported(err error)
	ConnectionStatus(connected bool)
}

// NopHandler ignores everything.
type NopHandler struct{}

func (NopHandler) MessageReceived(*message.Message) {}
func (NopHandler) MessageSent(*message.Message)     {}
func (NopHandler) ErrorReported(error)              {}
func (NopHandler) ConnectionStatus(bool)            {}

type Options struct {
	Config   Config
	Protocol *protocol.Protocol
	Chain    *filter.Chain
	Socket   socket.Socket
	Handler  Handler
}

type Session struct {
	id      string
	cfg     Config
	proto   *protocol.Protocol
	chain   *filter.Chain
	sock    socket.Socket
	handler Handler
	log     *MessageLog

	events  chan event
	stopped chan struct{}
	running atomic.Bool
}

func New(opts Options) (*Session, error) {
	if opts.Protocol == nil {
		return nil, ErrNilProtocol
	}
	if opts.Socket == nil {
		return nil, ErrNilSocket
	}
	cfg := opts.Config.withDefaults()
	chain := opts.Chain
	if chain == nil {
		chain = filter.NewChain()
	}
	handler := opts.Handler
	if handler == nil {
		handler = NopHandler{}
	}
	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		proto:   opts.Protocol,
		chain:   chain,
		sock:    opts.Socket,
		handler: handler,
		log:     NewMessageLog(cfg.LogLimit),
		events:  make(chan event, cfg.QueueSize),
		stopped: make(chan struct{}),
	}
	s.sock.SetReporter(socketReporter{s})
	s.chain.SetReporter(chainReporter{s})
	return s, nil
}

func (s *Session) ID() string                   { return s.id }
func (s *Session) Protocol() *protocol.Protocol { return s.proto }
func (s *Session) Chain() *filter.Chain         { return s.chain }
func (s *Session) Socket() socket.Socket        { return s.sock }
func (s *Session) Log() *MessageLog             { return s.log }
func (s *Session) Running() bool                { return s.running.Load() }

// Run starts the socket and filters, optionally connects, and processes
// events until ctx is done. Pending partial input is flushed as an invalid
// message on the way out. A session runs at most once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)
	select {
	case <-s.stopped:
		return ErrStopped
	default:
	}

	if err := s.sock.Start(); err != nil {
		close(s.stopped)
		return fmt.Errorf("session: start socket %s: %w", s.sock.Name(), err)
	}
	if err := s.chain.Start(); err != nil {
		close(s.stopped)
		s.sock.Stop()
		return fmt.Errorf("session: %w", err)
	}
	log.Info().
		Str("session", s.id).
		Str("protocol", s.proto.Name()).
		Str("socket", s.sock.Name()).
		Int("filters", s.chain.Len()).
		Msg("session_started")

	if s.cfg.ConnectOnStart {
		go func() {
			if err := s.Connect(ctx); err != nil && ctx.Err() == nil {
				s.post(event{kind: eventError, err: err})
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) shutdown() {
	close(s.stopped)
	s.sock.Stop()
	s.chain.Stop()
	for _, m := range s.proto.Read(protocol.DataInfo{}, true) {
		s.received(m)
	}
	log.Info().Str("session", s.id).Int("logged", s.log.Len()).Msg("session_stopped")
}

// Connect connects the socket, bounded by the configured connect timeout.
func (s *Session) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()
	return s.sock.Connect(ctx)
}

func (s *Session) Disconnect() { s.sock.Disconnect() }

// Send encodes m and hands it to the loop. It returns once the data has
// passed the filters and reached the socket.
func (s *Session) Send(ctx context.Context, m *message.Message) error {
	reply := make(chan error, 1)
	ev := event{kind: eventSend, msg: m, reply: reply}
	select {
	case s.events <- ev:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.stopped:
	}
}

func (s *Session) handle(ev event) {
	switch ev.kind {
	case eventData:
		for _, buf := range s.chain.Recv(ev.info) {
			for _, m := range s.proto.Read(buf, false) {
				s.received(m)
			}
		}
	case eventError:
		log.Warn().Str("session", s.id).Err(ev.err).Msg("session_error")
		s.handler.ErrorReported(ev.err)
	case eventStatus:
		log.Info().Str("session", s.id).Bool("connected", ev.connected).Msg("session_connection")
		if !ev.connected {
			for _, m := range s.proto.Read(protocol.DataInfo{}, true) {
				s.received(m)
			}
		}
		s.chain.SocketConnectionReport(ev.connected)
		s.handler.ConnectionStatus(ev.connected)
	case eventConfig:
		s.chain.ApplyInterPluginConfig(ev.props)
	case eventSend:
		ev.reply <- s.send(ev.msg)
	}
}

func (s *Session) received(m *message.Message) {
	s.log.Append(DirectionReceived, m)
	s.handler.MessageReceived(m)
}

func (s *Session) send(m *message.Message) error {
	if m == nil {
		return errors.New("session: nil message")
	}
	if !s.sock.Connected() {
		return socket.ErrNotConnected
	}
	info, err := s.proto.Encode(m)
	if err != nil {
		return err
	}
	for _, buf := range s.chain.Send(info) {
		s.sock.SendData(buf)
	}
	sent := m.Clone()
	s.log.Append(DirectionSent, sent)
	s.handler.MessageSent(sent)
	return nil
}

type eventKind int

const (
	eventData eventKind = iota
	eventError
	eventStatus
	eventConfig
	eventSend
)

type event struct {
	kind      eventKind
	info      protocol.DataInfo
	err       error
	connected bool
	props     map[string]any
	msg       *message.Message
	reply     chan error
}

// socketReporter queues socket callbacks for the loop.
type socketReporter struct{ s *Session }

func (r socketReporter) DataReceived(info protocol.DataInfo) {
	r.s.post(event{kind: eventData, info: info})
}

func (r socketReporter) ReportError(err error) {
	r.s.post(event{kind: eventError, err: err})
}

func (r socketReporter) ConnectionStatus(connected bool) {
	r.s.post(event{kind: eventStatus, connected: connected})
}

func (r socketReporter) InterPluginConfig(props map[string]any) {
	r.s.post(event{kind: eventConfig, props: props})
}

// chainReporter runs on the loop goroutine, inside chain calls.
type chainReporter struct{ s *Session }

func (r chainReporter) SendData(info protocol.DataInfo) { r.s.sock.SendData(info) }

func (r chainReporter) ReportError(err error) {
	log.Warn().Str("session", r.s.id).Err(err).Msg("session_filter_error")
	r.s.handler.ErrorReported(err)
}

func (r chainReporter) InterPluginConfig(props map[string]any) {
	r.s.sock.ApplyInterPluginConfig(props)
}
