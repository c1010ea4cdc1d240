package socket

import (
	"context"
	"sync/atomic"

	"github.com/danmuck/ccview/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Null connects trivially and drops everything sent to it.
type Null struct {
	connected atomic.Bool
	dropped   atomic.Int64
	reporter  Reporter
}

func NewNull() *Null { return &Null{} }

func (s *Null) Name() string { return "null" }
func (s *Null) Start() error { return nil }

func (s *Null) Stop() { s.Disconnect() }

func (s *Null) Connect(context.Context) error {
	if s.connected.Swap(true) {
		return ErrAlreadyConnected
	}
	if s.reporter != nil {
		s.reporter.ConnectionStatus(true)
	}
	return nil
}

func (s *Null) Disconnect() {
	if !s.connected.Swap(false) {
		return
	}
	if s.reporter != nil {
		s.reporter.ConnectionStatus(false)
	}
}

func (s *Null) Connected() bool { return s.connected.Load() }

func (s *Null) SendData(info protocol.DataInfo) {
	s.dropped.Add(int64(len(info.Data)))
	log.Debug().Int("bytes", len(info.Data)).Msg("null_socket_drop")
}

// Dropped is the number of bytes discarded so far.
func (s *Null) Dropped() int64 { return s.dropped.Load() }

func (s *Null) SetReporter(r Reporter) { s.reporter = r }

func (s *Null) ApplyInterPluginConfig(map[string]any) {}
