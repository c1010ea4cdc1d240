package socket

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/ccview/internal/observability"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/rs/zerolog/log"
)

type TCPConfig struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	// Attempts is the number of connect attempts. Zero means one.
	Attempts int
	Backoff  BackoffConfig
	TLS      TLSConfig
}

func DefaultTCPConfig() TCPConfig {
	return TCPConfig{
		Host:           "127.0.0.1",
		Port:           20000,
		ConnectTimeout: 5 * time.Second,
		WriteTimeout:   5 * time.Second,
		Attempts:       1,
		Backoff:        DefaultBackoff(),
	}
}

// TCPClient is a TCP (optionally TLS) client socket. Received data is
// delivered from a read goroutine with tcp.from and tcp.to properties.
type TCPClient struct {
	mu       sync.Mutex
	cfg      TCPConfig
	conn     net.Conn
	reporter Reporter
	rng      *rand.Rand
	done     chan struct{}
}

func NewTCPClient(cfg TCPConfig) (*TCPClient, error) {
	if err := cfg.TLS.Validate(); err != nil {
		return nil, err
	}
	return &TCPClient{cfg: cfg, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}, nil
}

func (s *TCPClient) Name() string {
	if s.cfg.TLS.Enabled {
		return "ssl_client"
	}
	return "tcp_client"
}

func (s *TCPClient) Start() error { return nil }

func (s *TCPClient) Stop() { s.Disconnect() }

func (s *TCPClient) SetReporter(r Reporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reporter = r
}

// Addr is the configured remote address.
func (s *TCPClient) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *TCPClient) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Connect dials the configured address, retrying with backoff up to
// Attempts times, and starts the read loop.
func (s *TCPClient) Connect(ctx context.Context) error {
	if s.Connected() {
		return ErrAlreadyConnected
	}
	addr := s.Addr()
	attempts := max(s.cfg.Attempts, 1)

	var conn net.Conn
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err = s.dial(ctx, addr)
		if err == nil {
			break
		}
		log.Warn().Str("addr", addr).Int("attempt", attempt).Err(err).Msg("tcp_connect_failed")
		if attempt == attempts {
			break
		}
		delay := NextBackoffDelay(s.cfg.Backoff, attempt, s.rng)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return fmt.Errorf("socket: connect %s: %w", addr, err)
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return ErrAlreadyConnected
	}
	s.conn = conn
	s.done = make(chan struct{})
	done := s.done
	reporter := s.reporter
	s.mu.Unlock()

	log.Info().Str("addr", addr).Str("local", conn.LocalAddr().String()).Msg("tcp_connected")
	if reporter != nil {
		reporter.ConnectionStatus(true)
	}
	go s.readLoop(conn, done)
	return nil
}

func (s *TCPClient) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: s.cfg.ConnectTimeout}
	tlsCfg, err := s.cfg.TLS.clientConfig(s.cfg.Host)
	if err != nil {
		return nil, err
	}
	if tlsCfg == nil {
		return dialer.DialContext(ctx, "tcp", addr)
	}
	td := &tls.Dialer{NetDialer: dialer, Config: tlsCfg}
	return td.DialContext(ctx, "tcp", addr)
}

func (s *TCPClient) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)
	props := func() map[string]any {
		return map[string]any{
			protocol.PropFrom: conn.RemoteAddr().String(),
			protocol.PropTo:   conn.LocalAddr().String(),
		}
	}
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			observability.RecordBytes("socket", "in", n)
			if r := s.currentReporter(); r != nil {
				r.DataReceived(protocol.DataInfo{
					Timestamp: time.Now(),
					Data:      append([]byte(nil), buf[:n]...),
					Props:     props(),
				})
			}
		}
		if err != nil {
			s.dropConn(conn, err)
			return
		}
	}
}

// dropConn clears conn if it is still current and reports the loss.
// A connection closed by Disconnect is not reported as an error.
func (s *TCPClient) dropConn(conn net.Conn, cause error) {
	s.mu.Lock()
	current := s.conn == conn
	if current {
		s.conn = nil
	}
	reporter := s.reporter
	s.mu.Unlock()
	if !current {
		return
	}
	_ = conn.Close()
	if reporter == nil {
		return
	}
	if !errors.Is(cause, io.EOF) {
		observability.RecordPipelineError("socket")
		reporter.ReportError(fmt.Errorf("socket: read: %w", cause))
	}
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("tcp_disconnected")
	reporter.ConnectionStatus(false)
}

func (s *TCPClient) currentReporter() Reporter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reporter
}

func (s *TCPClient) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	done := s.done
	s.conn = nil
	reporter := s.reporter
	s.mu.Unlock()
	if conn == nil {
		return
	}
	_ = conn.Close()
	<-done
	if reporter != nil {
		reporter.ConnectionStatus(false)
	}
}

func (s *TCPClient) SendData(info protocol.DataInfo) {
	s.mu.Lock()
	conn := s.conn
	reporter := s.reporter
	s.mu.Unlock()
	if conn == nil {
		if reporter != nil {
			reporter.ReportError(ErrNotConnected)
		}
		return
	}
	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if _, err := conn.Write(info.Data); err != nil {
		observability.RecordPipelineError("socket")
		if reporter != nil {
			reporter.ReportError(fmt.Errorf("socket: write: %w", err))
		}
		return
	}
	observability.RecordBytes("socket", "out", len(info.Data))
}

// ApplyInterPluginConfig retargets the client. The change applies on the
// next Connect.
func (s *TCPClient) ApplyInterPluginConfig(props map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := props[PropHost].(string); ok && v != "" {
		s.cfg.Host = v
	}
	switch v := props[PropPort].(type) {
	case int:
		s.cfg.Port = v
	case int64:
		s.cfg.Port = int(v)
	case string:
		if p, err := strconv.Atoi(v); err == nil {
			s.cfg.Port = p
		} else if s.reporter != nil {
			s.reporter.ReportError(fmt.Errorf("%w: port %q", ErrInvalidAddress, v))
		}
	}
}
