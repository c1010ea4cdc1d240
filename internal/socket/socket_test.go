package socket

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/testutil/testlog"
	"github.com/danmuck/ccview/internal/testutil/tlstest"
)

type chanReporter struct {
	data   chan protocol.DataInfo
	errs   chan error
	status chan bool
}

func newChanReporter() *chanReporter {
	return &chanReporter{
		data:   make(chan protocol.DataInfo, 8),
		errs:   make(chan error, 8),
		status: make(chan bool, 8),
	}
}

func (r *chanReporter) DataReceived(info protocol.DataInfo) { r.data <- info }
func (r *chanReporter) ReportError(err error)               { r.errs <- err }
func (r *chanReporter) ConnectionStatus(connected bool)     { r.status <- connected }
func (r *chanReporter) InterPluginConfig(map[string]any)    {}

func expectStatus(t *testing.T, r *chanReporter, want bool) {
	t.Helper()
	select {
	case got := <-r.status:
		if got != want {
			t.Fatalf("expected connected=%v, got %v", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for connected=%v", want)
	}
}

func listenerPort(t *testing.T, ln net.Listener) int {
	t.Helper()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
	}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
	cfg.Jitter = true
	if got := NextBackoffDelay(cfg, 2, nil); got != 250*time.Millisecond {
		t.Fatalf("jitter without rng got=%v", got)
	}
}

func TestNullSocketDropsData(t *testing.T) {
	testlog.Start(t)
	s := NewNull()
	r := newChanReporter()
	s.SetReporter(r)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	expectStatus(t, r, true)
	if err := s.Connect(context.Background()); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}
	s.SendData(protocol.DataInfo{Data: []byte{1, 2, 3}})
	if s.Dropped() != 3 {
		t.Fatalf("expected 3 dropped bytes, got %d", s.Dropped())
	}
	s.Stop()
	expectStatus(t, r, false)
	if s.Connected() {
		t.Fatalf("expected disconnected")
	}
}

func TestTCPClientExchangesData(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	cfg := DefaultTCPConfig()
	cfg.Port = listenerPort(t, ln)
	s, err := NewTCPClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	r := newChanReporter()
	s.SetReporter(r)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	expectStatus(t, r, true)
	peer := <-accepted
	defer peer.Close()

	if _, err := peer.Write([]byte{0xab, 0xcd}); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	select {
	case info := <-r.data:
		if string(info.Data) != "\xab\xcd" {
			t.Fatalf("data mismatch: % x", info.Data)
		}
		if info.Props[protocol.PropFrom] != peer.LocalAddr().String() {
			t.Fatalf("unexpected from: %v", info.Props[protocol.PropFrom])
		}
		if info.Props[protocol.PropTo] != peer.RemoteAddr().String() {
			t.Fatalf("unexpected to: %v", info.Props[protocol.PropTo])
		}
		if info.Timestamp.IsZero() {
			t.Fatalf("missing timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for data")
	}

	s.SendData(protocol.DataInfo{Data: []byte("out")})
	got := make([]byte, 3)
	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(peer, got); err != nil || string(got) != "out" {
		t.Fatalf("peer read: %q %v", got, err)
	}

	_ = peer.Close()
	expectStatus(t, r, false)
	if s.Connected() {
		t.Fatalf("expected client to notice remote close")
	}
}

func TestTCPClientConcurrentConnectKeepsOneConnection(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	accepted := make(chan net.Conn, 2)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- c
		}
	}()

	cfg := DefaultTCPConfig()
	cfg.Port = listenerPort(t, ln)
	s, err := NewTCPClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	s.SetReporter(newChanReporter())
	defer s.Disconnect()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- s.Connect(context.Background()) }()
	}
	ok := 0
	for i := 0; i < 2; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, ErrAlreadyConnected):
			t.Fatalf("unexpected connect error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful connect, got %d", ok)
	}

	s.mu.Lock()
	live := s.conn.LocalAddr().String()
	s.mu.Unlock()
	for {
		select {
		case peer := <-accepted:
			if peer.RemoteAddr().String() == live {
				peer.Close()
				continue
			}
			_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
			if _, err := peer.Read(make([]byte, 1)); !errors.Is(err, io.EOF) {
				t.Fatalf("expected losing connection to be closed, got %v", err)
			}
			peer.Close()
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}

func TestTCPClientSendWithoutConnectionReportsError(t *testing.T) {
	testlog.Start(t)
	s, err := NewTCPClient(DefaultTCPConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	r := newChanReporter()
	s.SetReporter(r)
	s.SendData(protocol.DataInfo{Data: []byte{1}})
	if err := <-r.errs; !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestTCPClientConnectFailureHonorsAttempts(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := listenerPort(t, ln)
	_ = ln.Close()

	cfg := DefaultTCPConfig()
	cfg.Port = port
	cfg.Attempts = 2
	cfg.Backoff = BackoffConfig{InitialDelay: time.Millisecond}
	s, err := NewTCPClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := s.Connect(context.Background()); err == nil {
		t.Fatalf("expected connect failure")
	}
}

func TestTCPClientInterPluginConfigRetargets(t *testing.T) {
	testlog.Start(t)
	s, err := NewTCPClient(DefaultTCPConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	s.ApplyInterPluginConfig(map[string]any{PropHost: "10.0.0.1", PropPort: "7000"})
	if s.Addr() != "10.0.0.1:7000" {
		t.Fatalf("unexpected addr %s", s.Addr())
	}
}

func TestTLSConfigValidation(t *testing.T) {
	testlog.Start(t)
	if err := (TLSConfig{Mutual: true}).Validate(); !errors.Is(err, ErrTLSRequired) {
		t.Fatalf("expected ErrTLSRequired, got %v", err)
	}
	if err := (TLSConfig{Enabled: true}).Validate(); !errors.Is(err, ErrTLSCAFileRequired) {
		t.Fatalf("expected ErrTLSCAFileRequired, got %v", err)
	}
	if err := (TLSConfig{Enabled: true, Mutual: true, CAFile: "ca"}).Validate(); !errors.Is(err, ErrTLSCertFileRequired) {
		t.Fatalf("expected ErrTLSCertFileRequired, got %v", err)
	}
	if err := (TLSConfig{Enabled: true, Mutual: true, CAFile: "ca", CertFile: "c"}).Validate(); !errors.Is(err, ErrTLSKeyFileRequired) {
		t.Fatalf("expected ErrTLSKeyFileRequired, got %v", err)
	}
	if err := (TLSConfig{Enabled: true, Mutual: true, InsecureSkipVerify: true}).Validate(); !errors.Is(err, ErrTLSInsecureSkipNotAllow) {
		t.Fatalf("expected ErrTLSInsecureSkipNotAllow, got %v", err)
	}
	if _, err := NewTCPClient(TCPConfig{TLS: TLSConfig{Enabled: true}}); err == nil {
		t.Fatalf("expected constructor to validate tls")
	}
}

func TestSSLClientConnectsWithMutualTLS(t *testing.T) {
	testlog.Start(t)
	certs := tlstest.New(t)

	pair, err := tls.LoadX509KeyPair(certs.ServerCert, certs.ServerKey)
	if err != nil {
		t.Fatalf("load server pair: %v", err)
	}
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{pair},
		ClientAuth:   tls.RequireAnyClientCert,
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		t.Fatalf("tls listen: %v", err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_, _ = c.Write([]byte("hi"))
		_, _ = io.Copy(io.Discard, c)
	}()

	cfg := DefaultTCPConfig()
	cfg.Port = listenerPort(t, ln)
	cfg.TLS = TLSConfig{Enabled: true, Mutual: true, CAFile: certs.CA, CertFile: certs.ClientCert, KeyFile: certs.ClientKey}
	s, err := NewTCPClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if s.Name() != "ssl_client" {
		t.Fatalf("unexpected name %s", s.Name())
	}
	r := newChanReporter()
	s.SetReporter(r)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Disconnect()
	expectStatus(t, r, true)
	select {
	case info := <-r.data:
		if string(info.Data) != "hi" {
			t.Fatalf("data mismatch: %q", info.Data)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for tls data")
	}
}
