package plugins

import (
	"errors"
	"testing"

	"github.com/danmuck/ccview/internal/filter"
	"github.com/danmuck/ccview/internal/socket"
	"github.com/danmuck/ccview/internal/testutil/testlog"
)

func TestDefaultRegistryBuildsEveryPlugin(t *testing.T) {
	testlog.Start(t)
	r := Default()

	for _, name := range r.Names(KindProtocol) {
		p, err := r.Protocol(name)
		if err != nil {
			t.Fatalf("protocol %s: %v", name, err)
		}
		if len(p.Definitions()) == 0 {
			t.Fatalf("protocol %s has no messages", name)
		}
	}
	for _, name := range []string{FilterLengthPrefix, FilterChaCha20, FilterTap} {
		if _, err := r.Filter(name, nil); err != nil {
			t.Fatalf("filter %s: %v", name, err)
		}
	}
	if _, err := r.Socket(SocketNull, nil); err != nil {
		t.Fatalf("null socket: %v", err)
	}
	if got := len(r.List()); got != 8 {
		t.Fatalf("expected 8 plugins, got %d", got)
	}
}

func TestTCPOptionsApply(t *testing.T) {
	testlog.Start(t)
	s, err := Default().Socket(SocketTCPClient, Options{"host": "10.1.2.3", "port": int64(9000)})
	if err != nil {
		t.Fatalf("tcp socket: %v", err)
	}
	c := s.(*socket.TCPClient)
	if c.Addr() != "10.1.2.3:9000" {
		t.Fatalf("unexpected addr %s", c.Addr())
	}
	if c.Name() != SocketTCPClient {
		t.Fatalf("unexpected name %s", c.Name())
	}
}

func TestSSLClientRequiresCA(t *testing.T) {
	testlog.Start(t)
	if _, err := Default().Socket(SocketSSLClient, nil); !errors.Is(err, socket.ErrTLSCAFileRequired) {
		t.Fatalf("expected ErrTLSCAFileRequired, got %v", err)
	}
}

func TestFilterOptionsDecode(t *testing.T) {
	testlog.Start(t)
	f, err := Default().Filter(FilterLengthPrefix, Options{"size_len": int64(4)})
	if err != nil {
		t.Fatalf("length prefix: %v", err)
	}
	if _, ok := f.(*filter.LengthPrefix); !ok {
		t.Fatalf("unexpected filter type %T", f)
	}
	if _, err := Default().Filter(FilterTap, Options{"bogus": true}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestUnknownAndDuplicateNames(t *testing.T) {
	testlog.Start(t)
	r := Default()
	if _, err := r.Protocol("nope"); !errors.Is(err, ErrUnknownPlugin) {
		t.Fatalf("expected ErrUnknownPlugin, got %v", err)
	}
	err := r.RegisterSocket(SocketNull, "again", func(Options) (socket.Socket, error) { return socket.NewNull(), nil })
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}
