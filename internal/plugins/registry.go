package plugins

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danmuck/ccview/internal/demo"
	"github.com/danmuck/ccview/internal/filter"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/rawdata"
	"github.com/danmuck/ccview/internal/socket"
)

type entry struct {
	info     Info
	socket   SocketFactory
	filter   FilterFactory
	protocol ProtocolFactory
}

// Registry is an explicit table of constructors. Callers build one with
// NewRegistry or Default and pass it where it is needed.
type Registry struct {
	mu      sync.RWMutex
	entries map[Kind]map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[Kind]map[string]entry{
		KindSocket:   {},
		KindFilter:   {},
		KindProtocol: {},
	}}
}

func (r *Registry) add(e entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.info.Kind][e.info.Name]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicateName, e.info.Kind, e.info.Name)
	}
	r.entries[e.info.Kind][e.info.Name] = e
	return nil
}

func (r *Registry) RegisterSocket(name, desc string, f SocketFactory) error {
	return r.add(entry{info: Info{Name: name, Kind: KindSocket, Description: desc}, socket: f})
}

func (r *Registry) RegisterFilter(name, desc string, f FilterFactory) error {
	return r.add(entry{info: Info{Name: name, Kind: KindFilter, Description: desc}, filter: f})
}

func (r *Registry) RegisterProtocol(name, desc string, f ProtocolFactory) error {
	return r.add(entry{info: Info{Name: name, Kind: KindProtocol, Description: desc}, protocol: f})
}

func (r *Registry) lookup(kind Kind, name string) (entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[kind][name]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s %q", ErrUnknownPlugin, kind, name)
	}
	return e, nil
}

func (r *Registry) Socket(name string, opts Options) (socket.Socket, error) {
	e, err := r.lookup(KindSocket, name)
	if err != nil {
		return nil, err
	}
	return e.socket(opts)
}

func (r *Registry) Filter(name string, opts Options) (filter.Filter, error) {
	e, err := r.lookup(KindFilter, name)
	if err != nil {
		return nil, err
	}
	return e.filter(opts)
}

// Protocol returns a new protocol instance with its own decode state.
func (r *Registry) Protocol(name string) (*protocol.Protocol, error) {
	e, err := r.lookup(KindProtocol, name)
	if err != nil {
		return nil, err
	}
	return e.protocol()
}

// List returns every registered plugin sorted by kind then name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Info
	for _, byName := range r.entries {
		for _, e := range byName {
			out = append(out, e.info)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns the registered names of one kind, sorted.
func (r *Registry) Names(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries[kind]))
	for name := range r.entries[kind] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Plugin names of the built-in table.
const (
	SocketNull         = "null"
	SocketTCPClient    = "tcp_client"
	SocketSSLClient    = "ssl_client"
	FilterLengthPrefix = "length_prefix"
	FilterChaCha20     = "chacha20"
	FilterTap          = "tap"
	ProtocolDemo       = "demo"
	ProtocolRawData    = "raw_data"
)

// Default returns a registry holding every built-in plugin.
func Default() *Registry {
	r := NewRegistry()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(r.RegisterSocket(SocketNull, "connects trivially and drops outgoing data", func(Options) (socket.Socket, error) {
		return socket.NewNull(), nil
	}))
	must(r.RegisterSocket(SocketTCPClient, "TCP client", func(opts Options) (socket.Socket, error) {
		return newTCPClient(opts, false)
	}))
	must(r.RegisterSocket(SocketSSLClient, "TCP client over TLS", func(opts Options) (socket.Socket, error) {
		return newTCPClient(opts, true)
	}))
	must(r.RegisterFilter(FilterLengthPrefix, "frames the stream with a length prefix", func(opts Options) (filter.Filter, error) {
		var cfg filter.LengthPrefixConfig
		if err := opts.Decode(&cfg); err != nil {
			return nil, err
		}
		return filter.NewLengthPrefix(cfg)
	}))
	must(r.RegisterFilter(FilterChaCha20, "ChaCha20 stream cipher", func(opts Options) (filter.Filter, error) {
		var cfg filter.ChaCha20Config
		if err := opts.Decode(&cfg); err != nil {
			return nil, err
		}
		return filter.NewChaCha20(cfg)
	}))
	must(r.RegisterFilter(FilterTap, "logs traffic at debug level", func(opts Options) (filter.Filter, error) {
		var cfg filter.TapConfig
		if err := opts.Decode(&cfg); err != nil {
			return nil, err
		}
		return filter.NewTap(cfg), nil
	}))
	must(r.RegisterProtocol(ProtocolDemo, "demo protocol", demo.New))
	must(r.RegisterProtocol(ProtocolRawData, "unframed raw bytes", rawdata.New))
	return r
}

// tcpOptions are the session file settings of the TCP sockets. Durations are
// in milliseconds.
type tcpOptions struct {
	Host             string           `toml:"host"`
	Port             int              `toml:"port"`
	ConnectTimeoutMS int              `toml:"connect_timeout_ms"`
	WriteTimeoutMS   int              `toml:"write_timeout_ms"`
	Attempts         int              `toml:"attempts"`
	BackoffInitialMS int              `toml:"backoff_initial_ms"`
	BackoffMaxMS     int              `toml:"backoff_max_ms"`
	TLS              socket.TLSConfig `toml:"tls"`
}

func newTCPClient(opts Options, forceTLS bool) (socket.Socket, error) {
	var o tcpOptions
	if err := opts.Decode(&o); err != nil {
		return nil, err
	}
	cfg := socket.DefaultTCPConfig()
	if o.Host != "" {
		cfg.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Port = o.Port
	}
	if o.ConnectTimeoutMS > 0 {
		cfg.ConnectTimeout = time.Duration(o.ConnectTimeoutMS) * time.Millisecond
	}
	if o.WriteTimeoutMS > 0 {
		cfg.WriteTimeout = time.Duration(o.WriteTimeoutMS) * time.Millisecond
	}
	if o.Attempts > 0 {
		cfg.Attempts = o.Attempts
	}
	if o.BackoffInitialMS > 0 {
		cfg.Backoff.InitialDelay = time.Duration(o.BackoffInitialMS) * time.Millisecond
	}
	if o.BackoffMaxMS > 0 {
		cfg.Backoff.MaxDelay = time.Duration(o.BackoffMaxMS) * time.Millisecond
	}
	cfg.TLS = o.TLS
	if forceTLS {
		cfg.TLS.Enabled = true
	}
	return socket.NewTCPClient(cfg)
}
