// Package plugins maps configuration names to socket, filter and protocol
// constructors.
package plugins

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/danmuck/ccview/internal/filter"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/socket"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrUnknownPlugin  = errors.New("plugins: unknown plugin")
	ErrDuplicateName  = errors.New("plugins: name already registered")
	ErrInvalidOptions = errors.New("plugins: invalid options")
)

type Kind string

const (
	KindSocket   Kind = "socket"
	KindFilter   Kind = "filter"
	KindProtocol Kind = "protocol"
)

// Info describes one registered plugin.
type Info struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
}

// Options are the plugin specific settings from a session file.
type Options map[string]any

// Decode copies o into the toml tagged struct v.
func (o Options) Decode(v any) error {
	if len(o) == 0 {
		return nil
	}
	raw, err := toml.Marshal(map[string]any(o))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

type SocketFactory func(opts Options) (socket.Socket, error)

type FilterFactory func(opts Options) (filter.Filter, error)

type ProtocolFactory func() (*protocol.Protocol, error)
