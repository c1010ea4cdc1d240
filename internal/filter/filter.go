// Package filter implements bidirectional byte-buffer transforms placed
// between a socket and a protocol.
//
// Inbound data runs through the filters in configuration order, outbound
// data in reverse order. A filter may return zero, one or many buffers for
// each input buffer.
package filter

import (
	"errors"

	"github.com/danmuck/ccview/internal/protocol"
)

var (
	ErrNoKey      = errors.New("filter: cipher key not configured")
	ErrInvalidKey = errors.New("filter: invalid cipher key")
	ErrFrameSize  = errors.New("filter: frame size out of range")
)

// Reporter receives the out-of-band output of a filter or socket.
type Reporter interface {
	// SendData pushes data toward the socket independent of any input.
	SendData(info protocol.DataInfo)
	ReportError(err error)
	// InterPluginConfig publishes properties other plugins may honor.
	InterPluginConfig(props map[string]any)
}

type Filter interface {
	Name() string
	Start() error
	Stop()
	RecvData(info protocol.DataInfo) []protocol.DataInfo
	SendData(info protocol.DataInfo) []protocol.DataInfo
	SocketConnectionReport(connected bool)
	ApplyInterPluginConfig(props map[string]any)
	SetReporter(r Reporter)
}

// Base provides the no-op parts of Filter. Concrete filters embed it and
// override what they need.
type Base struct {
	name     string
	reporter Reporter
}

func NewBase(name string) Base { return Base{name: name} }

func (b *Base) Name() string                          { return b.name }
func (b *Base) Start() error                          { return nil }
func (b *Base) Stop()                                 {}
func (b *Base) SocketConnectionReport(bool)           {}
func (b *Base) ApplyInterPluginConfig(map[string]any) {}
func (b *Base) SetReporter(r Reporter)                { b.reporter = r }

func (b *Base) reportError(err error) {
	if b.reporter != nil {
		b.reporter.ReportError(err)
	}
}

func (b *Base) pushData(info protocol.DataInfo) {
	if b.reporter != nil {
		b.reporter.SendData(info)
	}
}

func (b *Base) publishConfig(props map[string]any) {
	if b.reporter != nil {
		b.reporter.InterPluginConfig(props)
	}
}

// derive returns a buffer carrying data with the envelope of info.
func derive(info protocol.DataInfo, data []byte) protocol.DataInfo {
	return protocol.DataInfo{Timestamp: info.Timestamp, Data: data, Props: info.Props}
}
