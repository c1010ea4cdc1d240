// Package socket is the transport boundary. A socket delivers inbound
// timestamped buffers and accepts outbound buffers; everything it has to say
// outside the data path goes through its Reporter.
package socket

import (
	"context"
	"errors"

	"github.com/danmuck/ccview/internal/protocol"
)

var (
	ErrNotConnected     = errors.New("socket: not connected")
	ErrAlreadyConnected = errors.New("socket: already connected")
	ErrInvalidAddress   = errors.New("socket: invalid address")
)

// Inter-plugin property keys honored by TCPClient.
const (
	PropHost = "tcp.host"
	PropPort = "tcp.port"
)

type Reporter interface {
	DataReceived(info protocol.DataInfo)
	ReportError(err error)
	ConnectionStatus(connected bool)
	InterPluginConfig(props map[string]any)
}

// Socket implementations may call their Reporter from any goroutine.
type Socket interface {
	Name() string
	Start() error
	Stop()
	Connect(ctx context.Context) error
	Disconnect()
	Connected() bool
	SendData(info protocol.DataInfo)
	SetReporter(r Reporter)
	ApplyInterPluginConfig(props map[string]any)
}
