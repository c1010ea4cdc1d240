// Package rawdata is an unframed protocol. Every buffer becomes one message
// holding the bytes as they arrived.
package rawdata

import (
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/danmuck/ccview/internal/protocol/frame"
	"github.com/danmuck/ccview/internal/protocol/message"
)

const (
	Name       = "Raw Data"
	MessageKey = "RawData"
)

func Definition() *message.Definition {
	return &message.Definition{
		Key:  MessageKey,
		Name: "Raw Data",
		Fields: func() []field.Field {
			return []field.Field{field.NewRaw(field.RawSpec{Name: "data"})}
		},
	}
}

func New() (*protocol.Protocol, error) {
	return protocol.New(protocol.Config{
		Name:        Name,
		Layout:      frame.Layout{},
		Definitions: []*message.Definition{Definition()},
	})
}

// Data returns the payload of a raw data message.
func Data(m *message.Message) []byte {
	f, ok := m.Field("data")
	if !ok {
		return nil
	}
	raw, ok := f.(*field.Raw)
	if !ok {
		return nil
	}
	return raw.Bytes()
}
