// Package demo is the reference protocol. Every message exercises one family
// of field types.
//
// Frame: sync 0xab 0xcd, 2-byte size, 1-byte id, 1-byte version, payload,
// 16-bit sum checksum. All multi-byte values are big endian.
package demo

import (
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/danmuck/ccview/internal/protocol/frame"
	"github.com/danmuck/ccview/internal/protocol/message"
)

const Name = "Demo"

// Message ids.
const (
	IDIntValues uint64 = iota
	IDEnumValues
	IDBitmaskValues
	IDBitfields
	IDStrings
	IDLists
	IDOptionals
	IDFloatValues
	IDVariants
)

// DefaultVersion is the transport version stamped on new messages.
const DefaultVersion = 5

func Layout() frame.Layout {
	return frame.Layout{
		Sync:         []byte{0xab, 0xcd},
		SizeLen:      2,
		IDLen:        1,
		TransportLen: 1,
		Checksum:     frame.ChecksumSum16,
		Endian:       field.BigEndian,
		MaxSize:      4096,
	}
}

func transport() []field.Field {
	return []field.Field{
		field.NewInt(field.IntSpec{Name: "version", Type: field.Uint8, Default: DefaultVersion, Display: field.Display{ReadOnly: true}}),
	}
}

func Definitions() []*message.Definition {
	return []*message.Definition{
		intValues(),
		enumValues(),
		bitmaskValues(),
		bitfields(),
		stringsMsg(),
		lists(),
		optionals(),
		floatValues(),
		variants(),
	}
}

// New returns a fresh demo protocol. Each caller gets its own decode state.
func New() (*protocol.Protocol, error) {
	return protocol.New(protocol.Config{
		Name:        Name,
		Layout:      Layout(),
		Definitions: Definitions(),
	})
}
