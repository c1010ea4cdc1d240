package message

import (
	"github.com/danmuck/ccview/internal/protocol/field"
)

const InvalidKey = "Invalid"

var invalidDefinition = &Definition{
	Key:  InvalidKey,
	Name: "Invalid Message",
	Fields: func() []field.Field {
		return []field.Field{field.NewRaw(field.RawSpec{Name: "data", Display: field.Display{ReadOnly: true}})}
	},
}

// NewInvalid wraps bytes that could not be decoded into a message.
func NewInvalid(data []byte) *Message {
	m := New(invalidDefinition)
	m.Fields[0].(*field.Raw).SetBytes(data)
	m.Raw = append([]byte(nil), data...)
	return m
}

// InvalidData returns the bytes wrapped by an invalid message.
func (m *Message) InvalidData() []byte {
	if !m.Invalid() {
		return nil
	}
	return m.Fields[0].(*field.Raw).Bytes()
}
