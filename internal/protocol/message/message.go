// Package message composes fields into protocol messages.
//
// A Definition is the static description of one message type. A Message is a
// freshly owned instance of that definition; no field is shared between two
// messages.
package message

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/danmuck/ccview/internal/protocol/field"
)

// Definition describes one message type of a protocol.
type Definition struct {
	ID uint64
	// Key is the stable display identifier. Falls back to the decimal ID.
	Key  string
	Name string
	// Fields builds the payload field tuple in wire order.
	Fields func() []field.Field
	// Transport builds the fields carried by the frame rather than the payload.
	Transport func() []field.Field
	// ReadPrepare runs before payload field idx is read.
	ReadPrepare func(idx int, fields []field.Field)
	// Refresh re-derives dependent fields and reports a change.
	Refresh func(fields []field.Field) bool
}

// IDString returns the display identifier of the definition.
func (d *Definition) IDString() string {
	if d.Key != "" {
		return d.Key
	}
	return strconv.FormatUint(d.ID, 10)
}

// Message is one decoded or user-built protocol message.
type Message struct {
	def       *Definition
	Fields    []field.Field
	Transport []field.Field
	// Props carries the transport properties of the buffer the message was
	// decoded from. It is never interpreted by the codec.
	Props     map[string]any
	Timestamp time.Time
	// Raw holds the full frame bytes as last read or written.
	Raw []byte
}

// New builds a message holding default field values.
func New(def *Definition) *Message {
	m := &Message{def: def}
	if def.Fields != nil {
		m.Fields = def.Fields()
	}
	if def.Transport != nil {
		m.Transport = def.Transport()
	}
	return m
}

func (m *Message) Definition() *Definition { return m.def }
func (m *Message) ID() uint64              { return m.def.ID }
func (m *Message) Name() string            { return m.def.Name }
func (m *Message) IDString() string        { return m.def.IDString() }

// Invalid reports whether m wraps undecodable bytes.
func (m *Message) Invalid() bool { return m.def == invalidDefinition }

// Field returns the payload field named name.
func (m *Message) Field(name string) (field.Field, bool) {
	return field.Find(m.Fields, name)
}

// TransportField returns the transport field named name.
func (m *Message) TransportField(name string) (field.Field, bool) {
	return field.Find(m.Transport, name)
}

// Read decodes the payload fields in order from buf. On failure the returned
// error is a *ReadError and the count includes bytes consumed by the fields
// read so far.
func (m *Message) Read(buf []byte) (int, error) {
	consumed := 0
	for i, f := range m.Fields {
		if m.def.ReadPrepare != nil {
			m.def.ReadPrepare(i, m.Fields)
		}
		n, err := f.Read(buf[consumed:])
		consumed += n
		if err != nil {
			return consumed, &ReadError{
				Message:    m.def.Name,
				FieldIndex: i,
				Field:      f.Name(),
				Consumed:   consumed,
				Err:        err,
			}
		}
	}
	return consumed, nil
}

// ReadTransport decodes the transport fields from buf.
func (m *Message) ReadTransport(buf []byte) (int, error) {
	consumed := 0
	for i, f := range m.Transport {
		n, err := f.Read(buf[consumed:])
		consumed += n
		if err != nil {
			return consumed, &ReadError{
				Message:    m.def.Name,
				FieldIndex: i,
				Field:      f.Name(),
				Consumed:   consumed,
				Err:        err,
			}
		}
	}
	return consumed, nil
}

// Write appends the payload encoding to dst.
func (m *Message) Write(dst []byte) []byte {
	for _, f := range m.Fields {
		dst = f.Write(dst)
	}
	return dst
}

// WriteTransport appends the transport field encoding to dst.
func (m *Message) WriteTransport(dst []byte) []byte {
	for _, f := range m.Transport {
		dst = f.Write(dst)
	}
	return dst
}

// Length is the current payload length.
func (m *Message) Length() int {
	total := 0
	for _, f := range m.Fields {
		total = add(total, f.Length())
	}
	return total
}

func (m *Message) MinLength() int {
	total := 0
	for _, f := range m.Fields {
		total = add(total, f.MinLength())
	}
	return total
}

func (m *Message) MaxLength() int {
	total := 0
	for _, f := range m.Fields {
		total = add(total, f.MaxLength())
	}
	return total
}

func (m *Message) Valid() bool {
	if m.Invalid() {
		return false
	}
	for _, f := range m.Transport {
		if !f.Valid() {
			return false
		}
	}
	for _, f := range m.Fields {
		if !f.Valid() {
			return false
		}
	}
	return true
}

// Refresh re-derives dependent field values after an edit.
func (m *Message) Refresh() bool {
	changed := false
	for _, f := range m.Fields {
		if f.Refresh() {
			changed = true
		}
	}
	if m.def.Refresh != nil && m.def.Refresh(m.Fields) {
		changed = true
	}
	return changed
}

// Clone deep-copies m, including its property map.
func (m *Message) Clone() *Message {
	cp := &Message{
		def:       m.def,
		Fields:    field.CloneAll(m.Fields),
		Transport: field.CloneAll(m.Transport),
		Timestamp: m.Timestamp,
		Raw:       append([]byte(nil), m.Raw...),
	}
	if m.Props != nil {
		cp.Props = make(map[string]any, len(m.Props))
		for k, v := range m.Props {
			cp.Props[k] = v
		}
	}
	return cp
}

// Properties describes the payload fields for display.
func (m *Message) Properties() []field.Properties {
	out := make([]field.Properties, len(m.Fields))
	for i, f := range m.Fields {
		out[i] = f.Properties()
	}
	return out
}

// Snapshot is a display view of a message.
type Snapshot struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Valid     bool           `json:"valid"`
	Invalid   bool           `json:"invalid,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Raw       string         `json:"raw"`
	Transport []field.Value  `json:"transport,omitempty"`
	Fields    []field.Value  `json:"fields"`
	Props     map[string]any `json:"props,omitempty"`
}

func (m *Message) Snapshot() Snapshot {
	s := Snapshot{
		ID:        m.IDString(),
		Name:      m.Name(),
		Valid:     m.Valid(),
		Invalid:   m.Invalid(),
		Timestamp: m.Timestamp,
		Raw:       hex.EncodeToString(m.Raw),
		Props:     m.Props,
		Fields:    make([]field.Value, 0, len(m.Fields)),
	}
	for _, f := range m.Transport {
		s.Transport = append(s.Transport, field.Describe(f))
	}
	for _, f := range m.Fields {
		s.Fields = append(s.Fields, field.Describe(f))
	}
	return s
}

func add(a, b int) int {
	if a >= field.Unbounded-b {
		return field.Unbounded
	}
	return a + b
}
