package protocol

import (
	"fmt"
	"strconv"

	"github.com/danmuck/ccview/internal/protocol/frame"
	"github.com/danmuck/ccview/internal/protocol/message"
)

// Config declares a protocol: its framing and the message definitions it
// understands, in registration order.
type Config struct {
	Name        string
	Layout      frame.Layout
	Definitions []*message.Definition
}

// Protocol is the registry of message definitions plus the decode state of
// one byte stream.
type Protocol struct {
	name   string
	layout frame.Layout
	defs   []*message.Definition
	byID   map[uint64][]*message.Definition

	// Bytes of an incomplete frame held for the next Read.
	pending []byte
}

// New validates cfg and builds the registry. The registry is read-only
// afterwards.
func New(cfg Config) (*Protocol, error) {
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Definitions) == 0 {
		return nil, ErrNoDefinitions
	}
	p := &Protocol{
		name:   cfg.Name,
		layout: cfg.Layout,
		defs:   append([]*message.Definition(nil), cfg.Definitions...),
		byID:   make(map[uint64][]*message.Definition),
	}
	keys := make(map[string]uint64, len(p.defs))
	for _, def := range p.defs {
		key := def.IDString()
		if id, ok := keys[key]; ok && id != def.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		keys[key] = def.ID
		if n := transportLen(def); n != cfg.Layout.TransportLen {
			return nil, fmt.Errorf("%w: %s has %d bytes, layout %d", ErrTransportMismatch, key, n, cfg.Layout.TransportLen)
		}
		p.byID[def.ID] = append(p.byID[def.ID], def)
	}
	return p, nil
}

// MustNew is New for protocols declared in code.
func MustNew(cfg Config) *Protocol {
	p, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

func transportLen(def *message.Definition) int {
	if def.Transport == nil {
		return 0
	}
	total := 0
	for _, f := range def.Transport() {
		total += f.Length()
	}
	return total
}

func (p *Protocol) Name() string { return p.name }

func (p *Protocol) Layout() frame.Layout { return p.layout }

// Definitions returns the registered definitions in registration order.
func (p *Protocol) Definitions() []*message.Definition {
	return append([]*message.Definition(nil), p.defs...)
}

// Pending is the number of bytes held back waiting for the rest of a frame.
func (p *Protocol) Pending() int { return len(p.pending) }

// Reset drops any held-back bytes.
func (p *Protocol) Reset() { p.pending = nil }

// CreateMessage builds a default message for display id idString. idx
// selects among definitions sharing that id, in registration order.
func (p *Protocol) CreateMessage(idString string, idx int) (*message.Message, error) {
	var matches []*message.Definition
	for _, def := range p.defs {
		if def.IDString() == idString {
			matches = append(matches, def)
		}
	}
	if len(matches) == 0 {
		if id, err := strconv.ParseUint(idString, 0, 64); err == nil {
			matches = p.byID[id]
		}
	}
	if idx < 0 || idx >= len(matches) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrUnknownID, idString, idx)
	}
	return message.New(matches[idx]), nil
}

// CreateMessageByName builds a default message for the definition named name.
func (p *Protocol) CreateMessageByName(name string) (*message.Message, error) {
	for _, def := range p.defs {
		if def.Name == name {
			return message.New(def), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownID, name)
}

// CreateAllMessages builds one default message per definition.
func (p *Protocol) CreateAllMessages() []*message.Message {
	out := make([]*message.Message, len(p.defs))
	for i, def := range p.defs {
		out[i] = message.New(def)
	}
	return out
}

func (p *Protocol) CloneMessage(m *message.Message) *message.Message {
	return m.Clone()
}

func (p *Protocol) CreateInvalidMessage(data []byte) *message.Message {
	return message.NewInvalid(data)
}
