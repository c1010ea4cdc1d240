package protocol

import (
	"bytes"
	"fmt"
	"time"

	"github.com/danmuck/ccview/internal/observability"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/rs/zerolog/log"
)

// Encode serializes m into one framed buffer stamped with the current time.
// Invalid messages are written as their raw bytes. A message whose body
// exceeds the layout's size field or MaxSize is rejected with
// ErrMessageTooLarge and m is left untouched.
func (p *Protocol) Encode(m *message.Message) (DataInfo, error) {
	data, err := p.encode(m)
	if err != nil {
		observability.RecordPipelineError("protocol")
		return DataInfo{}, err
	}
	now := time.Now()
	m.Raw = data
	m.Timestamp = now

	var props map[string]any
	if m.Props != nil {
		props = make(map[string]any, len(m.Props))
		for k, v := range m.Props {
			props[k] = v
		}
	}
	observability.RecordEncoded(p.name, m.Name())
	observability.RecordBytes("protocol", "out", len(data))
	return DataInfo{Timestamp: now, Data: append([]byte(nil), data...), Props: props}, nil
}

// Write is Encode for callers without an error path. A rejected message is
// logged and yields a DataInfo with no data.
func (p *Protocol) Write(m *message.Message) DataInfo {
	info, err := p.Encode(m)
	if err != nil {
		log.Warn().
			Str("protocol", p.name).
			Str("message", m.Name()).
			Err(err).
			Msg("protocol_write_rejected")
	}
	return info
}

// UpdateMessage refreshes dependent fields and re-encodes m. A message that
// no longer fits a frame has its Raw bytes cleared.
func (p *Protocol) UpdateMessage(m *message.Message) UpdateStatus {
	changed := m.Refresh()
	data, err := p.encode(m)
	if err != nil {
		data = nil
	}
	if !bytes.Equal(data, m.Raw) {
		m.Raw = data
		changed = true
	}
	if changed {
		return Changed
	}
	return NoChange
}

func (p *Protocol) encode(m *message.Message) ([]byte, error) {
	if m.Invalid() {
		return append([]byte(nil), m.InvalidData()...), nil
	}
	transport := m.WriteTransport(nil)
	payload := m.Write(nil)
	if err := p.layout.CheckBody(p.layout.IDLen + len(transport) + len(payload)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMessageTooLarge, m.Name(), err)
	}
	return p.layout.Encode(nil, m.ID(), transport, payload), nil
}
