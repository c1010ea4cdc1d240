package protocol

import (
	"errors"

	"github.com/danmuck/ccview/internal/observability"
	"github.com/danmuck/ccview/internal/protocol/frame"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/rs/zerolog/log"
)

// Read decodes every complete frame in the held-back bytes plus info.Data.
//
// Bytes that cannot start a frame are skipped one at a time and reported as
// a single invalid message ahead of the next decoded message. A frame with an
// unknown id or an undecodable payload becomes one invalid message holding
// the whole frame. Trailing bytes of an incomplete frame are held for the next
// call, unless final is set, in which case they are reported as invalid
// together with any skipped bytes before them.
func (p *Protocol) Read(info DataInfo, final bool) []*message.Message {
	observability.RecordBytes("protocol", "in", len(info.Data))

	buf := info.Data
	if len(p.pending) > 0 {
		buf = append(p.pending, info.Data...)
		p.pending = nil
	}

	r := reader{p: p, info: info}
	for len(buf) > 0 {
		f, err := p.layout.Decode(buf)
		if errors.Is(err, frame.ErrIncompleteData) {
			break
		}
		if err != nil {
			r.skip(buf[0], err)
			buf = buf[1:]
			continue
		}
		raw := buf[:f.Len]
		r.emit(p.decodeFrame(f, raw))
		buf = buf[f.Len:]
	}

	if len(buf) > 0 {
		if final {
			if len(r.garbage) == 0 {
				r.reason = "incomplete"
			}
			r.garbage = append(r.garbage, buf...)
		} else {
			p.pending = append([]byte(nil), buf...)
			log.Debug().
				Str("protocol", p.name).
				Int("pending", len(p.pending)).
				Msg("protocol_read_pending")
		}
	}
	r.flush()
	return r.out
}

type reader struct {
	p       *Protocol
	info    DataInfo
	out     []*message.Message
	garbage []byte
	reason  string
}

func (r *reader) skip(b byte, err error) {
	if len(r.garbage) == 0 {
		r.reason = skipReason(err)
	}
	r.garbage = append(r.garbage, b)
}

func (r *reader) emit(m *message.Message) {
	r.flush()
	r.attach(m)
	if m.Invalid() {
		observability.RecordInvalid(r.p.name, "payload")
	} else {
		observability.RecordDecoded(r.p.name, m.Name())
	}
	r.out = append(r.out, m)
}

func (r *reader) flush() {
	if len(r.garbage) == 0 {
		return
	}
	log.Debug().
		Str("protocol", r.p.name).
		Int("bytes", len(r.garbage)).
		Str("reason", r.reason).
		Msg("protocol_read_garbage")
	observability.RecordInvalid(r.p.name, r.reason)
	m := message.NewInvalid(r.garbage)
	r.attach(m)
	r.out = append(r.out, m)
	r.garbage = nil
}

func (r *reader) attach(m *message.Message) {
	m.Timestamp = r.info.Timestamp
	if r.info.Props != nil {
		m.Props = make(map[string]any, len(r.info.Props))
		for k, v := range r.info.Props {
			m.Props[k] = v
		}
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, frame.ErrSyncMismatch):
		return "sync"
	case errors.Is(err, frame.ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, frame.ErrSizeInvalid):
		return "size"
	default:
		return "frame"
	}
}

// decodeFrame tries every definition registered for the frame id in order
// and falls back to an invalid message wrapping raw.
func (p *Protocol) decodeFrame(f frame.Frame, raw []byte) *message.Message {
	candidates := p.byID[f.ID]
	if p.layout.IDLen == 0 {
		candidates = p.defs
	}
	if len(candidates) == 0 {
		log.Debug().
			Str("protocol", p.name).
			Uint64("id", f.ID).
			Err(ErrUnknownID).
			Msg("protocol_read_unknown_id")
		return message.NewInvalid(raw)
	}

	var lastErr error
	for _, def := range candidates {
		m := message.New(def)
		if _, err := m.ReadTransport(f.Transport); err != nil {
			lastErr = err
			continue
		}
		if _, err := m.Read(f.Payload); err != nil {
			lastErr = err
			continue
		}
		m.Raw = append([]byte(nil), raw...)
		return m
	}
	log.Debug().
		Str("protocol", p.name).
		Uint64("id", f.ID).
		Err(lastErr).
		Msg("protocol_read_payload_failed")
	return message.NewInvalid(raw)
}
