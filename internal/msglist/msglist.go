// Package msglist saves and loads message lists as TOML. Each record keeps
// the framed bytes, so loading decodes them again with the protocol.
package msglist

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/danmuck/ccview/internal/session"
	"github.com/rs/zerolog/log"
)

const FormatVersion = 1

var (
	ErrUnsupportedVersion = errors.New("msglist: unsupported version")
	ErrProtocolMismatch   = errors.New("msglist: protocol mismatch")
	ErrBadRecord          = errors.New("msglist: bad record")
)

// Record is one message with its direction.
type Record struct {
	Direction session.Direction
	Message   *message.Message
}

// FromLog converts session log entries to records.
func FromLog(entries []session.Entry) []Record {
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = Record{Direction: e.Direction, Message: e.Message}
	}
	return out
}

type fileRecord struct {
	Direction string         `toml:"direction"`
	Timestamp time.Time      `toml:"timestamp"`
	ID        string         `toml:"id"`
	Data      string         `toml:"data"`
	Props     map[string]any `toml:"props,omitempty"`
}

type file struct {
	Version  int          `toml:"version"`
	Protocol string       `toml:"protocol"`
	Messages []fileRecord `toml:"message"`
}

// Save writes records in order. Messages that were never framed are encoded
// with p first.
func Save(w io.Writer, p *protocol.Protocol, records []Record) error {
	f := file{Version: FormatVersion, Protocol: p.Name(), Messages: make([]fileRecord, 0, len(records))}
	for _, r := range records {
		m := r.Message
		data := m.Raw
		ts := m.Timestamp
		if len(data) == 0 {
			info, err := p.Encode(m.Clone())
			if err != nil {
				return fmt.Errorf("msglist: %w", err)
			}
			data, ts = info.Data, info.Timestamp
		}
		f.Messages = append(f.Messages, fileRecord{
			Direction: string(r.Direction),
			Timestamp: ts.UTC(),
			ID:        m.IDString(),
			Data:      hex.EncodeToString(data),
			Props:     m.Props,
		})
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("msglist: encode: %w", err)
	}
	return nil
}

func SaveFile(path string, p *protocol.Protocol, records []Record) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("msglist: %w", err)
	}
	if err := Save(out, p, records); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Load decodes a list written by Save. Every record is decoded on its own,
// so a record holding a broken frame loads as an invalid message.
func Load(r io.Reader, p *protocol.Protocol) ([]Record, error) {
	var f file
	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("msglist: decode: %w", err)
	}
	return fromFile(f, meta, p)
}

func LoadFile(path string, p *protocol.Protocol) ([]Record, error) {
	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("msglist: load %s: %w", path, err)
	}
	return fromFile(f, meta, p)
}

func fromFile(f file, meta toml.MetaData, p *protocol.Protocol) ([]Record, error) {
	if f.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}
	if f.Protocol != p.Name() {
		return nil, fmt.Errorf("%w: file has %q, using %q", ErrProtocolMismatch, f.Protocol, p.Name())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warn().Strs("keys", keys).Msg("msglist_unknown_keys")
	}

	p.Reset()
	var out []Record
	for i, fr := range f.Messages {
		dir := session.Direction(strings.TrimSpace(fr.Direction))
		if dir != session.DirectionReceived && dir != session.DirectionSent {
			return nil, fmt.Errorf("%w: message %d direction %q", ErrBadRecord, i, fr.Direction)
		}
		data, err := hex.DecodeString(fr.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: message %d data: %v", ErrBadRecord, i, err)
		}
		msgs := p.Read(protocol.DataInfo{Timestamp: fr.Timestamp, Data: data, Props: fr.Props}, true)
		for _, m := range msgs {
			m.Timestamp = fr.Timestamp
			if !m.Invalid() && fr.ID != "" && m.IDString() != fr.ID {
				log.Warn().Int("record", i).Str("want", fr.ID).Str("got", m.IDString()).Msg("msglist_id_changed")
			}
			out = append(out, Record{Direction: dir, Message: m})
		}
	}
	return out, nil
}
