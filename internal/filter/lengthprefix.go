package filter

import (
	"errors"
	"fmt"

	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/danmuck/ccview/internal/protocol/frame"
)

// LengthPrefixConfig configures a LengthPrefix filter.
type LengthPrefixConfig struct {
	SizeLen      int  `toml:"size_len"`
	LittleEndian bool `toml:"little_endian"`
	// MaxSize rejects frames larger than this. Zero means no bound.
	MaxSize int `toml:"max_size"`
}

// LengthPrefix deframes an inbound stream of size-prefixed records and
// prefixes outbound buffers with their size.
type LengthPrefix struct {
	Base
	layout frame.Layout
	buf    []byte
}

func NewLengthPrefix(cfg LengthPrefixConfig) (*LengthPrefix, error) {
	if cfg.SizeLen == 0 {
		cfg.SizeLen = 2
	}
	layout := frame.Layout{SizeLen: cfg.SizeLen, MaxSize: cfg.MaxSize}
	if cfg.LittleEndian {
		layout.Endian = field.LittleEndian
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("length prefix: %w", err)
	}
	return &LengthPrefix{Base: NewBase("length_prefix"), layout: layout}, nil
}

func (f *LengthPrefix) RecvData(info protocol.DataInfo) []protocol.DataInfo {
	f.buf = append(f.buf, info.Data...)
	var out []protocol.DataInfo
	for len(f.buf) > 0 {
		fr, err := f.layout.Decode(f.buf)
		if errors.Is(err, frame.ErrIncompleteData) {
			break
		}
		if err != nil {
			f.reportError(fmt.Errorf("%w: %d pending bytes dropped", ErrFrameSize, len(f.buf)))
			f.buf = nil
			break
		}
		out = append(out, derive(info, append([]byte(nil), fr.Payload...)))
		f.buf = f.buf[fr.Len:]
	}
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return out
}

func (f *LengthPrefix) SendData(info protocol.DataInfo) []protocol.DataInfo {
	if err := f.layout.CheckBody(len(info.Data)); err != nil {
		f.reportError(fmt.Errorf("%w: outbound: %w", ErrFrameSize, err))
		return nil
	}
	return []protocol.DataInfo{derive(info, f.layout.Encode(nil, 0, nil, info.Data))}
}

// SocketConnectionReport drops a partial record when the connection changes.
func (f *LengthPrefix) SocketConnectionReport(bool) {
	f.buf = nil
}
