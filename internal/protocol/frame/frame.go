// Package frame splits a byte stream into transport frames.
//
// A frame is laid out as
//
//	[sync] [size] [id] [transport] payload [checksum]
//
// where every part except the payload is optional. The size counts the id,
// transport and payload bytes. The checksum covers everything from the size
// field up to the end of the payload.
package frame

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/danmuck/ccview/internal/protocol/field"
)

var (
	ErrSyncMismatch     = errors.New("frame: sync mismatch")
	ErrChecksumMismatch = errors.New("frame: checksum mismatch")
	ErrSizeInvalid      = errors.New("frame: size invalid")
	ErrFrameTooLarge    = errors.New("frame: body too large for size field")
	// ErrIncompleteData is shared with the field layer so callers test one
	// sentinel for "wait for more bytes".
	ErrIncompleteData = field.ErrIncompleteData
)

// Checksum selects the trailing checksum algorithm.
type Checksum uint8

const (
	ChecksumNone Checksum = iota
	// ChecksumSum8 is the low byte of the arithmetic byte sum.
	ChecksumSum8
	// ChecksumSum16 is the low two bytes of the arithmetic byte sum.
	ChecksumSum16
)

func (c Checksum) Len() int {
	switch c {
	case ChecksumSum8:
		return 1
	case ChecksumSum16:
		return 2
	default:
		return 0
	}
}

// Layout describes the transport framing of one protocol.
type Layout struct {
	Sync []byte
	// SizeLen is 0..4. Zero means the frame takes the rest of the buffer.
	SizeLen int
	// IDLen is 0..4. Zero means the protocol has a single message id.
	IDLen        int
	TransportLen int
	Checksum     Checksum
	Endian       field.Endian
	// MaxSize bounds the size field value. Zero means no bound.
	MaxSize int
}

// Validate reports a layout the codec cannot use.
func (l Layout) Validate() error {
	if l.SizeLen < 0 || l.SizeLen > 4 {
		return fmt.Errorf("frame: size length %d out of range", l.SizeLen)
	}
	if l.IDLen < 0 || l.IDLen > 4 {
		return fmt.Errorf("frame: id length %d out of range", l.IDLen)
	}
	if l.TransportLen < 0 {
		return fmt.Errorf("frame: negative transport length")
	}
	return nil
}

// HeaderLen is the number of bytes ahead of the payload.
func (l Layout) HeaderLen() int {
	return len(l.Sync) + l.SizeLen + l.IDLen + l.TransportLen
}

// Overhead is the number of framing bytes around a payload.
func (l Layout) Overhead() int {
	return l.HeaderLen() + l.Checksum.Len()
}

// MaxBody is the largest id, transport and payload length the size field
// can carry, capped by MaxSize. Without a size field it is field.Unbounded.
func (l Layout) MaxBody() int {
	if l.SizeLen == 0 {
		return field.Unbounded
	}
	limit := int(uint64(1)<<(8*uint(l.SizeLen)) - 1)
	if l.MaxSize > 0 && l.MaxSize < limit {
		limit = l.MaxSize
	}
	return limit
}

// CheckBody reports ErrFrameTooLarge when a frame body of n bytes cannot be
// encoded.
func (l Layout) CheckBody(n int) error {
	if limit := l.MaxBody(); n > limit {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, limit)
	}
	return nil
}

// Frame is one decoded transport frame. Transport and Payload alias the
// decoded buffer.
type Frame struct {
	ID        uint64
	Transport []byte
	Payload   []byte
	// Len is the total number of bytes the frame occupies.
	Len int
}

// Decode parses the frame at the front of buf.
func (l Layout) Decode(buf []byte) (Frame, error) {
	syncLen := len(l.Sync)
	if len(buf) < syncLen {
		if bytes.HasPrefix(l.Sync, buf) {
			return Frame{}, ErrIncompleteData
		}
		return Frame{}, ErrSyncMismatch
	}
	if !bytes.Equal(buf[:syncLen], l.Sync) {
		return Frame{}, ErrSyncMismatch
	}

	csLen := l.Checksum.Len()
	minBody := l.IDLen + l.TransportLen
	pos := syncLen
	var body []byte
	var total int
	if l.SizeLen > 0 {
		if len(buf) < pos+l.SizeLen {
			return Frame{}, ErrIncompleteData
		}
		size := int(readUint(buf[pos:], l.SizeLen, l.Endian))
		if size < minBody || (l.MaxSize > 0 && size > l.MaxSize) {
			return Frame{}, ErrSizeInvalid
		}
		pos += l.SizeLen
		total = pos + size + csLen
		if len(buf) < total {
			return Frame{}, ErrIncompleteData
		}
		body = buf[pos : pos+size]
	} else {
		if len(buf) < pos+minBody+csLen {
			return Frame{}, ErrIncompleteData
		}
		total = len(buf)
		body = buf[pos : total-csLen]
	}

	if csLen > 0 {
		end := total - csLen
		want := readUint(buf[end:], csLen, l.Endian)
		if got := sum(buf[syncLen:end], csLen); got != want {
			return Frame{}, ErrChecksumMismatch
		}
	}

	f := Frame{Len: total}
	if l.IDLen > 0 {
		f.ID = readUint(body, l.IDLen, l.Endian)
	}
	f.Transport = body[l.IDLen:minBody]
	f.Payload = body[minBody:]
	return f, nil
}

// Encode appends a complete frame to dst. Callers check the body length
// with CheckBody first; an oversized size field is truncated.
func (l Layout) Encode(dst []byte, id uint64, transport, payload []byte) []byte {
	dst = append(dst, l.Sync...)
	start := len(dst)
	if l.SizeLen > 0 {
		dst = putUint(dst, uint64(l.IDLen+len(transport)+len(payload)), l.SizeLen, l.Endian)
	}
	if l.IDLen > 0 {
		dst = putUint(dst, id, l.IDLen, l.Endian)
	}
	dst = append(dst, transport...)
	dst = append(dst, payload...)
	if csLen := l.Checksum.Len(); csLen > 0 {
		dst = putUint(dst, sum(dst[start:], csLen), csLen, l.Endian)
	}
	return dst
}

func sum(b []byte, n int) uint64 {
	var s uint64
	for _, c := range b {
		s += uint64(c)
	}
	return s & (uint64(1)<<(8*uint(n)) - 1)
}

func readUint(b []byte, n int, e field.Endian) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		idx := i
		if e == field.LittleEndian {
			idx = n - 1 - i
		}
		v = v<<8 | uint64(b[idx])
	}
	return v
}

func putUint(dst []byte, v uint64, n int, e field.Endian) []byte {
	for i := 0; i < n; i++ {
		shift := uint(8 * (n - 1 - i))
		if e == field.LittleEndian {
			shift = uint(8 * i)
		}
		dst = append(dst, byte(v>>shift))
	}
	return dst
}
