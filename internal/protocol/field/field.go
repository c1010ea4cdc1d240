package field

import "math"

// Unbounded is the maximum length reported by fields without an upper bound.
const Unbounded = math.MaxInt32

// Field is one independently (de)serializable component of a message.
//
// The set of implementations is closed; callers switch on Kind or on the
// concrete type when they need kind-specific access.
type Field interface {
	Name() string
	Kind() Kind
	// Read decodes the field from the front of buf and returns the number of
	// bytes consumed.
	Read(buf []byte) (int, error)
	// Write appends the encoding of the current value to dst.
	Write(dst []byte) []byte
	Length() int
	MinLength() int
	MaxLength() int
	Valid() bool
	// Refresh re-derives internal dependent state and reports a change.
	Refresh() bool
	Clone() Field
	Properties() Properties

	isField()
}

// Numeric is implemented by fields carrying a single integer value.
type Numeric interface {
	Field
	Int64() int64
	SetInt64(v int64) error
}

// Bits is implemented by fields with bit-level access.
type Bits interface {
	Field
	Bit(idx int) bool
	SetBit(idx int, v bool) error
	BitIdxLimit() int
}

// Endian selects the byte order of multi-byte encodings.
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

// Find returns the first field named name.
func Find(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// CloneAll deep-copies a field tuple.
func CloneAll(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

func putUint(dst []byte, v uint64, n int, e Endian) []byte {
	for i := 0; i < n; i++ {
		shift := uint(8 * (n - 1 - i))
		if e == LittleEndian {
			shift = uint(8 * i)
		}
		dst = append(dst, byte(v>>shift))
	}
	return dst
}

func getUint(buf []byte, n int, e Endian) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		if e == LittleEndian {
			v |= uint64(buf[i]) << uint(8*i)
		} else {
			v = v<<8 | uint64(buf[i])
		}
	}
	return v
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << uint(bits)) - 1
}

func signExtend(v uint64, bits int) uint64 {
	if bits >= 64 || bits <= 0 {
		return v
	}
	v &= mask(bits)
	if v&(uint64(1)<<uint(bits-1)) != 0 {
		v |= ^mask(bits)
	}
	return v
}

func clampLength(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func addLength(a, b int) int {
	if a >= Unbounded || b >= Unbounded || a+b >= Unbounded {
		return Unbounded
	}
	return a + b
}

func mulLength(n, per int) int {
	if n == 0 || per == 0 {
		return 0
	}
	if per >= Unbounded || n >= Unbounded/per {
		return Unbounded
	}
	return n * per
}
