package field

import (
	"math"
	"math/bits"
)

// IntType is the in-memory storage type of an integer field.
type IntType uint8

const (
	Int8 IntType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
)

func (t IntType) Bits() int {
	switch t {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32:
		return 32
	default:
		return 64
	}
}

func (t IntType) Bytes() int {
	return t.Bits() / 8
}

func (t IntType) Signed() bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// Range is an inclusive numeric interval.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Special names one exact value.
type Special struct {
	Value int64  `json:"value"`
	Name  string `json:"name"`
}

// IntSpec declares an integer field.
type IntSpec struct {
	Name   string
	Type   IntType
	Endian Endian
	// Length is the fixed serialized length in bytes. Zero means the width of
	// Type. Ignored when MaxVarLength is set.
	Length int
	// MinVarLength and MaxVarLength enable base-128 variable length encoding.
	MinVarLength int
	MaxVarLength int
	// NoSignExtend disables sign extension of signed values serialized with
	// fewer bytes than their storage width.
	NoSignExtend bool
	// Offset is added to the logical value when serializing.
	Offset        int64
	Default       int64
	Ranges        []Range
	Validator     func(v int64) bool
	FailOnInvalid bool
	Specials      []Special
	// ScaleNum/ScaleDen convert the stored value to a display value.
	ScaleNum int64
	ScaleDen int64
	Decimals int
	Display
}

// Int is an integer field.
type Int struct {
	spec *IntSpec
	u    uint64
}

// NewInt creates an integer field holding spec.Default.
func NewInt(spec IntSpec) *Int {
	s := spec
	if s.MaxVarLength > 0 {
		if s.MinVarLength <= 0 {
			s.MinVarLength = 1
		}
		if s.MaxVarLength < s.MinVarLength {
			s.MaxVarLength = s.MinVarLength
		}
		s.Length = 0
	} else if s.Length <= 0 || s.Length > 8 {
		s.Length = s.Type.Bytes()
	}
	if s.ScaleNum == 0 || s.ScaleDen == 0 {
		s.ScaleNum, s.ScaleDen = 1, 1
	}
	f := &Int{spec: &s}
	f.SetValue(s.Default)
	return f
}

func (f *Int) isField()     {}
func (f *Int) Name() string { return f.spec.Name }
func (f *Int) Kind() Kind   { return KindInt }

// Value returns the logical value.
func (f *Int) Value() int64 {
	if f.spec.Type.Signed() {
		return int64(signExtend(f.u, f.spec.Type.Bits()))
	}
	return int64(f.u)
}

// SetValue stores v truncated to the storage width.
func (f *Int) SetValue(v int64) {
	f.u = uint64(v) & mask(f.spec.Type.Bits())
}

// Uint returns the value as unsigned, for storage types wider than int64.
func (f *Int) Uint() uint64 {
	return uint64(f.Value())
}

func (f *Int) SetUint(v uint64) {
	f.u = v & mask(f.spec.Type.Bits())
}

func (f *Int) Int64() int64 { return f.Value() }

func (f *Int) SetInt64(v int64) error {
	f.SetValue(v)
	return nil
}

// SpecialName returns the name attached to v.
func (f *Int) SpecialName(v int64) (string, bool) {
	for _, sp := range f.spec.Specials {
		if sp.Value == v {
			return sp.Name, true
		}
	}
	return "", false
}

// ValueName returns the special name of the current value.
func (f *Int) ValueName() (string, bool) {
	return f.SpecialName(f.Value())
}

func (f *Int) HasSpecials() bool {
	return len(f.spec.Specials) > 0
}

func (f *Int) Specials() []Special {
	return append([]Special(nil), f.spec.Specials...)
}

func (f *Int) Scaled() float64 {
	return float64(f.Value()) * float64(f.spec.ScaleNum) / float64(f.spec.ScaleDen)
}

func (f *Int) SetScaled(v float64) {
	f.SetValue(int64(math.Round(v * float64(f.spec.ScaleDen) / float64(f.spec.ScaleNum))))
}

// SerializedValue is the value as it appears on the wire.
func (f *Int) SerializedValue() int64 {
	return int64(f.wire())
}

func (f *Int) wire() uint64 {
	return uint64(f.Value()) + uint64(f.spec.Offset)
}

func (f *Int) setWire(w uint64) {
	f.SetUint(w - uint64(f.spec.Offset))
}

// countLimit is the largest non-negative value the serialized form can hold.
// Length and count prefixes are bounded by it.
func (f *Int) countLimit() uint64 {
	bits := 8 * f.spec.Length
	if f.varLength() {
		bits = 7 * f.spec.MaxVarLength
	}
	bits = min(bits, f.spec.Type.Bits())
	if f.spec.Type.Signed() {
		bits--
	}
	return mask(bits)
}

// count returns the prefix value as a length or element count.
func (f *Int) count() (int, error) {
	u := f.Uint()
	if u > f.countLimit() || u > math.MaxInt {
		return 0, ErrInvalidData
	}
	return int(u), nil
}

// setCount stores n clamped to countLimit and returns the stored value.
func (f *Int) setCount(n int) int {
	u := min(uint64(n), f.countLimit())
	f.SetUint(u)
	return int(u)
}

func (f *Int) varLength() bool {
	return f.spec.MaxVarLength > 0
}

func (f *Int) signExtends() bool {
	return f.spec.Type.Signed() && !f.spec.NoSignExtend
}

func (f *Int) Read(buf []byte) (int, error) {
	var n int
	if f.varLength() {
		w, used, err := f.readVar(buf)
		if err != nil {
			return used, err
		}
		f.setWire(w)
		n = used
	} else {
		n = f.spec.Length
		if len(buf) < n {
			return 0, ErrIncompleteData
		}
		w := getUint(buf, n, f.spec.Endian)
		if f.signExtends() {
			w = signExtend(w, 8*n)
		}
		f.setWire(w)
	}
	if f.spec.FailOnInvalid && !f.Valid() {
		return n, ErrInvalidData
	}
	return n, nil
}

func (f *Int) readVar(buf []byte) (uint64, int, error) {
	var w uint64
	n := 0
	for {
		if n >= f.spec.MaxVarLength {
			return 0, n, ErrInvalidData
		}
		if n >= len(buf) {
			return 0, n, ErrIncompleteData
		}
		b := buf[n]
		group := uint64(b & 0x7f)
		if f.spec.Endian == LittleEndian {
			if shift := uint(7 * n); shift < 64 {
				w |= group << shift
			}
		} else {
			w = w<<7 | group
		}
		n++
		if b&0x80 == 0 {
			break
		}
	}
	if n < f.spec.MinVarLength {
		return 0, n, ErrInvalidData
	}
	if f.signExtends() {
		w = signExtend(w, 7*n)
	}
	return w, n, nil
}

func (f *Int) Write(dst []byte) []byte {
	w := f.wire()
	if !f.varLength() {
		return putUint(dst, w, f.spec.Length, f.spec.Endian)
	}
	n := f.varEncodedLength(w)
	for i := 0; i < n; i++ {
		idx := i
		if f.spec.Endian != LittleEndian {
			idx = n - 1 - i
		}
		var group byte
		if shift := uint(7 * idx); shift < 64 {
			group = byte(w>>shift) & 0x7f
		}
		if i < n-1 {
			group |= 0x80
		}
		dst = append(dst, group)
	}
	return dst
}

// varEncodedLength is the minimal base-128 length of w within the declared
// bounds. Values wider than MaxVarLength groups are truncated on write.
func (f *Int) varEncodedLength(w uint64) int {
	var significant int
	if f.signExtends() {
		v := int64(w)
		if v < 0 {
			v = ^v
		}
		significant = 64 - bits.LeadingZeros64(uint64(v)) + 1
	} else {
		significant = 64 - bits.LeadingZeros64(w)
	}
	n := (significant + 6) / 7
	return clampLength(n, f.spec.MinVarLength, f.spec.MaxVarLength)
}

func (f *Int) Length() int {
	if f.varLength() {
		return f.varEncodedLength(f.wire())
	}
	return f.spec.Length
}

func (f *Int) MinLength() int {
	if f.varLength() {
		return f.spec.MinVarLength
	}
	return f.spec.Length
}

func (f *Int) MaxLength() int {
	if f.varLength() {
		return f.spec.MaxVarLength
	}
	return f.spec.Length
}

func (f *Int) Valid() bool {
	if len(f.spec.Ranges) > 0 {
		ok := false
		for _, r := range f.spec.Ranges {
			if f.inRange(r) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.spec.Validator != nil {
		return f.spec.Validator(f.Value())
	}
	return true
}

func (f *Int) inRange(r Range) bool {
	if f.spec.Type.Signed() {
		v := f.Value()
		return r.Min <= v && v <= r.Max
	}
	u := f.u
	if r.Max < 0 {
		return false
	}
	return (r.Min <= 0 || u >= uint64(r.Min)) && u <= uint64(r.Max)
}

func (f *Int) Refresh() bool { return false }

func (f *Int) Clone() Field {
	cp := *f
	return &cp
}

func (f *Int) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindInt)
	p.Specials = f.Specials()
	p.Decimals = f.spec.Decimals
	if len(f.spec.Ranges) > 0 {
		r := f.spec.Ranges[0]
		for _, other := range f.spec.Ranges[1:] {
			r.Min = min(r.Min, other.Min)
			r.Max = max(r.Max, other.Max)
		}
		p.Range = &r
	}
	return p
}

func (f *Int) rawBits() uint64 {
	return f.wire()
}

func (f *Int) setRawBits(v uint64, width int) {
	if f.signExtends() {
		v = signExtend(v, width)
	}
	f.setWire(v)
}
