package field

// BitmaskSpec declares a bitmask stored in Length bytes.
type BitmaskSpec struct {
	Name     string
	Length   int
	Endian   Endian
	Default  uint64
	BitNames []string
	// Reserved bits must be zero for the field to be valid.
	Reserved uint64
	// Fixed bitmasks reject SetBit/SetValue.
	Fixed bool
	Display
}

type Bitmask struct {
	spec *BitmaskSpec
	v    uint64
}

func NewBitmask(spec BitmaskSpec) *Bitmask {
	s := spec
	if s.Length <= 0 || s.Length > 8 {
		s.Length = 1
	}
	return &Bitmask{spec: &s, v: s.Default & mask(8*s.Length)}
}

func (f *Bitmask) isField()     {}
func (f *Bitmask) Name() string { return f.spec.Name }
func (f *Bitmask) Kind() Kind   { return KindBitmask }

func (f *Bitmask) Value() uint64 { return f.v }

func (f *Bitmask) SetValue(v uint64) error {
	if f.spec.Fixed {
		return ErrFixedValue
	}
	f.v = v & mask(8*f.spec.Length)
	return nil
}

func (f *Bitmask) Int64() int64 { return int64(f.v) }

func (f *Bitmask) SetInt64(v int64) error {
	return f.SetValue(uint64(v))
}

// BitIdxLimit is the bit width of the underlying storage.
func (f *Bitmask) BitIdxLimit() int {
	return 8 * f.spec.Length
}

func (f *Bitmask) Bit(idx int) bool {
	if idx < 0 || idx >= f.BitIdxLimit() {
		return false
	}
	return f.v&(uint64(1)<<uint(idx)) != 0
}

func (f *Bitmask) SetBit(idx int, v bool) error {
	if f.spec.Fixed {
		return ErrFixedValue
	}
	if idx < 0 || idx >= f.BitIdxLimit() {
		return ErrBitIndex
	}
	if v {
		f.v |= uint64(1) << uint(idx)
	} else {
		f.v &^= uint64(1) << uint(idx)
	}
	return nil
}

// BitName returns the declared name of bit idx.
func (f *Bitmask) BitName(idx int) (string, bool) {
	if idx < 0 || idx >= len(f.spec.BitNames) || f.spec.BitNames[idx] == "" {
		return "", false
	}
	return f.spec.BitNames[idx], true
}

func (f *Bitmask) Read(buf []byte) (int, error) {
	n := f.spec.Length
	if len(buf) < n {
		return 0, ErrIncompleteData
	}
	f.v = getUint(buf, n, f.spec.Endian)
	return n, nil
}

func (f *Bitmask) Write(dst []byte) []byte {
	return putUint(dst, f.v, f.spec.Length, f.spec.Endian)
}

func (f *Bitmask) Length() int    { return f.spec.Length }
func (f *Bitmask) MinLength() int { return f.spec.Length }
func (f *Bitmask) MaxLength() int { return f.spec.Length }

func (f *Bitmask) Valid() bool {
	return f.v&f.spec.Reserved == 0
}

func (f *Bitmask) Refresh() bool { return false }

func (f *Bitmask) Clone() Field {
	cp := *f
	return &cp
}

func (f *Bitmask) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindBitmask)
	p.ReadOnly = p.ReadOnly || f.spec.Fixed
	p.Bits = append([]string(nil), f.spec.BitNames...)
	return p
}

func (f *Bitmask) rawBits() uint64 { return f.v }

func (f *Bitmask) setRawBits(v uint64, width int) {
	f.v = v & mask(width) & mask(8*f.spec.Length)
}
