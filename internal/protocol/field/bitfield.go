package field

import "fmt"

type bitPacked interface {
	Field
	rawBits() uint64
	setRawBits(v uint64, width int)
}

// BitMember places one member field into Bits bits of a bitfield. Members are
// packed starting from the least significant bit.
type BitMember struct {
	Field Field
	Bits  int
}

type BitfieldSpec struct {
	Name    string
	Length  int
	Endian  Endian
	Members []BitMember
	Display
}

type Bitfield struct {
	spec    *BitfieldSpec
	members []bitPacked
}

// NewBitfield panics when a member is not an int, enum or bitmask field, or
// when the member widths exceed the storage.
func NewBitfield(spec BitfieldSpec) *Bitfield {
	s := spec
	if s.Length <= 0 || s.Length > 8 {
		s.Length = 1
	}
	total := 0
	members := make([]bitPacked, len(s.Members))
	for i, m := range s.Members {
		p, ok := m.Field.Clone().(bitPacked)
		if !ok {
			panic(fmt.Sprintf("field: bitfield %q member %q cannot be bit packed", s.Name, m.Field.Name()))
		}
		members[i] = p
		total += m.Bits
	}
	if total > 8*s.Length {
		panic(fmt.Sprintf("field: bitfield %q members need %d bits, storage has %d", s.Name, total, 8*s.Length))
	}
	return &Bitfield{spec: &s, members: members}
}

func (f *Bitfield) isField()     {}
func (f *Bitfield) Name() string { return f.spec.Name }
func (f *Bitfield) Kind() Kind   { return KindBitfield }

func (f *Bitfield) Members() []Field {
	out := make([]Field, len(f.members))
	for i, m := range f.members {
		out[i] = m
	}
	return out
}

func (f *Bitfield) Member(name string) (Field, bool) {
	return Find(f.Members(), name)
}

// Value returns the packed storage value.
func (f *Bitfield) Value() uint64 {
	var v uint64
	pos := 0
	for i, m := range f.members {
		width := f.spec.Members[i].Bits
		v |= (m.rawBits() & mask(width)) << uint(pos)
		pos += width
	}
	return v
}

// SetValue unpacks v into the members.
func (f *Bitfield) SetValue(v uint64) {
	pos := 0
	for i, m := range f.members {
		width := f.spec.Members[i].Bits
		m.setRawBits((v>>uint(pos))&mask(width), width)
		pos += width
	}
}

func (f *Bitfield) BitIdxLimit() int {
	return 8 * f.spec.Length
}

func (f *Bitfield) Bit(idx int) bool {
	if idx < 0 || idx >= f.BitIdxLimit() {
		return false
	}
	return f.Value()&(uint64(1)<<uint(idx)) != 0
}

func (f *Bitfield) SetBit(idx int, v bool) error {
	if idx < 0 || idx >= f.BitIdxLimit() {
		return ErrBitIndex
	}
	cur := f.Value()
	if v {
		cur |= uint64(1) << uint(idx)
	} else {
		cur &^= uint64(1) << uint(idx)
	}
	f.SetValue(cur)
	return nil
}

func (f *Bitfield) Read(buf []byte) (int, error) {
	n := f.spec.Length
	if len(buf) < n {
		return 0, ErrIncompleteData
	}
	f.SetValue(getUint(buf, n, f.spec.Endian))
	return n, nil
}

func (f *Bitfield) Write(dst []byte) []byte {
	return putUint(dst, f.Value(), f.spec.Length, f.spec.Endian)
}

func (f *Bitfield) Length() int    { return f.spec.Length }
func (f *Bitfield) MinLength() int { return f.spec.Length }
func (f *Bitfield) MaxLength() int { return f.spec.Length }

func (f *Bitfield) Valid() bool {
	for _, m := range f.members {
		if !m.Valid() {
			return false
		}
	}
	return true
}

func (f *Bitfield) Refresh() bool { return false }

func (f *Bitfield) Clone() Field {
	cp := &Bitfield{spec: f.spec, members: make([]bitPacked, len(f.members))}
	for i, m := range f.members {
		cp.members[i] = m.Clone().(bitPacked)
	}
	return cp
}

func (f *Bitfield) Properties() Properties {
	p := f.spec.Display.properties(f.spec.Name, KindBitfield)
	p.Members = membersProperties(f.Members())
	return p
}
