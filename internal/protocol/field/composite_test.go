package field

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmaskBitAccess(t *testing.T) {
	f := NewBitmask(BitmaskSpec{Name: "flags", Length: 2, BitNames: []string{"b0", "", "b2"}, Reserved: 0x8000})
	require.Equal(t, 16, f.BitIdxLimit())
	require.NoError(t, f.SetBit(0, true))
	require.NoError(t, f.SetBit(9, true))
	require.True(t, f.Bit(0))
	require.True(t, f.Bit(9))
	require.False(t, f.Bit(1))
	require.Equal(t, []byte{0x02, 0x01}, f.Write(nil))
	require.ErrorIs(t, f.SetBit(16, true), ErrBitIndex)
	require.False(t, f.Bit(16))

	name, ok := f.BitName(2)
	require.True(t, ok)
	require.Equal(t, "b2", name)
	_, ok = f.BitName(1)
	require.False(t, ok)

	require.True(t, f.Valid())
	require.NoError(t, f.SetBit(15, true))
	require.False(t, f.Valid())
}

func TestFixedBitmaskRejectsEdits(t *testing.T) {
	f := NewBitmask(BitmaskSpec{Name: "const", Length: 1, Default: 0x05, Fixed: true})
	require.ErrorIs(t, f.SetBit(1, true), ErrFixedValue)
	require.ErrorIs(t, f.SetValue(0), ErrFixedValue)
	require.Equal(t, uint64(0x05), f.Value())
	require.True(t, f.Properties().ReadOnly)
}

func TestBitfieldPacking(t *testing.T) {
	low := NewInt(IntSpec{Name: "low", Type: Uint8})
	mode := NewEnum(EnumSpec{Name: "mode", Type: Uint8, Values: []Special{{Value: 0, Name: "A"}, {Value: 1, Name: "B"}}})
	flags := NewBitmask(BitmaskSpec{Name: "flags", Length: 1})
	f := NewBitfield(BitfieldSpec{
		Name:   "bf",
		Length: 2,
		Members: []BitMember{
			{Field: low, Bits: 4},
			{Field: mode, Bits: 2},
			{Field: flags, Bits: 10},
		},
	})

	n, err := f.Read([]byte{0x12, 0x05})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, uint64(0x1205), f.Value())

	m, ok := f.Member("low")
	require.True(t, ok)
	require.Equal(t, int64(5), m.(*Int).Value())
	m, _ = f.Member("mode")
	require.Equal(t, int64(0), m.(*Enum).Value())
	m, _ = f.Member("flags")
	require.Equal(t, uint64(0x1205>>6), m.(*Bitmask).Value())

	require.NoError(t, f.SetBit(4, true))
	m, _ = f.Member("mode")
	require.Equal(t, int64(1), m.(*Enum).Value())
	require.Equal(t, []byte{0x12, 0x15}, f.Write(nil))
	require.ErrorIs(t, f.SetBit(16, true), ErrBitIndex)

	cp := f.Clone().(*Bitfield)
	require.NoError(t, cp.SetBit(0, false))
	require.True(t, f.Bit(0))
}

func TestBitfieldRejectsUnpackableMember(t *testing.T) {
	require.Panics(t, func() {
		NewBitfield(BitfieldSpec{Name: "bad", Length: 1, Members: []BitMember{{Field: NewString(StringSpec{Name: "s"}), Bits: 4}}})
	})
}

func TestStringFramings(t *testing.T) {
	prefixed := NewString(StringSpec{Name: "p", Prefix: &IntSpec{Name: "len", Type: Uint8}})
	prefixed.SetValue("hello")
	require.Equal(t, append([]byte{5}, "hello"...), prefixed.Write(nil))
	require.Equal(t, 6, prefixed.Length())

	fixed := NewString(StringSpec{Name: "f", Fixed: 6})
	fixed.SetValue("abc")
	require.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0}, fixed.Write(nil))
	n, err := fixed.Read([]byte{'x', 'y', 0, 0, 0, 0, 9})
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, "xy", fixed.Value())

	term := NewString(StringSpec{Name: "z", ZeroTerm: true})
	n, err = term.Read([]byte{'h', 'i', 0, 'x'})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "hi", term.Value())
	_, err = term.Read([]byte{'h', 'i'})
	require.ErrorIs(t, err, ErrIncompleteData)

	_, err = prefixed.Read([]byte{10, 'a'})
	require.ErrorIs(t, err, ErrIncompleteData)

	limited := NewString(StringSpec{Name: "l", MaxLen: 2, Default: "abc"})
	require.False(t, limited.Valid())
}

func TestArrayCountPrefix(t *testing.T) {
	spec := ArraySpec{
		Name:        "list",
		Elem:        func() Field { return NewInt(IntSpec{Name: "elem", Type: Uint16}) },
		CountPrefix: &IntSpec{Name: "count", Type: Uint8},
	}
	a := NewArray(spec)
	require.NoError(t, a.Append().(*Int).SetInt64(1))
	require.NoError(t, a.Append().(*Int).SetInt64(0x0203))
	buf := a.Write(nil)
	require.Equal(t, []byte{2, 0, 1, 2, 3}, buf)
	require.Equal(t, 5, a.Length())

	got := NewArray(spec)
	n, err := got.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, 2, got.Len())

	_, err = got.Read([]byte{200, 0, 1})
	require.ErrorIs(t, err, ErrIncompleteData)
}

func TestPrefixedStringLongerThanPrefixCounts(t *testing.T) {
	f := NewString(StringSpec{Name: "p", Prefix: &IntSpec{Name: "len", Type: Uint8}})
	f.SetValue(strings.Repeat("x", 300))
	require.False(t, f.Valid())
	require.Equal(t, 256, f.MaxLength())
	require.Equal(t, 256, f.Length())

	buf := f.Write(nil)
	require.Len(t, buf, 256)
	require.Equal(t, byte(255), buf[0])

	got := NewString(StringSpec{Name: "p", Prefix: &IntSpec{Name: "len", Type: Uint8}})
	n, err := got.Read(append(buf, 0xee))
	require.NoError(t, err)
	require.Equal(t, 256, n)
	require.Equal(t, strings.Repeat("x", 255), got.Value())

	f.SetValue(strings.Repeat("x", 255))
	require.True(t, f.Valid())
}

func TestArrayLongerThanPrefixCounts(t *testing.T) {
	spec := ArraySpec{
		Name:        "list",
		Elem:        func() Field { return NewInt(IntSpec{Name: "b", Type: Uint8}) },
		CountPrefix: &IntSpec{Name: "count", Type: Uint8},
	}
	a := NewArray(spec)
	a.Resize(256)
	require.False(t, a.Valid())
	require.Equal(t, 256, a.Length())

	buf := a.Write(nil)
	require.Len(t, buf, 256)
	require.Equal(t, byte(255), buf[0])

	got := NewArray(spec)
	n, err := got.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 256, n)
	require.Equal(t, 255, got.Len())

	capped := NewArray(ArraySpec{Name: "capped", MaxCount: 2, Elem: spec.Elem})
	capped.Resize(3)
	require.False(t, capped.Valid())
	require.Equal(t, []byte{0, 0}, capped.Write(nil))
	require.Equal(t, 2, capped.Length())
}

func TestPrefixCountsThatCannotBeSizes(t *testing.T) {
	huge := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 'a'}

	s := NewString(StringSpec{Name: "s", Prefix: &IntSpec{Name: "len", Type: Uint64}})
	_, err := s.Read(huge)
	require.ErrorIs(t, err, ErrInvalidData)

	a := NewArray(ArraySpec{
		Name:        "a",
		Elem:        func() Field { return NewInt(IntSpec{Name: "b", Type: Uint8}) },
		CountPrefix: &IntSpec{Name: "count", Type: Uint64},
	})
	_, err = a.Read(huge)
	require.ErrorIs(t, err, ErrInvalidData)

	zeroMin := NewArray(ArraySpec{
		Name:        "rest",
		Elem:        func() Field { return NewString(StringSpec{Name: "s"}) },
		CountPrefix: &IntSpec{Name: "count", Type: Uint32},
	})
	_, err = zeroMin.Read([]byte{0xff, 0xff, 0xff, 0xff, 'a'})
	require.ErrorIs(t, err, ErrInvalidData)
}

func TestArrayRestOfBufferAndForcedCount(t *testing.T) {
	spec := ArraySpec{Name: "rest", Elem: func() Field { return NewInt(IntSpec{Name: "b", Type: Uint8}) }}
	a := NewArray(spec)
	n, err := a.Read([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, a.Len())

	a.ForceCount(2)
	n, err = a.Read([]byte{7, 8, 9})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, a.Len())
	require.Equal(t, Unbounded, a.MaxLength())
}

func TestOptionalModes(t *testing.T) {
	o := NewOptional(OptionalSpec{Field: NewInt(IntSpec{Name: "opt", Type: Uint16})})
	require.Equal(t, "opt", o.Name())

	n, err := o.Read(nil)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, ModeMissing, o.Mode())
	require.Empty(t, o.Write(nil))
	require.Zero(t, o.Length())

	o.SetMode(ModeTentative)
	n, err = o.Read([]byte{0, 9})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.True(t, o.Exists())

	o.SetMode(ModeExists)
	_, err = o.Read([]byte{1})
	require.ErrorIs(t, err, ErrIncompleteData)
}

func TestVariantFirstMatchWins(t *testing.T) {
	keyed := func(name string, key int64, width IntType) Field {
		return NewBundle(BundleSpec{
			Name: name,
			Members: []Field{
				NewInt(IntSpec{Name: "key", Type: Uint8, Default: key, Ranges: []Range{{Min: key, Max: key}}, FailOnInvalid: true}),
				NewInt(IntSpec{Name: "val", Type: width}),
			},
		})
	}
	v := NewVariant(VariantSpec{
		Name:    "prop",
		Members: []Field{keyed("prop1", 1, Uint16), keyed("prop2", 2, Uint32)},
	})
	require.False(t, v.Valid())

	n, err := v.Read([]byte{2, 0, 0, 0, 7})
	require.NoError(t, err)
	require.Equal(t, 5, n)
	idx, cur := v.Current()
	require.Equal(t, 1, idx)
	require.Equal(t, "prop2", cur.Name())
	require.True(t, v.Valid())

	_, err = v.Read([]byte{9, 0, 0})
	require.ErrorIs(t, err, ErrInvalidData)

	_, err = v.Read([]byte{1, 0})
	require.ErrorIs(t, err, ErrIncompleteData)

	sel, ok := v.Select(0)
	require.True(t, ok)
	require.Equal(t, []byte{1, 0, 0}, v.Write(nil))
	require.Equal(t, "prop1", sel.Name())
	require.Equal(t, 3, v.MinLength())
	require.Equal(t, 5, v.MaxLength())
}

func TestDescribeNestedValues(t *testing.T) {
	b := NewBundle(BundleSpec{
		Name: "b",
		Members: []Field{
			NewInt(IntSpec{Name: "i", Type: Uint8, Default: 5, Specials: []Special{{Value: 5, Name: "five"}}}),
			NewRaw(RawSpec{Name: "r"}),
		},
	})
	v := Describe(b)
	require.Equal(t, KindBundle, v.Kind)
	require.Len(t, v.Members, 2)
	require.Equal(t, "five", v.Members[0].Special)
	require.Equal(t, "05", v.Hex)
}

func TestCloneIsDeep(t *testing.T) {
	b := NewBundle(BundleSpec{Name: "b", Members: []Field{NewInt(IntSpec{Name: "i", Type: Uint8})}})
	cp := b.Clone().(*Bundle)
	require.NoError(t, cp.Members()[0].(*Int).SetInt64(9))
	require.Equal(t, int64(0), b.Members()[0].(*Int).Value())
}
