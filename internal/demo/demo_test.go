package demo

import (
	"strings"
	"testing"

	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/danmuck/ccview/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func newProtocol(t *testing.T) *protocol.Protocol {
	t.Helper()
	p, err := New()
	require.NoError(t, err)
	return p
}

func create(t *testing.T, p *protocol.Protocol, key string) *message.Message {
	t.Helper()
	m, err := p.CreateMessage(key, 0)
	require.NoError(t, err)
	return m
}

func intField(t *testing.T, m *message.Message, name string) *field.Int {
	t.Helper()
	f, ok := m.Field(name)
	require.True(t, ok, name)
	return f.(*field.Int)
}

// roundTrip encodes m and decodes it with a fresh protocol.
func roundTrip(t *testing.T, m *message.Message) *message.Message {
	t.Helper()
	data := newProtocol(t).Write(m).Data
	msgs := newProtocol(t).Read(protocol.DataInfo{Data: data}, true)
	require.Len(t, msgs, 1)
	require.False(t, msgs[0].Invalid())
	require.Equal(t, m.IDString(), msgs[0].IDString())
	return msgs[0]
}

func TestIntValuesLengthBounds(t *testing.T) {
	testlog.Start(t)
	m := create(t, newProtocol(t), "IntValues")
	require.Equal(t, 21, m.MinLength())
	require.Equal(t, 24, m.MaxLength())
	require.Equal(t, 21, m.Length())
	require.True(t, m.Valid())
}

func TestIntValuesDefaultEncoding(t *testing.T) {
	testlog.Start(t)
	p := newProtocol(t)
	m := create(t, p, "IntValues")
	require.Equal(t, int64(2016), intField(t, m, "field4").Value())

	want := []byte{
		0xab, 0xcd, 0x00, 0x17, 0x00, 0x05,
		0x00, 0x00,
		0x00, 0x00, 0x00,
		0x00,
		0x10,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x2c,
	}
	require.Equal(t, want, p.Write(m).Data)
}

func TestIntValuesRoundTrip(t *testing.T) {
	testlog.Start(t)
	m := create(t, newProtocol(t), "IntValues")
	intField(t, m, "field1").SetValue(5)
	intField(t, m, "field2").SetValue(-2)
	intField(t, m, "field3").SetValue(500)
	intField(t, m, "field4").SetValue(2255)
	intField(t, m, "field5").SetValue(-0x800000000000)
	require.Equal(t, 22, m.Length())

	got := roundTrip(t, m)
	require.Equal(t, int64(-2), intField(t, got, "field2").Value())
	require.Equal(t, int64(500), intField(t, got, "field3").Value())
	require.Equal(t, int64(2255), intField(t, got, "field4").Value())
	require.Equal(t, int64(-0x800000000000), intField(t, got, "field5").Value())
	name, ok := intField(t, got, "field1").ValueName()
	require.True(t, ok)
	require.Equal(t, "S2", name)
	require.True(t, got.Valid())

	intField(t, got, "field1").SetValue(11)
	require.False(t, got.Valid())
}

func TestListsRefreshKeepsCountInSync(t *testing.T) {
	testlog.Start(t)
	p := newProtocol(t)
	m := create(t, p, "Lists")
	p.Write(m)
	require.Equal(t, protocol.NoChange, p.UpdateMessage(m))

	f, _ := m.Field("field3")
	list := f.(*field.Array)
	first := list.Append().(*field.Bundle)
	mem2, _ := first.Member("mem2")
	mem2.(*field.String).SetValue("abc")
	list.Append()
	require.Equal(t, protocol.Changed, p.UpdateMessage(m))
	require.Equal(t, int64(2), intField(t, m, "field3Count").Value())

	got := roundTrip(t, m)
	f, _ = got.Field("field3")
	require.Equal(t, 2, f.(*field.Array).Len())
	entry := f.(*field.Array).Elem(0).(*field.Bundle)
	mem2, _ = entry.Member("mem2")
	require.Equal(t, "abc", mem2.(*field.String).Value())
}

func TestOptionalsFollowFlags(t *testing.T) {
	testlog.Start(t)
	p := newProtocol(t)
	m := create(t, p, "Optionals")
	flags, _ := m.Field("flags")
	require.NoError(t, flags.(*field.Bitmask).SetBit(OptField2, true))
	require.Equal(t, protocol.Changed, p.UpdateMessage(m))

	f2, _ := m.Field("field2")
	require.Equal(t, field.ModeExists, f2.(*field.Optional).Mode())
	f2.(*field.Optional).Field().(*field.Int).SetValue(0x1234)

	got := roundTrip(t, m)
	f2, _ = got.Field("field2")
	require.True(t, f2.(*field.Optional).Exists())
	require.Equal(t, int64(0x1234), f2.(*field.Optional).Field().(*field.Int).Value())
	f3, _ := got.Field("field3")
	require.Equal(t, field.ModeMissing, f3.(*field.Optional).Mode())
	f4, _ := got.Field("field4")
	require.True(t, f4.(*field.Optional).Exists())
}

func TestBitfieldsPackMembers(t *testing.T) {
	testlog.Start(t)
	m := create(t, newProtocol(t), "Bitfields")
	f, _ := m.Field("field1")
	bf := f.(*field.Bitfield)
	mem1, _ := bf.Member("mem1")
	mem1.(*field.Int).SetValue(9)
	mem3, _ := bf.Member("mem3")
	mem3.(*field.Enum).SetValue(2)
	require.Equal(t, []byte{0x01, 0x09}, m.Write(nil))

	got := roundTrip(t, m)
	f, _ = got.Field("field1")
	mem3, _ = f.(*field.Bitfield).Member("mem3")
	name, ok := mem3.(*field.Enum).ValueName()
	require.True(t, ok)
	require.Equal(t, "V3", name)
}

func TestVariantsSelectByKey(t *testing.T) {
	testlog.Start(t)
	m := create(t, newProtocol(t), "Variants")
	f, _ := m.Field("field1")
	sel, ok := f.(*field.Variant).Select(2)
	require.True(t, ok)
	val, _ := sel.(*field.Bundle).Member("val")
	val.(*field.String).SetValue("hi")

	arr, _ := m.Field("field2")
	elem := arr.(*field.Array).Append().(*field.Variant)
	_, ok = elem.Select(1)
	require.True(t, ok)
	require.True(t, m.Valid())

	got := roundTrip(t, m)
	f, _ = got.Field("field1")
	idx, cur := f.(*field.Variant).Current()
	require.Equal(t, 2, idx)
	val, _ = cur.(*field.Bundle).Member("val")
	require.Equal(t, "hi", val.(*field.String).Value())
	arr, _ = got.Field("field2")
	idx, _ = arr.(*field.Array).Elem(0).(*field.Variant).Current()
	require.Equal(t, 1, idx)
}

func TestEveryMessageRoundTrips(t *testing.T) {
	testlog.Start(t)
	p := newProtocol(t)
	msgs := p.CreateAllMessages()
	require.Len(t, msgs, 9)
	for _, m := range msgs {
		if m.IDString() == "Variants" {
			continue
		}
		got := roundTrip(t, m)
		require.Equal(t, m.Write(nil), got.Write(nil), m.IDString())
		v, ok := got.TransportField("version")
		require.True(t, ok)
		require.Equal(t, int64(DefaultVersion), v.(*field.Int).Value())
	}
}

func TestStringsOverlongPrefixedValueStaysFramed(t *testing.T) {
	testlog.Start(t)
	p := newProtocol(t)
	m := create(t, p, "Strings")
	require.NoError(t, m.SetAll(map[string]string{
		"field1": strings.Repeat("x", 300),
		"field2": "two",
		"field3": "abc",
	}))
	require.False(t, m.Valid())
	require.LessOrEqual(t, m.Length(), m.MaxLength())

	got := roundTrip(t, m)
	f1, _ := got.Field("field1")
	require.Equal(t, strings.Repeat("x", 255), f1.(*field.String).Value())
	f2, _ := got.Field("field2")
	require.Equal(t, "two", f2.(*field.String).Value())
	f3, _ := got.Field("field3")
	require.Equal(t, "abc", f3.(*field.String).Value())
}

func TestListsLargerThanMaxSizeAreRejected(t *testing.T) {
	testlog.Start(t)
	p := newProtocol(t)
	m := create(t, p, "Lists")
	f, _ := m.Field("field3")
	list := f.(*field.Array)
	for i := 0; i < 20; i++ {
		entry := list.Append().(*field.Bundle)
		mem2, _ := entry.Member("mem2")
		mem2.(*field.String).SetValue(strings.Repeat("y", 255))
	}
	p.UpdateMessage(m)
	require.True(t, m.Valid())

	_, err := p.Encode(m)
	require.ErrorIs(t, err, protocol.ErrMessageTooLarge)
}
