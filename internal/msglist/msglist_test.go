package msglist

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/ccview/internal/demo"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/danmuck/ccview/internal/rawdata"
	"github.com/danmuck/ccview/internal/session"
	"github.com/danmuck/ccview/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func demoProtocol(t *testing.T) *protocol.Protocol {
	t.Helper()
	p, err := demo.New()
	require.NoError(t, err)
	return p
}

func sampleRecords(t *testing.T, p *protocol.Protocol) []Record {
	t.Helper()
	received, err := p.CreateMessage("IntValues", 0)
	require.NoError(t, err)
	f, _ := received.Field("field1")
	f.(*field.Int).SetValue(7)
	received.Props = map[string]any{protocol.PropFrom: "10.0.0.2:20000"}
	p.Write(received)

	sent, err := p.CreateMessage("Strings", 0)
	require.NoError(t, err)
	s, _ := sent.Field("field1")
	s.(*field.String).SetValue("hello")

	return []Record{
		{Direction: session.DirectionReceived, Message: received},
		{Direction: session.DirectionReceived, Message: p.CreateInvalidMessage([]byte{0x01, 0x02})},
		{Direction: session.DirectionSent, Message: sent},
	}
}

func TestSaveLoadRedecodesMessages(t *testing.T) {
	testlog.Start(t)
	p := demoProtocol(t)
	records := sampleRecords(t, p)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, p, records))
	require.Contains(t, buf.String(), `protocol = "Demo"`)

	got, err := Load(&buf, demoProtocol(t))
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, session.DirectionReceived, got[0].Direction)
	require.Equal(t, "IntValues", got[0].Message.IDString())
	f, _ := got[0].Message.Field("field1")
	require.Equal(t, int64(7), f.(*field.Int).Value())
	require.Equal(t, "10.0.0.2:20000", got[0].Message.Props[protocol.PropFrom])
	require.True(t, records[0].Message.Timestamp.Equal(got[0].Message.Timestamp))

	require.True(t, got[1].Message.Invalid())
	require.Equal(t, []byte{0x01, 0x02}, got[1].Message.InvalidData())

	require.Equal(t, session.DirectionSent, got[2].Direction)
	s, _ := got[2].Message.Field("field1")
	require.Equal(t, "hello", s.(*field.String).Value())
}

func TestSaveLoadFile(t *testing.T) {
	testlog.Start(t)
	p := demoProtocol(t)
	path := filepath.Join(t.TempDir(), "messages.toml")
	require.NoError(t, SaveFile(path, p, sampleRecords(t, p)))
	got, err := LoadFile(path, demoProtocol(t))
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestLoadRejectsMismatches(t *testing.T) {
	testlog.Start(t)
	p := demoProtocol(t)
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, p, sampleRecords(t, p)))

	raw, err := rawdata.New()
	require.NoError(t, err)
	_, err = Load(bytes.NewReader(buf.Bytes()), raw)
	require.True(t, errors.Is(err, ErrProtocolMismatch), "got %v", err)

	_, err = Load(strings.NewReader("version = 9\nprotocol = \"Demo\"\n"), p)
	require.True(t, errors.Is(err, ErrUnsupportedVersion), "got %v", err)

	bad := "version = 1\nprotocol = \"Demo\"\n[[message]]\ndirection = \"sideways\"\ndata = \"00\"\n"
	_, err = Load(strings.NewReader(bad), p)
	require.True(t, errors.Is(err, ErrBadRecord), "got %v", err)
}

func TestFromLogKeepsOrder(t *testing.T) {
	testlog.Start(t)
	p := demoProtocol(t)
	log := session.NewMessageLog(0)
	a, _ := p.CreateMessage("IntValues", 0)
	b, _ := p.CreateMessage("Lists", 0)
	log.Append(session.DirectionReceived, a)
	log.Append(session.DirectionSent, b)
	recs := FromLog(log.List())
	require.Len(t, recs, 2)
	require.Equal(t, "Lists", recs[1].Message.IDString())
	require.Equal(t, session.DirectionSent, recs[1].Direction)
}
