package icbwire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogin_FieldOrderIsIdentNickPass(t *testing.T) {
	raw := Login("alice", "alicenick", "")
	f := NewFramer()
	packets := f.Feed(raw)
	assert.Len(t, packets, 1)
	p := packets[0]
	assert.Equal(t, byte('a'), p.Type)
	assert.Equal(t, "alice", p.FieldString(0))
	assert.Equal(t, "alicenick", p.FieldString(1))
	assert.Equal(t, "", p.FieldString(2))
	assert.Equal(t, "login", p.FieldString(3))
}

func TestOpenMessages_EmptyMessageProducesNoPackets(t *testing.T) {
	assert.Empty(t, OpenMessages(""))
}

func TestOpenMessages_SplitsLongMessageAcrossPackets(t *testing.T) {
	msg := strings.Repeat("x", 500)
	pkts := OpenMessages(msg)
	assert.Greater(t, len(pkts), 1)

	f := NewFramer()
	var rebuilt strings.Builder
	for _, raw := range pkts {
		packets := f.Feed(raw)
		assert.Len(t, packets, 1)
		assert.Equal(t, byte('b'), packets[0].Type)
		rebuilt.Write(packets[0].Field(0))
	}
	assert.Equal(t, msg, rebuilt.String())
}

func TestPersonalMessages_CarriesNickInEveryPacket(t *testing.T) {
	msg := strings.Repeat("y", 500)
	pkts := PersonalMessages("bob", msg)
	assert.Greater(t, len(pkts), 1)

	f := NewFramer()
	var rebuilt strings.Builder
	for _, raw := range pkts {
		packets := f.Feed(raw)
		assert.Len(t, packets, 1)
		assert.Equal(t, byte('h'), packets[0].Type)
		assert.Equal(t, "m", packets[0].FieldString(0))
		field := packets[0].FieldString(1)
		assert.True(t, strings.HasPrefix(field, "bob "))
		rebuilt.WriteString(strings.TrimPrefix(field, "bob "))
	}
	assert.Equal(t, msg, rebuilt.String())
}

func TestGroup_BuildsHGCommand(t *testing.T) {
	raw := Group("general")
	f := NewFramer()
	packets := f.Feed(raw)
	assert.Len(t, packets, 1)
	assert.Equal(t, byte('h'), packets[0].Type)
	assert.Equal(t, "g", packets[0].FieldString(0))
	assert.Equal(t, "general", packets[0].FieldString(1))
}

func TestNoOp_IsTwoBytesAfterLength(t *testing.T) {
	raw := NoOp()
	assert.Equal(t, []byte{2, 'n', 0}, raw)
}

func TestRaw_TranslatesCommaToFieldSeparator(t *testing.T) {
	raw := Raw("g,general")
	f := NewFramer()
	packets := f.Feed(raw)
	assert.Len(t, packets, 1)
	assert.Equal(t, "g", packets[0].FieldString(0))
	assert.Equal(t, "general", packets[0].FieldString(1))
}
