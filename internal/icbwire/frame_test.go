package icbwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func packetBytes(packetType byte, fields ...string) []byte {
	out := []byte{0, packetType}
	for i, f := range fields {
		if i > 0 {
			out = append(out, 0x01)
		}
		out = append(out, []byte(f)...)
	}
	out[0] = byte(len(out) - 1)
	return out
}

func TestFramer_SinglePacketWholeChunk(t *testing.T) {
	raw := packetBytes('b', "alice", "hello")
	f := NewFramer()
	packets := f.Feed(raw)
	assert.Len(t, packets, 1)
	assert.Equal(t, byte('b'), packets[0].Type)
	assert.Equal(t, "alice", packets[0].FieldString(0))
	assert.Equal(t, "hello", packets[0].FieldString(1))
	assert.False(t, f.Pending())
}

func TestFramer_ByteAtATimeFeeding(t *testing.T) {
	raw := packetBytes('d', "Sign-on", "alice")
	f := NewFramer()
	var got []Packet
	for _, b := range raw {
		got = append(got, f.Feed([]byte{b})...)
	}
	assert.Len(t, got, 1)
	assert.Equal(t, byte('d'), got[0].Type)
}

func TestFramer_MultiplePacketsOneChunk(t *testing.T) {
	raw := append(packetBytes('b', "alice", "hi"), packetBytes('b', "bob", "yo")...)
	f := NewFramer()
	packets := f.Feed(raw)
	assert.Len(t, packets, 2)
	assert.Equal(t, "alice", packets[0].FieldString(0))
	assert.Equal(t, "bob", packets[1].FieldString(0))
}

func TestFramer_PartialPacketLeavesPending(t *testing.T) {
	raw := packetBytes('b', "alice", "hello")
	f := NewFramer()
	packets := f.Feed(raw[:3])
	assert.Empty(t, packets)
	assert.True(t, f.Pending())

	packets = f.Feed(raw[3:])
	assert.Len(t, packets, 1)
	assert.False(t, f.Pending())
}
