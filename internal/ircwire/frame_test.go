package ircwire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramer_SingleLineWholeChunk(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("NICK alice\r\n"))
	assert.Equal(t, []string{"NICK alice"}, lines)
	assert.False(t, f.Pending())
}

func TestFramer_MultipleLinesOneChunk(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("NICK alice\r\nUSER alice 0 * :Alice\r\n"))
	assert.Equal(t, []string{"NICK alice", "USER alice 0 * :Alice"}, lines)
}

func TestFramer_SplitAcrossChunks(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("NICK al"))
	assert.Empty(t, lines)
	assert.True(t, f.Pending())

	lines = f.Feed([]byte("ice\r\n"))
	assert.Equal(t, []string{"NICK alice"}, lines)
}

func TestFramer_BareLFWithoutCR(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("PING x\n"))
	assert.Equal(t, []string{"PING x"}, lines)
}

func TestFramer_OversizedLineKeepsHeadDiscardsTail(t *testing.T) {
	f := NewFramer()
	overflow := strings.Repeat("a", MaxLine+100)
	lines := f.Feed([]byte(overflow + "\r\n"))
	assert.Equal(t, []string{strings.Repeat("a", MaxLine)}, lines)

	lines = f.Feed([]byte("NEXT\r\n"))
	assert.Equal(t, []string{"NEXT"}, lines)
}
