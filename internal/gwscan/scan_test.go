package gwscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan_SkipsLeadingSkipBytes(t *testing.T) {
	c := NewCursor([]byte("   alice bob"))
	have, err := ScanString(c, 0, " ", " ")
	assert.NoError(t, err)
	assert.Equal(t, "alice", have)
}

func TestScan_StopsAtTermWithoutConsumingIt(t *testing.T) {
	c := NewCursor([]byte("alice bob"))
	first, err := ScanString(c, 0, "", " ")
	assert.NoError(t, err)
	assert.Equal(t, "alice", first)

	rest := string(c.Rest())
	assert.Equal(t, " bob", rest)
}

func TestScan_TruncatesAtMax(t *testing.T) {
	c := NewCursor([]byte("abcdefgh"))
	have, err := ScanString(c, 3, "", "")
	assert.NoError(t, err)
	assert.Equal(t, "abc", have)
}

func TestScan_NilCursor(t *testing.T) {
	_, err := Scan(nil, 0, "", "")
	assert.ErrorIs(t, err, ErrNilCursor)
}

func TestCursor_DoneAndRest(t *testing.T) {
	c := NewCursor([]byte("ab"))
	assert.False(t, c.Done())
	_, _ = ScanString(c, 0, "", "")
	assert.True(t, c.Done())
	assert.Nil(t, c.Rest())
}
