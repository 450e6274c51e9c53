package ircwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_SimpleCommand(t *testing.T) {
	m := Parse("NICK alice")
	assert.Equal(t, "NICK", m.Command)
	assert.Equal(t, []string{"alice"}, m.Params)
}

func TestParse_TrailingParam(t *testing.T) {
	m := Parse("USER alice 0 * :Alice Example")
	assert.Equal(t, "USER", m.Command)
	assert.Equal(t, []string{"alice", "0", "*", "Alice Example"}, m.Params)
}

func TestParse_PrefixedMessage(t *testing.T) {
	m := Parse(":alice!alice@host PRIVMSG #general :hello there")
	assert.Equal(t, "alice!alice@host", m.Prefix)
	assert.Equal(t, "PRIVMSG", m.Command)
	assert.Equal(t, []string{"#general", "hello there"}, m.Params)
}

func TestParse_CommandIsUppercased(t *testing.T) {
	m := Parse("nick alice")
	assert.Equal(t, "NICK", m.Command)
}

func TestParse_ParamsCapAtTenSlotsWithRemainderVerbatim(t *testing.T) {
	m := Parse("CMD a b c d e f g h i j k")
	assert.Len(t, m.Params, MaxParams)
	assert.Equal(t, "j k", m.Params[MaxParams-1])
}

func TestParse_EmptyLine(t *testing.T) {
	m := Parse("")
	assert.Equal(t, "", m.Command)
	assert.Empty(t, m.Params)
}

func TestMessage_ParamOutOfRangeIsEmptyString(t *testing.T) {
	m := Parse("NICK alice")
	assert.Equal(t, "alice", m.Param(0))
	assert.Equal(t, "", m.Param(5))
}
