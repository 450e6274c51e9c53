package ircwire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWelcome_EndsEachLineWithCRLF(t *testing.T) {
	lines := Welcome("icbirc", "alice", "alice", "host", "1.0")
	for _, l := range lines {
		assert.True(t, strings.HasSuffix(string(l), "\r\n"))
	}
	assert.Equal(t, 4, len(lines))
}

func TestJoin_Format(t *testing.T) {
	l := Join("alice", "alice", "host.icb", "general")
	assert.Equal(t, ":alice!alice@host.icb JOIN :general\r\n", string(l))
}

func TestPrivmsg_Format(t *testing.T) {
	l := Privmsg("alice", "alice", "host.icb", "#general", "hello there")
	assert.Equal(t, ":alice!alice@host.icb PRIVMSG #general :hello there\r\n", string(l))
}

func TestNamReply_JoinsNamesWithSpace(t *testing.T) {
	l := NamReply("icbirc", "alice", "general", []string{"alice", "bob", "carol"})
	assert.Equal(t, ":icbirc 353 alice = general :alice bob carol\r\n", string(l))
}

func TestPong_Format(t *testing.T) {
	l := Pong("icbirc", "token123")
	assert.Equal(t, ":icbirc PONG icbirc :token123\r\n", string(l))
}

func TestKick_Format(t *testing.T) {
	l := Kick("mod", "mod", "host.icb", "general", "troll", "booted")
	assert.Equal(t, ":mod!mod@host.icb KICK general troll :booted\r\n", string(l))
}
