package gateway

import (
	"strings"

	"github.com/lcheylus/icbirc-gateway/internal/gwstate"
	"github.com/lcheylus/icbirc-gateway/internal/icbwire"
	"github.com/lcheylus/icbirc-gateway/internal/ircwire"
)

// Outcome is everything one IRC message can produce: packets to forward
// to the ICB server, lines to answer the IRC client with directly
// (a PONG, error notices) without waiting on a round
// trip to ICB, and whether the client asked to end the session.
type Outcome struct {
	ToICB     [][]byte
	ToIRC     []ircwire.Line
	Terminate bool
}

// ToICB translates one IRC message into ICB packets and/or a direct
// reply. Registration (PASS/NICK/USER) is buffered in the session until
// both nick and ident are known, then fires exactly one Login packet -
// ICB has a single combined login command where IRC has three.
func (g *Gateway) ToICB(msg ircwire.Message) Outcome {
	switch msg.Command {
	case "PASS":
		g.Session.Pass = msg.Param(0)
		return Outcome{}

	case "NICK":
		g.Session.Nick = msg.Param(0)
		return g.maybeLogin()

	case "USER":
		g.Session.Ident = msg.Param(0)
		return g.maybeLogin()

	case "JOIN":
		return g.onJoin(msg)

	case "PART":
		g.Session.InChannel = false
		return Outcome{}

	case "PRIVMSG", "NOTICE":
		return g.onPrivmsg(msg)

	case "TOPIC":
		return g.onTopic(msg)

	case "NAMES":
		return g.onNames(msg)

	case "LIST":
		return g.onEnquiry(gwstate.EnquiryList, "", "", icbwire.Enquiry("-g"))

	case "WHO":
		return g.onWho(msg)

	case "WHOIS":
		return g.onWhois(msg)

	case "KICK":
		return g.onKick(msg)

	case "MODE":
		return g.onMode(msg)

	case "PING":
		return Outcome{
			ToICB: [][]byte{icbwire.NoOp()},
			ToIRC: []ircwire.Line{ircwire.Pong(g.ServerName, msg.Param(0))},
		}

	case "QUIT":
		return Outcome{Terminate: true}

	case "RAWICB":
		return Outcome{ToICB: [][]byte{icbwire.Raw(msg.Param(0))}}

	default:
		g.Logger.Debug("unhandled irc command", "command", msg.Command)
		return Outcome{}
	}
}

func (g *Gateway) maybeLogin() Outcome {
	if !g.Session.ReadyToLogin() {
		return Outcome{}
	}
	g.Session.MarkLoginSent()
	if g.OnRegister != nil {
		g.OnRegister(g.Session.Nick)
	}
	return Outcome{ToICB: [][]byte{icbwire.Login(g.Session.Ident, g.Session.Nick, g.Session.Pass)}}
}

// onJoin maps the first channel named in a JOIN line onto an ICB group
// switch; ICB only ever has one group membership at a time, so extra
// channels in a comma-separated JOIN are ignored. The session keeps the
// channel with its leading '#', matching every other place it's read,
// but the ICB group command itself never carries one.
func (g *Gateway) onJoin(msg ircwire.Message) Outcome {
	channels := strings.Split(msg.Param(0), ",")
	if len(channels) == 0 || channels[0] == "" {
		return Outcome{}
	}
	bare := strings.TrimPrefix(channels[0], "#")
	g.Session.Channel = "#" + bare
	g.Session.InChannel = true
	return Outcome{ToICB: [][]byte{icbwire.Group(bare)}}
}

// onPrivmsg routes a channel-addressed PRIVMSG/NOTICE to an open message
// and a nick-addressed one to a personal message, splitting either
// across multiple packets if the text is long. CTCP markers are stripped
// first since ICB has no framing for them.
func (g *Gateway) onPrivmsg(msg ircwire.Message) Outcome {
	target := msg.Param(0)
	text := stripCTCP(msg.Param(1))
	if target == g.Session.Channel {
		return Outcome{ToICB: icbwire.OpenMessages(text)}
	}
	return Outcome{ToICB: icbwire.PersonalMessages(target, text)}
}

// stripCTCP removes every CTCP marker byte from s, the same blanket
// strip irc.c applies before handing PRIVMSG/NOTICE text to ICB.
func stripCTCP(s string) string {
	return strings.ReplaceAll(s, "\x01", "")
}

func (g *Gateway) onTopic(msg ircwire.Message) Outcome {
	if len(msg.Params) < 2 {
		return Outcome{} // bare TOPIC query: nothing is sent and the client gets no reply
	}
	return Outcome{ToICB: [][]byte{icbwire.Topic(msg.Param(1))}}
}

func (g *Gateway) onNames(msg ircwire.Message) Outcome {
	channel := msg.Param(0)
	if channel == "" {
		channel = g.Session.Channel
	}
	return g.onEnquiry(gwstate.EnquiryNames, channel, "", icbwire.Enquiry(""))
}

func (g *Gateway) onWho(msg ircwire.Message) Outcome {
	mask := msg.Param(0)
	if mask == "" {
		mask = g.Session.Channel
	}
	return g.onEnquiry(gwstate.EnquiryWho, "", mask, icbwire.Enquiry(""))
}

func (g *Gateway) onWhois(msg ircwire.Message) Outcome {
	nick := msg.Param(0)
	return g.onEnquiry(gwstate.EnquiryWhois, nick, "", icbwire.Enquiry(nick))
}

func (g *Gateway) onEnquiry(kind gwstate.EnquiryKind, target, hostMask string, pkt []byte) Outcome {
	if err := g.Session.BeginEnquiry(kind, target, hostMask); err != nil {
		return Outcome{ToIRC: []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, "an enquiry is already in progress")}}
	}
	return Outcome{ToICB: [][]byte{pkt}}
}

// onKick maps an operator's KICK onto an ICB Boot, which requires
// moderator status on the ICB side; the ICB server itself rejects the
// command if we aren't moderator, surfaced back to IRC as an onError
// NOTICE rather than checked here.
func (g *Gateway) onKick(msg ircwire.Message) Outcome {
	target := msg.Param(1)
	if target == "" {
		return Outcome{}
	}
	return Outcome{ToICB: [][]byte{icbwire.Boot(target)}}
}

// onMode maps the gateway's single channel onto two ICB commands: a
// bare "MODE #chan" re-issues the NAMES enquiry (the IRC convention for
// refreshing a channel's membership list), and "+o" transfers moderator
// status via an ICB Pass.
func (g *Gateway) onMode(msg ircwire.Message) Outcome {
	if len(msg.Params) == 1 {
		channel := msg.Param(0)
		if channel != g.Session.Channel {
			return Outcome{}
		}
		return g.onNames(msg)
	}
	if len(msg.Params) < 3 {
		return Outcome{}
	}
	change := msg.Param(1)
	target := msg.Param(2)
	if change != "+o" {
		return Outcome{}
	}
	return Outcome{ToICB: [][]byte{icbwire.Pass(target)}}
}
