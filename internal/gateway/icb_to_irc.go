package gateway

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lcheylus/icbirc-gateway/internal/gwscan"
	"github.com/lcheylus/icbirc-gateway/internal/gwstate"
	"github.com/lcheylus/icbirc-gateway/internal/icbwire"
	"github.com/lcheylus/icbirc-gateway/internal/ircwire"
)

// ICB packet type bytes, per the protocol's own naming.
const (
	tLogin      = 'a'
	tOpen       = 'b'
	tPersonal   = 'c'
	tStatus     = 'd'
	tError      = 'e'
	tImportant  = 'f'
	tExit       = 'g'
	tCommand    = 'h'
	tCommandOut = 'i'
	tProtocol   = 'j'
	tBeep       = 'k'
	tPing       = 'l'
	tPong       = 'm'
	tNoOp       = 'n'
)

// Reply is everything one ICB packet can produce for the IRC client: the
// translated lines to send, any ICB packets the translation itself needs
// to issue back to the server (an implicit NAMES enquiry on a group
// change), and whether the ICB server has ended the session, so the
// bridge layer tears the connection down once these lines are flushed.
type Reply struct {
	Lines     []ircwire.Line
	ToICB     [][]byte
	Terminate bool
}

// FromICB translates one parsed ICB packet into a Reply, mutating the
// session as needed (registration completion, moderator flag, enquiry
// bookkeeping). The ICB reply stream is what drives the gateway's own
// client-facing protocol state, mirroring how icb_cmd() in the original
// drove the client-facing terminal output.
func (g *Gateway) FromICB(pkt icbwire.Packet) Reply {
	var lines []ircwire.Line
	var toICB [][]byte

	switch pkt.Type {
	case tProtocol:
		lines = g.onProtocol(pkt)
	case tOpen:
		lines = g.onOpen(pkt)
	case tPersonal:
		lines = g.onPersonal(pkt)
	case tStatus:
		lines, toICB = g.onStatus(pkt)
	case tError:
		lines = g.onError(pkt)
	case tImportant:
		lines = g.onImportant(pkt)
	case tExit:
		return Reply{Lines: g.onExit(pkt), Terminate: true}
	case tCommandOut:
		lines = g.onCommandOutput(pkt)
	case tBeep:
		lines = g.onBeep(pkt)
	case tPing:
		lines = []ircwire.Line{ircwire.Pong(g.ServerName, pkt.FieldString(0))}
	case tNoOp:
	default:
		g.Logger.Debug("unhandled icb packet", "type", string(rune(pkt.Type)))
	}

	return Reply{Lines: lines, ToICB: toICB}
}

// onProtocol handles the server's protocol/banner packet, the first
// reply after Login, and completes registration: it records the protocol
// fields, sends the welcome numerics (plus the banner as a MOTD when one
// is present) and marks the session logged in. It sends no group join.
func (g *Gateway) onProtocol(pkt icbwire.Packet) []ircwire.Line {
	g.Session.ProtoLevel = pkt.FieldString(0)
	g.Session.HostID = pkt.FieldString(1)
	g.Session.ServerID = pkt.FieldString(2)

	lines := ircwire.Welcome(g.ServerName, g.Session.Nick, g.Session.Ident, g.Session.HostID, g.Version)
	if banner := pkt.FieldString(3); banner != "" {
		lines = append(lines, ircwire.Motd(g.ServerName, g.Session.Nick, wrapBanner(banner))...)
	}
	g.Session.LoggedIn = true
	return lines
}

// onOpen translates an open (group) message into a channel PRIVMSG.
func (g *Gateway) onOpen(pkt icbwire.Packet) []ircwire.Line {
	nick := pkt.FieldString(0)
	text := pkt.FieldString(1)
	if nick == g.Session.Nick {
		return nil
	}
	return []ircwire.Line{ircwire.Privmsg(nick, nick, g.hostFor(nick), g.Session.Channel, text)}
}

// onPersonal translates a personal message into a PRIVMSG targeted at
// the local client's own nick.
func (g *Gateway) onPersonal(pkt icbwire.Packet) []ircwire.Line {
	nick := pkt.FieldString(0)
	text := pkt.FieldString(1)
	return []ircwire.Line{ircwire.Privmsg(nick, nick, g.hostFor(nick), g.Session.Nick, text)}
}

// onImportant translates an important (broadcast/wall) message into a
// NOTICE, since it isn't addressed to the channel or the client.
func (g *Gateway) onImportant(pkt icbwire.Packet) []ircwire.Line {
	nick := pkt.FieldString(0)
	text := pkt.FieldString(1)
	return []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, fmt.Sprintf("*** %s: %s", nick, text))}
}

// onError surfaces an ICB protocol error as a NOTICE; these are the
// server rejecting something the gateway itself sent (bad command, nick
// collision) so there's no IRC numeric that fits better.
func (g *Gateway) onError(pkt icbwire.Packet) []ircwire.Line {
	return []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, pkt.FieldString(0))}
}

// onExit closes out the session; FromICB sets Terminate on the Reply
// alongside this so the bridge layer tears the connection down once it
// has flushed this line to the client.
func (g *Gateway) onExit(pkt icbwire.Packet) []ircwire.Line {
	return []ircwire.Line{ircwire.Quit(g.Session.Nick, g.Session.Ident, g.hostFor(g.Session.Nick), "ICB server closed the connection")}
}

// onBeep maps an ICB beep into a CTCP-less NOTICE; the spec's Non-goals
// exclude real CTCP ACTION/beep framing, so this stays a plain message.
func (g *Gateway) onBeep(pkt icbwire.Packet) []ircwire.Line {
	nick := pkt.FieldString(0)
	return []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, fmt.Sprintf("%s beeped you", nick))}
}

// onStatus implements the status sub-grammar: field 0 is a category
// word, field 1 is free text whose shape depends on the category. Each
// category is handled by picking apart field 1 with gwscan the same way
// the original terminal client's status_msg() switch did. A status line
// can also produce an outbound ICB packet of its own - a group change
// re-issues the NAMES enquiry, the one case where the ICB->IRC direction
// talks back to the server.
func (g *Gateway) onStatus(pkt icbwire.Packet) ([]ircwire.Line, [][]byte) {
	category := pkt.FieldString(0)
	text := pkt.FieldString(1)

	switch category {
	case "Status":
		return g.onStatusGroupChange(text)

	case "Arrive", "Sign-on":
		nick, host := parseNickHost(text)
		return []ircwire.Line{ircwire.Join(nick, nick, host, g.Session.Channel)}, nil

	case "Depart":
		nick, host := parseNickHost(text)
		return []ircwire.Line{ircwire.Part(nick, nick, host, g.Session.Channel, category)}, nil

	case "Sign-off":
		nick, host, reason := parseSignOff(text)
		return []ircwire.Line{ircwire.Quit(nick, nick, host, reason)}, nil

	case "Boot":
		nick, _ := firstWord(text)
		return []ircwire.Line{ircwire.Kick(g.ServerName, "icb", g.ServerName, g.Session.Channel, nick, "booted")}, nil

	case "Name":
		return g.onStatusName(text), nil

	case "Topic":
		return []ircwire.Line{ircwire.TopicChange(g.ServerName, "icb", g.ServerName, g.Session.Channel, text)}, nil

	case "Pass":
		return g.onStatusPass(text), nil

	default:
		return []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, fmt.Sprintf("ICB Status Message: %s: %s", category, text))}, nil
	}
}

// onStatusGroupChange handles "You are now in group <name>[ (...)]",
// the server's confirmation of a group switch (whether we asked for it
// via JOIN or arrived there implicitly). It parts the previously joined
// channel if there was one, joins the new one, and issues an implicit
// NAMES enquiry, exactly as icb_cmd's 'd' handler calls icb_send_names
// inline after updating irc_channel.
func (g *Gateway) onStatusGroupChange(text string) ([]ircwire.Line, [][]byte) {
	const prefix = "You are now in group "
	if !strings.HasPrefix(text, prefix) {
		return []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, fmt.Sprintf("ICB Status Message: Status: %s", text))}, nil
	}

	c := gwscan.NewCursor([]byte(text[len(prefix):]))
	group, _ := gwscan.ScanString(c, 0, "", " ")
	if group == "" {
		return nil, nil
	}

	var lines []ircwire.Line
	if g.Session.Channel != "" {
		lines = append(lines, ircwire.Part(g.Session.Nick, g.Session.Nick, g.hostFor(g.Session.Nick), g.Session.Channel, "changed group"))
	}
	g.Session.Channel = "#" + group
	g.Session.InChannel = true
	lines = append(lines, ircwire.Join(g.Session.Nick, g.Session.Nick, g.hostFor(g.Session.Nick), g.Session.Channel))

	var toICB [][]byte
	if err := g.Session.BeginEnquiry(gwstate.EnquiryNames, g.Session.Channel, ""); err == nil {
		toICB = [][]byte{icbwire.Enquiry("")}
	}
	return lines, toICB
}

// onStatusName handles the "<old> changed nickname to <new>" status
// line, emitting a NICK event and following our own session's nick if
// the change was ours.
func (g *Gateway) onStatusName(text string) []ircwire.Line {
	c := gwscan.NewCursor([]byte(text))
	oldNick, _ := gwscan.ScanString(c, 0, " ", " ")
	// skip "changed nickname to"
	for i := 0; i < 3; i++ {
		_, _ = gwscan.ScanString(c, 0, " ", " ")
	}
	newNick := strings.TrimSpace(string(c.Rest()))
	if newNick == "" {
		return nil
	}
	if oldNick == g.Session.Nick {
		g.Session.Nick = newNick
	}
	return []ircwire.Line{ircwire.Nick(oldNick, oldNick, g.hostFor(oldNick), newNick)}
}

// onStatusPass handles a moderation-pass status line: either the old
// moderator explicitly passing to a named nick, or a nick's promotion to
// moderator with no predecessor named.
func (g *Gateway) onStatusPass(text string) []ircwire.Line {
	c := gwscan.NewCursor([]byte(text))
	oldMod, _ := gwscan.ScanString(c, 0, " ", " ")
	rest := string(c.Rest())

	const passedTo = " has passed moderation to "
	switch {
	case strings.HasPrefix(rest, passedTo):
		newMod := strings.TrimSuffix(strings.TrimSpace(rest[len(passedTo):]), ".")
		g.Session.Moderator = newMod
		return []ircwire.Line{ircwire.Mode(oldMod, g.Session.Channel, "-o+o", oldMod, newMod)}

	case rest == " is now mod.":
		g.Session.Moderator = oldMod
		return []ircwire.Line{ircwire.Mode(g.Session.HostID, g.Session.Channel, "+o", oldMod)}

	default:
		return nil
	}
}

// onCommandOutput dispatches the command-output sub-grammar by its
// two-letter subtype field: "co" is a burst of free-text lines driving
// LIST/NAMES/WHO/WHOIS (icb_ico's job), "wl" is one who-listing row
// (icb_iwl's job), and "wh" is the deprecated WHOIS header, ignored.
func (g *Gateway) onCommandOutput(pkt icbwire.Packet) []ircwire.Line {
	sub := pkt.FieldString(0)
	switch sub {
	case "co":
		var lines []ircwire.Line
		for i := 1; i < len(pkt.Fields); i++ {
			lines = append(lines, g.onCommandOutputLine(pkt.FieldString(i))...)
		}
		return lines
	case "wl":
		return g.onWhoLine(pkt)
	case "wh":
		return nil
	default:
		return []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, fmt.Sprintf("ICB Command Output: %s: %d args", sub, len(pkt.Fields)-1))}
	}
}

// onCommandOutputLine handles one free-text line within a "co" packet,
// the Go analogue of icb_ico. "Group: " and "Total: " lines drive the
// enquiry; a blank separator line (ICB sends one between groups) is
// dropped, and any other line is passed to the client as a NOTICE.
func (g *Gateway) onCommandOutputLine(line string) []ircwire.Line {
	switch {
	case strings.HasPrefix(line, "Group: "):
		return g.onGroupLine(line)
	case strings.HasPrefix(line, "Total: "):
		return g.onTotalLine()
	case line == "" || line == " ":
		return nil
	default:
		return []ircwire.Line{ircwire.Notice(g.ServerName, g.Session.Nick, fmt.Sprintf("*** Unknown ico: %s", line))}
	}
}

// onGroupLine handles a "Group: <name> ... Topic: <topic>" line: it
// records the named group as the enquiry's current group (so the wl rows
// that follow know which group they belong to) and emits the matching
// numeric - RPL_LIST for every group under a LIST enquiry, RPL_TOPIC
// under a NAMES enquiry only when this is the group asked about.
func (g *Gateway) onGroupLine(line string) []ircwire.Line {
	rest := strings.TrimPrefix(line, "Group: ")
	name, _ := firstWord(rest)
	group := "#" + name
	g.Session.SetEnquiryGroup(group)

	topic := "(None)"
	if idx := strings.Index(rest, "Topic: "); idx >= 0 {
		topic = rest[idx+len("Topic: "):]
	}

	enq := g.Session.Enquiry()
	switch enq.Kind {
	case gwstate.EnquiryList:
		return []ircwire.Line{ircwire.ListReply(g.ServerName, g.Session.Nick, group, 1, topic)}
	case gwstate.EnquiryNames:
		if group == enq.Target {
			return []ircwire.Line{ircwire.Topic(g.ServerName, g.Session.Nick, group, topic)}
		}
	}
	return nil
}

// onTotalLine handles the "Total: N users" line that closes out any
// command-output burst: it emits the enquiry's terminating numeric (the
// WHOIS case has none of its own - its 318 already went out inline with
// the matching wl row) and unconditionally clears the enquiry, mirroring
// icb_ico's unconditional "imode = imode_none" after the Total: branch.
func (g *Gateway) onTotalLine() []ircwire.Line {
	enq := g.Session.Enquiry()
	var lines []ircwire.Line
	switch enq.Kind {
	case gwstate.EnquiryList:
		lines = append(lines, ircwire.EndOfList(g.ServerName, g.Session.Nick))
	case gwstate.EnquiryNames:
		lines = append(lines, ircwire.NamReply(g.ServerName, g.Session.Nick, enq.Target, enq.Names))
		lines = append(lines, ircwire.EndOfNames(g.ServerName, g.Session.Nick, enq.Target))
	case gwstate.EnquiryWho:
		lines = append(lines, ircwire.EndOfWho(g.ServerName, g.Session.Nick, enq.HostMask))
	}
	g.Session.EndEnquiry()
	return lines
}

// onWhoLine handles one "wl" (who-list) row, the Go analogue of
// icb_iwl: nick, idle seconds, moderator flag, ident and host. What it
// produces depends entirely on which enquiry is outstanding and whether
// this row matches its target - a WHOIS row is gated on the nick, a WHO
// row on a hostmask match, a NAMES row on its group matching the channel
// asked about. The moderator update at the end runs regardless of mode.
func (g *Gateway) onWhoLine(pkt icbwire.Packet) []ircwire.Line {
	flags := pkt.FieldString(1)
	nick := pkt.FieldString(2)
	idle, _ := strconv.Atoi(pkt.FieldString(3))
	ident := pkt.FieldString(6)
	host := pkt.FieldString(7)
	chanop := strings.Contains(flags, "m")

	enq := g.Session.Enquiry()
	var lines []ircwire.Line

	switch enq.Kind {
	case gwstate.EnquiryWhois:
		if nick != "" && nick == enq.Target {
			lines = append(lines, ircwire.WhoisUser(g.ServerName, g.Session.Nick, nick, ident, host, nick))
			if enq.CurGroup != "" {
				lines = append(lines, ircwire.WhoisChannels(g.ServerName, g.Session.Nick, nick, chanopPrefix(chanop)+enq.CurGroup))
			}
			lines = append(lines, ircwire.WhoisServer(g.ServerName, g.Session.Nick, nick, g.ServerName, g.Session.HostID))
			lines = append(lines, ircwire.WhoisIdle(g.ServerName, g.Session.Nick, nick, idle))
			lines = append(lines, ircwire.EndOfWhois(g.ServerName, g.Session.Nick, nick))
		}

	case gwstate.EnquiryNames:
		if enq.CurGroup == enq.Target {
			g.Session.AddEnquiryName(chanopPrefix(chanop) + nick)
		}

	case gwstate.EnquiryWho:
		if whoMatches(enq.HostMask, enq.CurGroup, nick, ident, host) {
			lines = append(lines, ircwire.WhoReply(g.ServerName, g.Session.Nick, enq.CurGroup, nick, host, g.ServerName, nick, "H", ident))
		}
	}

	if chanop && enq.CurGroup == g.Session.Channel {
		g.Session.Moderator = nick
	}

	return lines
}

// whoMatches implements icb_iwl's query_hostmask comparison: a mask
// starting with '#' must equal the row's group exactly, anything else
// is matched as a substring of "nick!ident@host".
func whoMatches(hostMask, curGroup, nick, ident, host string) bool {
	if hostMask == "" {
		return false
	}
	if strings.HasPrefix(hostMask, "#") {
		return curGroup == hostMask
	}
	return strings.Contains(nick+"!"+ident+"@"+host, hostMask)
}

// chanopPrefix returns the IRC channel-operator sigil for a chanop row,
// used both in NAMES listings and a WHOIS target's channel entry.
func chanopPrefix(chanop bool) string {
	if chanop {
		return "@"
	}
	return ""
}

// parseNickHost splits an Arrive/Sign-on/Depart status line of the form
// "<nick> ... (<host>)..." into the nick and the parenthesised host.
func parseNickHost(text string) (nick, host string) {
	c := gwscan.NewCursor([]byte(text))
	nick, _ = gwscan.ScanString(c, 0, " ", " ")
	host, _ = gwscan.ScanString(c, 0, " (", ")")
	return nick, host
}

// parseSignOff extends parseNickHost with the trailing disconnect
// reason, stripping one trailing '.' the way the original icb_cmd did.
func parseSignOff(text string) (nick, host, reason string) {
	c := gwscan.NewCursor([]byte(text))
	nick, _ = gwscan.ScanString(c, 0, " ", " ")
	host, _ = gwscan.ScanString(c, 0, " (", ")")
	reason, _ = gwscan.ScanString(c, 0, " )", "")
	reason = strings.TrimSuffix(reason, ".")
	return nick, host, reason
}

// firstWord splits s on the first space, returning the token and the
// (untrimmed) remainder.
func firstWord(s string) (string, string) {
	c := gwscan.NewCursor([]byte(s))
	word, _ := gwscan.ScanString(c, 0, "", " ")
	return word, string(c.Rest())
}
