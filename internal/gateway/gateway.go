// Package gateway implements the two translation tables that sit at the
// heart of the bridge: ICB packets to IRC lines (component E) and IRC
// messages to ICB packets (component F). Both directions share one
// Gateway value, which owns the connection's Session and knows how to
// name the synthetic server and hosts IRC numerics require but ICB has
// no concept of.
package gateway

import (
	"log/slog"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/lcheylus/icbirc-gateway/internal/gwstate"
)

// Gateway ties one IRC client connection to one ICB server connection
// through a shared Session.
type Gateway struct {
	ServerName string
	Version    string
	HostSuffix string

	Session *gwstate.Session
	Logger  *slog.Logger

	// OnRegister, if set, is called once with the client's nick the
	// moment registration completes and the ICB Login packet is sent -
	// the bridge layer uses this to update its connection audit log
	// without the gateway needing to know anything about sqlite.
	OnRegister func(nick string)
}

// New returns a Gateway for a freshly accepted connection.
func New(serverName, version, hostSuffix string, logger *slog.Logger) *Gateway {
	return &Gateway{
		ServerName: serverName,
		Version:    version,
		HostSuffix: hostSuffix,
		Session:    gwstate.New(),
		Logger:     logger.With("svc", "gateway"),
	}
}

// hostFor synthesizes a hostname for an ICB nick, since ICB carries no
// per-user address information the way IRC's ident@host convention
// expects. Every remote participant gets the same gateway-wide suffix.
func (g *Gateway) hostFor(nick string) string {
	if g.HostSuffix == "" {
		return "icb"
	}
	return nick + "." + g.HostSuffix
}

// wrapBanner line-wraps a single ICB protocol banner field at IRC's
// conventional 80 columns so a long server-of-the-day message doesn't
// produce one enormous MOTD line.
func wrapBanner(banner string) []string {
	wrapped := wordwrap.WrapString(banner, 80)
	return strings.Split(wrapped, "\n")
}
