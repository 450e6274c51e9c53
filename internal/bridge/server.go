// Package bridge implements the TCP acceptor and per-connection relay
// loop that ties one IRC client socket to one ICB server socket through
// a gateway.Gateway, grounded on the teacher's toc.Server accept/relay
// pattern (net.Listen, one goroutine pair per connection, errgroup
// shutdown).
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lcheylus/icbirc-gateway/internal/gateway"
	"github.com/lcheylus/icbirc-gateway/internal/icbwire"
	"github.com/lcheylus/icbirc-gateway/internal/ircwire"
)

// Config is the subset of settings the bridge needs to run, independent
// of how they were sourced.
type Config struct {
	ListenAddr     string
	ICBAddr        string
	ServerName     string
	Version        string
	HostSuffix     string
	MaxConnsPerIP  int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server accepts IRC client connections and bridges each one to the
// configured ICB backend.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	limiter *ConnLimiter
	counter *ConnCounter
	audit   *AuditLog
}

// New returns a Server ready to Start. audit may be nil to disable the
// optional connection audit log.
func New(cfg Config, logger *slog.Logger, audit *AuditLog) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger.With("svc", "bridge"),
		limiter: NewConnLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		counter: NewConnCounter(cfg.MaxConnsPerIP),
		audit:   audit,
	}
}

// Start listens on cfg.ListenAddr until ctx is cancelled, bridging every
// accepted client to its own ICB connection. It returns once the
// listener is closed and all in-flight connections have drained.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bridge: listen: %w", err)
	}
	s.logger.Info("listening", "addr", s.cfg.ListenAddr, "icb_addr", s.cfg.ICBAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("bridge: accept: %w", err)
			}
			g.Go(func() error {
				s.handleConn(ctx, conn)
				return nil
			})
		}
	})

	return g.Wait()
}

// handleConn runs the full lifecycle of one client connection: admission
// control, dialing the ICB backend, relaying in both directions until
// either side closes, and cleanup.
func (s *Server) handleConn(ctx context.Context, client net.Conn) {
	defer client.Close()
	addr := client.RemoteAddr()

	if !s.limiter.Allow(addr) {
		s.logger.Warn("rate limited", "addr", addr.String())
		return
	}
	if !s.counter.Acquire(addr) {
		s.logger.Warn("too many connections", "addr", addr.String())
		return
	}
	defer s.counter.Release(addr)

	connID := uuid.NewString()
	log := s.logger.With("conn", connID, "addr", addr.String())

	if s.audit != nil {
		if err := s.audit.RecordConnect(ctx, connID, hostOf(addr)); err != nil {
			log.Warn("audit record failed", "err", err)
		}
	}

	icbConn, err := net.DialTimeout("tcp", s.cfg.ICBAddr, 10*time.Second)
	if err != nil {
		log.Error("dialing icb backend failed", "err", err)
		return
	}
	defer icbConn.Close()

	gw := gateway.New(s.cfg.ServerName, s.cfg.Version, s.cfg.HostSuffix, log)
	if s.audit != nil {
		gw.OnRegister = func(nick string) {
			if err := s.audit.RecordNick(ctx, connID, nick); err != nil {
				log.Warn("audit record failed", "err", err)
			}
		}
	}

	reason := s.relay(ctx, client, icbConn, gw, log)

	if s.audit != nil {
		if err := s.audit.RecordDisconnect(ctx, connID, reason); err != nil {
			log.Warn("audit record failed", "err", err)
		}
	}
	log.Info("connection closed", "reason", reason)
}

// relay pumps both directions until one side errs or closes, then
// returns a short reason string for logging/audit.
func (s *Server) relay(ctx context.Context, client, icb net.Conn, gw *gateway.Gateway, log *slog.Logger) string {
	done := make(chan string, 2)

	go func() {
		done <- s.pumpClientToICB(client, icb, gw, log)
	}()
	go func() {
		done <- s.pumpICBToClient(icb, client, gw, log)
	}()

	select {
	case reason := <-done:
		return reason
	case <-ctx.Done():
		return "shutdown"
	}
}

func (s *Server) pumpClientToICB(client, icb net.Conn, gw *gateway.Gateway, log *slog.Logger) string {
	framer := ircwire.NewFramer()
	buf := make([]byte, 4096)
	for {
		n, err := client.Read(buf)
		if n > 0 {
			for _, line := range framer.Feed(buf[:n]) {
				msg := ircwire.Parse(line)
				outcome := gw.ToICB(msg)
				for _, pkt := range outcome.ToICB {
					if _, werr := icb.Write(pkt); werr != nil {
						return "icb write error"
					}
				}
				for _, reply := range outcome.ToIRC {
					if _, werr := client.Write([]byte(reply)); werr != nil {
						return "client write error"
					}
				}
				if outcome.Terminate {
					return "client quit"
				}
			}
		}
		if err != nil {
			return "client closed"
		}
	}
}

func (s *Server) pumpICBToClient(icb, client net.Conn, gw *gateway.Gateway, log *slog.Logger) string {
	framer := icbwire.NewFramer()
	buf := make([]byte, 4096)
	for {
		n, err := icb.Read(buf)
		if n > 0 {
			for _, pkt := range framer.Feed(buf[:n]) {
				reply := gw.FromICB(pkt)
				for _, line := range reply.Lines {
					if _, werr := client.Write([]byte(line)); werr != nil {
						return "client write error"
					}
				}
				for _, out := range reply.ToICB {
					if _, werr := icb.Write(out); werr != nil {
						return "icb write error"
					}
				}
				if reply.Terminate {
					return "icb exit"
				}
			}
		}
		if err != nil {
			return "icb closed"
		}
	}
}
