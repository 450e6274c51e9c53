package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcheylus/icbirc-gateway/internal/bridge"
	"github.com/lcheylus/icbirc-gateway/internal/config"
)

// default build fields populated by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configFile string

func init() {
	cfgFile := flag.String("config", "settings.env", "Path to config file")
	showHelp := flag.Bool("help", false, "Display help")
	showVersion := flag.Bool("version", false, "Display build information")

	flag.Parse()

	switch {
	case *showVersion:
		fmt.Printf("%-10s %s\n", "version:", version)
		fmt.Printf("%-10s %s\n", "commit:", commit)
		fmt.Printf("%-10s %s\n", "date:", date)
		os.Exit(0)
	case *showHelp:
		flag.PrintDefaults()
		if err := config.Usage(); err != nil {
			fmt.Printf("config usage: %s\n", err)
		}
		os.Exit(0)
	}

	configFile = *cfgFile
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Printf("startup failed: %s\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	var audit *bridge.AuditLog
	if cfg.AuditDBPath != "" {
		audit, err = bridge.OpenAuditLog(cfg.AuditDBPath)
		if err != nil {
			logger.Error("opening audit log failed", "err", err)
			os.Exit(1)
		}
		defer audit.Close()
	}

	srv := bridge.New(bridge.Config{
		ListenAddr:     cfg.ListenAddr,
		ICBAddr:        cfg.ICBAddr,
		ServerName:     cfg.ServerName,
		Version:        version,
		HostSuffix:     cfg.HostSuffix,
		MaxConnsPerIP:  cfg.MaxConnsPerIP,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger, audit)

	if err := srv.Start(ctx); err != nil {
		logger.Error("gateway stopped", "err", err.Error())
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
