// Package config defines the gateway's environment-driven configuration,
// loaded the way the teacher's config package does: envconfig struct
// tags, an optional .env file, and per-field descriptions used to print
// -help output.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full set of environment-tunable gateway settings.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:"127.0.0.1:6667" description:"address the gateway listens for IRC clients on"`
	ICBAddr    string `envconfig:"ICB_ADDR" required:"true" description:"host:port of the upstream ICB server"`
	ServerName string `envconfig:"SERVER_NAME" default:"icbirc" description:"name this gateway announces itself as in IRC numerics"`
	HostSuffix string `envconfig:"HOST_SUFFIX" default:"icb" description:"domain suffix appended to synthesized ICB user hostnames"`

	MaxConnsPerIP int     `envconfig:"MAX_CONNS_PER_IP" default:"4" description:"maximum simultaneous client connections accepted from one IP"`
	RateLimitRPS  float64 `envconfig:"RATE_LIMIT_RPS" default:"2" description:"sustained new-connection rate allowed per IP, per second"`
	RateLimitBurst int    `envconfig:"RATE_LIMIT_BURST" default:"5" description:"burst of new connections allowed per IP above the sustained rate"`

	AuditDBPath string `envconfig:"AUDIT_DB_PATH" default:"" description:"optional sqlite path for a connection audit log; empty disables it"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" description:"slog level: debug, info, warn or error"`
}

// Load reads envPath into the process environment, if present, and then
// populates a Config from it. A missing env file is not an error - the
// gateway falls back to whatever is already in the environment, the
// same tolerance the teacher's main() shows toward a missing
// settings.env.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Config file (%s) not found, defaulting to env vars for app config...\n", envPath)
		} else {
			fmt.Printf("Successfully loaded config file (%s)\n", envPath)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

// Usage prints the envconfig-derived help text, mirroring the teacher's
// -help flag behavior.
func Usage() error {
	var c Config
	return envconfig.Usage("", &c)
}
