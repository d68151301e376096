// Package config binds server flags to CORRGAME_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/JaimeRLA/CorrelationGame/internal/logging"
)

// EnvPrefix prefixes every environment variable the server reads
const EnvPrefix = "CORRGAME"

// Config holds every server setting
type Config struct {
	Bind              string
	Port              int
	Storage           string
	RedisURL          string
	SQLDriver         string
	SQLDSN            string
	JWTSecret         string
	SessionTTL        time.Duration
	LoginDomain       string
	AllowRegistration bool
	Chains            string
	LogLevel          string
	LogFormat         string
	LeaderboardSize   int
}

// Validate checks settings that flags alone cannot enforce
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}

	switch c.Storage {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("--redis-url is required with --storage=redis")
		}
	case "sql":
		switch c.SQLDriver {
		case "sqlite", "postgres", "mysql":
		default:
			return fmt.Errorf("invalid --sql-driver %q: must be sqlite, postgres or mysql", c.SQLDriver)
		}
		if c.SQLDSN == "" {
			return errors.New("--sql-dsn is required with --storage=sql")
		}
	default:
		return fmt.Errorf("invalid --storage %q: must be memory, redis or sql", c.Storage)
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return errors.New("--jwt-secret must be at least 16 bytes")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid --session-ttl: %s", c.SessionTTL)
	}
	if c.LoginDomain == "" {
		return errors.New("--login-domain must not be empty")
	}
	if c.LeaderboardSize < 1 || c.LeaderboardSize > 100 {
		return fmt.Errorf("invalid --leaderboard-size (must be between 1-100 inclusive): %d", c.LeaderboardSize)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid --log-level %q", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid --log-format %q", c.LogFormat)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// RegisterFlags adds the server flags to cmd and binds each one to its
// CORRGAME_* environment variable. Explicit flags win over the environment.
func RegisterFlags(cmd *cobra.Command, cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: CORRGAME_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: CORRGAME_PORT)")
	fs.StringVar(&cfg.Storage, "storage", "memory", "storage backend: memory, redis or sql (env: CORRGAME_STORAGE)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "redis://localhost:6379", "redis connection url (env: CORRGAME_REDIS_URL)")
	fs.StringVar(&cfg.SQLDriver, "sql-driver", "sqlite", "sql driver: sqlite, postgres or mysql (env: CORRGAME_SQL_DRIVER)")
	fs.StringVar(&cfg.SQLDSN, "sql-dsn", "corrgame.db", "sql data source name (env: CORRGAME_SQL_DSN)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "session signing secret, random per process when empty (env: CORRGAME_JWT_SECRET)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 24*time.Hour, "session lifetime (env: CORRGAME_SESSION_TTL)")
	fs.StringVar(&cfg.LoginDomain, "login-domain", "correlationsgame.local", "domain of derived account logins (env: CORRGAME_LOGIN_DOMAIN)")
	fs.BoolVar(&cfg.AllowRegistration, "allow-registration", true, "accept new registrations (env: CORRGAME_ALLOW_REGISTRATION)")
	fs.StringVar(&cfg.Chains, "chains", "", "yaml chain content file, embedded chains when empty (env: CORRGAME_CHAINS)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn or error (env: CORRGAME_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "json", "log format: json or text (env: CORRGAME_LOG_FORMAT)")
	fs.IntVar(&cfg.LeaderboardSize, "leaderboard-size", 10, "default leaderboard rows (env: CORRGAME_LEADERBOARD_SIZE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
