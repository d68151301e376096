package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd, cfg)
	return cmd
}

func validConfig() Config {
	return Config{
		Bind:            "127.0.0.1",
		Port:            8080,
		Storage:         "memory",
		SessionTTL:      time.Hour,
		LoginDomain:     "correlationsgame.local",
		LogLevel:        "info",
		LogFormat:       "json",
		LeaderboardSize: 10,
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	cmd := newTestCommand(&cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.AllowRegistration)
	assert.Equal(t, "correlationsgame.local", cfg.LoginDomain)
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("CORRGAME_PORT", "9090")
	t.Setenv("CORRGAME_STORAGE", "sql")
	t.Setenv("CORRGAME_SQL_DRIVER", "postgres")
	t.Setenv("CORRGAME_SESSION_TTL", "2h")
	t.Setenv("CORRGAME_ALLOW_REGISTRATION", "false")

	var cfg Config
	cmd := newTestCommand(&cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sql", cfg.Storage)
	assert.Equal(t, "postgres", cfg.SQLDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.AllowRegistration)
}

func TestFlagsAreRegisteredWithEnvNames(t *testing.T) {
	var cfg Config
	cmd := newTestCommand(&cfg)

	for _, name := range []string{
		"bind", "port", "storage", "redis-url", "sql-driver", "sql-dsn", "jwt-secret",
		"session-ttl", "login-domain", "allow-registration", "chains", "log-level",
		"log-format", "leaderboard-size",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "invalid port"},
		{"unknown storage", func(c *Config) { c.Storage = "etcd" }, "invalid --storage"},
		{"redis without url", func(c *Config) { c.Storage = "redis" }, "--redis-url"},
		{"sql bad driver", func(c *Config) { c.Storage = "sql"; c.SQLDriver = "oracle"; c.SQLDSN = "x" }, "invalid --sql-driver"},
		{"sql without dsn", func(c *Config) { c.Storage = "sql"; c.SQLDriver = "sqlite" }, "--sql-dsn"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "--jwt-secret"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "--session-ttl"},
		{"empty domain", func(c *Config) { c.LoginDomain = "" }, "--login-domain"},
		{"leaderboard too big", func(c *Config) { c.LeaderboardSize = 500 }, "--leaderboard-size"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "--log-level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "--log-format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
