package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("REGISTRY_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "registry.db", cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10, cfg.PageSize)
	require.Equal(t, time.Minute, cfg.StatsInterval)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL)
	require.False(t, cfg.CookieSecure)
}

func TestLoadConfigEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "registry.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"REGISTRY_DATABASE_DRIVER=postgres\n"+
			"REGISTRY_DATABASE_URL=postgres://registry@db/registry\n"+
			"REGISTRY_STATS_INTERVAL=5\n"+
			"PORT=9090\n",
	), 0o600))

	t.Setenv("REGISTRY_ENV_FILE", envFile)
	// Variables already in the environment win over the file.
	t.Setenv("PORT", "7070")
	t.Setenv("REGISTRY_COOKIE_SECURE", "true")
	t.Cleanup(func() {
		_ = os.Unsetenv("REGISTRY_DATABASE_DRIVER")
		_ = os.Unsetenv("REGISTRY_DATABASE_URL")
		_ = os.Unsetenv("REGISTRY_STATS_INTERVAL")
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, "postgres://registry@db/registry", cfg.DatabaseURL)
	require.Equal(t, 5*time.Minute, cfg.StatsInterval)
	require.Equal(t, 7070, cfg.Port)
	require.True(t, cfg.CookieSecure)
}

func TestConfigValidate(t *testing.T) {
	base := Config{DatabaseDriver: DriverSQLite, PageSize: 10}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"sqlite", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "REGISTRY_DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, `unknown database driver "mysql"`},
		{"page size too large", func(c *Config) { c.PageSize = 500 }, "REGISTRY_PAGE_SIZE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
