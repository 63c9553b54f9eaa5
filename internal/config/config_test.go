package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Empty values read as unset, isolating the test from the host env.
	for _, key := range []string{"HTTP_ADDR", "APP_ENV", "DB_ENABLED", "DB_MAX_CONNS", "DB_MAX_IDLE"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "development", cfg.Env)
	require.True(t, cfg.DBEnabled)
	require.Equal(t, 20, cfg.Database.MaxConns)
	require.Equal(t, 5, cfg.Database.MaxIdle)
}

func TestLoadPoolSettingsFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "42")
	t.Setenv("DB_MAX_IDLE", "7")

	cfg := Load()
	require.Equal(t, 42, cfg.Database.MaxConns)
	require.Equal(t, 7, cfg.Database.MaxIdle)
}

func TestLoadPoolSettingsIgnoreGarbage(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")

	cfg := Load()
	require.Equal(t, 20, cfg.Database.MaxConns)
}
