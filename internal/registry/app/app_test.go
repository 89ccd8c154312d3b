package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewServesHealthAndUI(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Issuer:              "registry-app-test",
		AccessTTL:           time.Minute,
		DatabaseDriver:      DriverSQLite,
		DatabaseFile:        filepath.Join(dir, "registry.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		MasterKey:           "app-test-master-key",
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "text",
		ShutdownGracePeriod: time.Second,
		StatsInterval:       time.Minute,
		PageSize:            10,
	}

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.db.Close() })

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/login")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.FileExists(t, cfg.PepperFile)
}
