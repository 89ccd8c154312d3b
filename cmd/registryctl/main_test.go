package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("REGISTRY_ENV_FILE", filepath.Join(dir, "none.env"))
	t.Setenv("REGISTRY_DATABASE_DRIVER", "sqlite")
	t.Setenv("REGISTRY_DATABASE_FILE", filepath.Join(dir, "registry.db"))
	t.Setenv("REGISTRY_PEPPER_FILE", filepath.Join(dir, "pepper"))
	t.Setenv("REGISTRY_MASTER_KEY", "registryctl-test-key")
	t.Setenv("LOG_LEVEL", "error")
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))
	require.Contains(t, out.String(), "create-admin")

	out.Reset()
	require.ErrorContains(t, run([]string{"frobnicate"}, &out), `unknown command "frobnicate"`)
}

func TestSeedAndStats(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer

	require.NoError(t, run([]string{"migrate"}, &out))
	require.Contains(t, out.String(), "migrations applied (sqlite)")

	out.Reset()
	require.NoError(t, run([]string{"seed"}, &out))
	require.Equal(t, "5 client(s) created, 0 skipped\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"seed"}, &out))
	require.Equal(t, "0 client(s) created, 5 skipped\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"stats"}, &out))
	require.Contains(t, out.String(), "total:           5")
	require.Contains(t, out.String(), "active share:    80.00%")
}

func TestCreateAdmin(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer

	require.NoError(t, run([]string{"create-admin", "--username", "boss", "--password", "boss-pass"}, &out))
	require.Equal(t, "operator \"boss\" created\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"create-admin", "-u", "boss"}, &out))
	require.Equal(t, "operator \"boss\" already exists\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"create-admin", "-u", "second"}, &out))
	require.Contains(t, out.String(), "password: ")

	require.ErrorContains(t, run([]string{"stats", "extra"}, &out), "unexpected argument: extra")
}
