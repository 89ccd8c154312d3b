package service_test

import (
	"testing"

	"github.com/aussiebroadwan/registry/internal/registry/metrics"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/internal/registry/store/drivers/sqlite"
	"github.com/aussiebroadwan/registry/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	key, _, err := cryptox.LoadMasterKey("", "service-test-master-key")
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer(key)
	require.NoError(t, err)

	s, err := sqlite.NewStore(":memory:", sealer)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newClientService(t *testing.T) (*service.ClientService, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	return &service.ClientService{Store: newTestStore(t), Metrics: m}, m
}
