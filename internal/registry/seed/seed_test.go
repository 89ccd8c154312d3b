package seed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/seed"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/internal/registry/store/drivers/sqlite"
	"github.com/aussiebroadwan/registry/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newClientService(t *testing.T) *service.ClientService {
	t.Helper()
	key, _, err := cryptox.LoadMasterKey("", "seed-test-master-key")
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer(key)
	require.NoError(t, err)

	st, err := sqlite.NewStore(":memory:", sealer)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return &service.ClientService{Store: st}
}

func TestDemoFixture(t *testing.T) {
	t.Parallel()

	inputs, err := seed.Demo()
	require.NoError(t, err)
	require.Len(t, inputs, 5)

	for _, in := range inputs {
		require.Regexp(t, domain.TaxIDPattern, in.TaxID, in.Name)
		for sys := range in.Credentials {
			require.True(t, sys.Known(), "unknown system %q in %s", sys, in.Name)
		}
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newClientService(t)

	inputs, err := seed.Demo()
	require.NoError(t, err)

	res, err := seed.Load(ctx, svc, inputs)
	require.NoError(t, err)
	require.Equal(t, seed.Result{Created: 5}, res)

	res, err = seed.Load(ctx, svc, inputs)
	require.NoError(t, err)
	require.Equal(t, seed.Result{Skipped: 5}, res)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Statistics{
		Total:                5,
		Active:               4,
		Inactive:             1,
		WithFiscalCredential: 4,
		PercentActive:        80,
	}, stats)

	norte, err := svc.GetByTaxID(ctx, "30-11223344-5")
	require.NoError(t, err)
	require.False(t, norte.Active)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := seed.Parse(strings.NewReader("- name: X\n  cuit: 30-12345678-9\n"))
	require.Error(t, err)
}

func TestLoadStopsOnInvalidClient(t *testing.T) {
	t.Parallel()
	svc := newClientService(t)

	inputs, err := seed.Parse(strings.NewReader("- name: Broken\n  tax_id: 301234\n"))
	require.NoError(t, err)

	res, err := seed.Load(context.Background(), svc, inputs)
	require.ErrorIs(t, err, service.ErrValidation)
	require.Zero(t, res.Created)
}
