package registry_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/registry/pkg/registrysdk"
	"github.com/stretchr/testify/require"
)

func TestClientBookOverAPI(t *testing.T) {
	baseURL, container := setupRegistryContainer(t, containerOptions{})
	ctx := t.Context()

	out := registryctl(t, container, "seed")
	require.Contains(t, out, "5 client(s) created, 0 skipped")

	session := login(t, baseURL)

	stats, err := session.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, registrysdk.StatisticsResponse{
		Total: 5, Active: 4, Inactive: 1, WithFiscalCredential: 4, PercentActive: 80,
	}, *stats)

	active := false
	list, err := session.ListClients(ctx, registrysdk.ListClientsParams{Active: &active})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "IMPORTADORA NORTE", list.Items[0].Name)

	list, err = session.ListClients(ctx, registrysdk.ListClientsParams{Search: "caba"})
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)

	created, err := session.CreateClient(ctx, registrysdk.ClientRequest{
		Name:        "NUEVO CLIENTE S.R.L.",
		TaxID:       "33-70000000-9",
		Credentials: &map[string]string{"fiscal": "nuevo-secret"},
	})
	require.NoError(t, err)
	require.True(t, created.Active)
	require.Equal(t, "33700000009", created.TaxIDNoHyphens)

	_, err = session.CreateClient(ctx, registrysdk.ClientRequest{Name: "Duplicate", TaxID: "33-70000000-9"})
	details, ok := registrysdk.ValidationDetails(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	require.Contains(t, details, "tax_id")

	byTax, err := session.GetClientByTaxID(ctx, "33-70000000-9")
	require.NoError(t, err)
	require.Equal(t, created.ID, byTax.ID)

	notes := "monthly filing"
	patched, err := session.PatchClient(ctx, created.ID, registrysdk.ClientPatchRequest{Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, notes, patched.Notes)
	require.Equal(t, "nuevo-secret", patched.Credentials["fiscal"])

	toggled, err := session.ToggleActive(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, toggled.Client.Active)

	require.NoError(t, session.DeleteClient(ctx, created.ID))
	_, err = session.GetClient(ctx, created.ID)
	require.True(t, registrysdk.IsNotFound(err))
	assertStatus(t, err, http.StatusNotFound)

	// Seeding again leaves the book untouched.
	out = registryctl(t, container, "seed")
	require.Contains(t, out, "0 client(s) created, 5 skipped")
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	baseURL, _ := setupRegistryContainer(t, containerOptions{})

	session := registrysdk.NewSDKClient(baseURL).NewSessionFromToken("not-a-token", "clients:read", 60)
	_, err := session.ListClients(t.Context(), registrysdk.ListClientsParams{})
	assertStatus(t, err, http.StatusUnauthorized)

	_, err = registrysdk.NewSDKClient(baseURL).PasswordGrant(t.Context(), adminUsername, "wrong", nil)
	assertStatus(t, err, http.StatusUnauthorized)
}
