package registry_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/registry/pkg/registrysdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitTokenEndpoint verifies password guessing is throttled after
// five attempts per username and address.
func TestRateLimitTokenEndpoint(t *testing.T) {
	baseURL, _ := setupRegistryContainer(t, containerOptions{defaultLimits: true})
	client := registrysdk.NewSDKClient(baseURL)

	for i := range 5 {
		_, err := client.PasswordGrant(t.Context(), "intruder", "guess", nil)
		require.Error(t, err)
		assertStatus(t, err, http.StatusUnauthorized)
		t.Logf("attempt %d rejected with 401", i+1)
	}

	_, err := client.PasswordGrant(t.Context(), "intruder", "guess", nil)
	assertStatus(t, err, http.StatusTooManyRequests)

	// Other usernames have their own bucket.
	_, err = client.PasswordGrant(t.Context(), adminUsername, adminPassword, nil)
	require.NoError(t, err)
}
