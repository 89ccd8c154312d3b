package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/cryptox"
	"github.com/aussiebroadwan/registry/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*service.AuthService, *jwtx.KeyManager) {
	t.Helper()

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "registry-test"})
	require.NoError(t, err)

	return &service.AuthService{
		Store:     newTestStore(t),
		Hasher:    cryptox.PasswordHasher{Pepper: "test-pepper"},
		Signer:    km.Signer,
		Issuer:    "registry-test",
		AccessTTL: 5 * time.Minute,
	}, km
}

func TestCreateAdminIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAuthService(t)

	created, err := svc.CreateAdmin(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.CreateAdmin(ctx, "admin", "other-pass")
	require.NoError(t, err)
	require.False(t, created)

	// The first password still works.
	u, err := svc.Authenticate(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
	require.ElementsMatch(t, domain.AllScopes, u.Scopes)
}

func TestPasswordGrant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, km := newAuthService(t)

	_, err := svc.CreateUser(ctx, "lectora", "mirar-solo", []string{domain.ScopeClientsRead})
	require.NoError(t, err)

	t.Run("issues verifiable token", func(t *testing.T) {
		tok, err := svc.PasswordGrant(ctx, "lectora", "mirar-solo", "")
		require.NoError(t, err)
		require.Equal(t, "Bearer", tok.TokenType)
		require.Equal(t, 5*time.Minute, tok.ExpiresIn)

		claims, err := km.Verifier.Verify(tok.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "lectora", claims.Username)
		require.True(t, claims.HasScope(domain.ScopeClientsRead))
		require.False(t, claims.HasScope(domain.ScopeClientsWrite))
	})

	t.Run("rejects scope not held", func(t *testing.T) {
		_, err := svc.PasswordGrant(ctx, "lectora", "mirar-solo", domain.ScopeClientsWrite)
		require.ErrorIs(t, err, service.ErrInvalidScope)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.PasswordGrant(ctx, "lectora", "nope", "")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.PasswordGrant(ctx, "nadie", "nope", "")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestCreateUserRequiresFields(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService(t)

	_, err := svc.CreateUser(context.Background(), "  ", "x", nil)
	require.Error(t, err)
}
