package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/registry/pkg/httpx"
	"github.com/aussiebroadwan/registry/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var trace []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trace = append(trace, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c"}, trace)
}

func newKeys(t *testing.T) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "test"})
	require.NoError(t, err)
	return km
}

func sign(t *testing.T, km *jwtx.KeyManager, scopes ...string) string {
	t.Helper()
	tok, err := km.Signer.Sign(jwtx.NewAccessClaims("user-1", "admin", scopes, time.Minute, "test", nil, time.Now().UTC()))
	require.NoError(t, err)
	return tok
}

func TestAuthnAndScopes(t *testing.T) {
	km := newKeys(t)
	h := httpx.Chain(okHandler,
		httpx.AuthnMiddleware(km.Verifier),
		httpx.RequireAnyScope("clients:write"),
	)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"missing scope", "Bearer " + sign(t, km, "clients:read"), http.StatusForbidden},
		{"granted", "Bearer " + sign(t, km, "clients:read", "clients:write"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSessionMiddleware(t *testing.T) {
	km := newKeys(t)
	var seen string
	h := httpx.SessionMiddleware(km.Verifier, "session", "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := httpx.ClaimsFromContext(r.Context())
		require.True(t, ok)
		seen = c.Username
	}))

	t.Run("redirects without cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients", nil))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?next=/clients", rec.Header().Get("Location"))
	})

	t.Run("clears invalid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	})

	t.Run("accepts valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: sign(t, km)})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "admin", seen)
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"ok", `{"name":"ACME"}`, ""},
		{"empty", ``, "empty"},
		{"unknown field", `{"nombre":"ACME"}`, "unknown field"},
		{"trailing object", `{"name":"a"}{"name":"b"}`, "single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var dst body
			err := httpx.DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				require.Equal(t, "ACME", dst.Name)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
