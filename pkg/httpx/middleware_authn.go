package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/registry/pkg/jwtx"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer token in the Authorization header.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

// SessionMiddleware reads the same access token from a cookie. Browsers
// without a valid session are redirected to loginPath.
func SessionMiddleware(v jwtx.Verifier, cookieName, loginPath string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r, loginPath)
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err == nil {
				err = claims.ValidateExpiry()
			}
			if err != nil {
				slogx.FromContext(r.Context()).Info("session rejected", "err", err)
				ClearCookie(w, cookieName)
				redirectToLogin(w, r, loginPath)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), claims)))
		})
	}
}

// ClearCookie expires cookieName on the client.
func ClearCookie(w http.ResponseWriter, cookieName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	http.Redirect(w, r, loginPath+"?next="+r.URL.EscapedPath(), http.StatusSeeOther)
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
