package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/httpx"
	"github.com/aussiebroadwan/registry/pkg/registrysdk"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

// TokenHandler serves POST /v1/auth/token.
// Accepts application/x-www-form-urlencoded per RFC 6749.
type TokenHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Token Endpoint
//	@Description	Issues an operator access token using the password grant.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type	formData	string							true	"Grant type"	Enums(password)
//	@Param			username	formData	string							true	"Operator username"
//	@Param			password	formData	string							true	"Operator password"
//	@Param			scope		formData	string							false	"Space-delimited list of scopes"
//	@Success		200			{object}	registrysdk.TokenResponse		"access_token, token_type, expires_in, scope"
//	@Failure		400			{object}	registrysdk.OAuthErrorResponse	"error, error_description"
//	@Failure		401			{object}	registrysdk.OAuthErrorResponse	"error, error_description"
//	@Failure		429			{object}	registrysdk.OAuthErrorResponse	"rate limited"
//	@Failure		500			{object}	registrysdk.OAuthErrorResponse	"error, error_description"
//	@Header			200			{string}	Cache-Control					"no-store"
//	@Router			/v1/auth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		registrysdk.NewInvalidRequest("content type must be application/x-www-form-urlencoded").WriteOAuthError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		registrysdk.NewInvalidRequest("malformed form body").WriteOAuthError(w)
		return
	}

	switch r.Form.Get("grant_type") {
	case "password":
		h.handlePasswordGrant(w, r)
	default:
		registrysdk.ErrUnsupportedGrantType.WriteOAuthError(w)
	}
}

func (h *TokenHandler) handlePasswordGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		registrysdk.NewInvalidRequest("username and password are required").WriteOAuthError(w)
		return
	}

	tok, err := h.AuthService.PasswordGrant(ctx, username, password, r.Form.Get("scope"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			registrysdk.ErrInvalidGrant.WriteOAuthError(w)
		case errors.Is(err, service.ErrInvalidScope):
			registrysdk.ErrInvalidScope.WriteOAuthError(w)
		default:
			log.Error("password grant failed", "err", err)
			registrysdk.ErrServerError.WriteOAuthError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, registrysdk.TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   int(tok.ExpiresIn.Seconds()),
		Scope:       strings.Join(tok.Scopes, " "),
	})
}
