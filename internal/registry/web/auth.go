package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/httpx"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

type loginView struct {
	Username string
	Next     string
	Error    string
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", "Sign in", loginView{Next: safeNext(r.URL.Query().Get("next"))})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	next := safeNext(r.PostForm.Get("next"))

	tok, err := h.Auth.PasswordGrant(r.Context(), username, r.PostForm.Get("password"), "")
	if err != nil {
		status, msg := http.StatusUnauthorized, "Invalid username or password."
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slogx.FromContext(r.Context()).Error("web login failed", "err", err)
			status, msg = http.StatusInternalServerError, "Sign in is unavailable, try again later."
		}
		h.render(w, r, status, "login", "Sign in", loginView{Username: username, Next: next, Error: msg})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tok.AccessToken,
		Path:     "/",
		MaxAge:   int(tok.ExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	httpx.ClearCookie(w, SessionCookie)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}
