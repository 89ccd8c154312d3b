// Package web serves the operator facing HTML interface of the registry.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/httpx"
	"github.com/aussiebroadwan/registry/pkg/jwtx"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

const (
	SessionCookie = "registry_session"
	flashCookie   = "registry_flash"
	loginPath     = "/login"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"login", "dashboard", "list", "detail", "form"}

// Handler renders the web UI. Sessions carry the same access token as the
// REST API, stored in an HttpOnly cookie.
type Handler struct {
	Clients      *service.ClientService
	Auth         *service.AuthService
	Verifier     jwtx.Verifier
	PageSize     int
	CookieSecure bool

	templates map[string]*template.Template
}

func NewHandler(clients *service.ClientService, auth *service.AuthService, verifier jwtx.Verifier) (*Handler, error) {
	h := &Handler{
		Clients:   clients,
		Auth:      auth,
		Verifier:  verifier,
		PageSize:  service.DefaultPageSize,
		templates: make(map[string]*template.Template, len(pages)),
	}

	for _, name := range pages {
		t, err := template.New("layout.html").
			Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		h.templates[name] = t
	}
	return h, nil
}

// Register mounts the UI on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	session := httpx.SessionMiddleware(h.Verifier, SessionCookie, loginPath)
	read := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, session, httpx.RequireAnyScope(domain.ScopeClientsRead))
	}
	write := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, session, httpx.RequireAnyScope(domain.ScopeClientsWrite))
	}

	mux.HandleFunc("GET "+loginPath, h.handleLoginForm)
	mux.Handle("POST "+loginPath, httpx.Chain(http.HandlerFunc(h.handleLogin),
		httpx.RateLimitByIPAndFormField(httpx.LoginLimit, "username"),
	))
	mux.HandleFunc("POST /logout", h.handleLogout)

	mux.Handle("GET /{$}", read(h.handleDashboard))
	mux.Handle("GET /clients", read(h.handleList))
	mux.Handle("GET /clients/new", write(h.handleNewForm))
	mux.Handle("POST /clients/new", write(h.handleCreate))
	mux.Handle("GET /clients/{id}", read(h.handleDetail))
	mux.Handle("GET /clients/{id}/edit", write(h.handleEditForm))
	mux.Handle("POST /clients/{id}/edit", write(h.handleEdit))
	mux.Handle("POST /clients/{id}/delete", write(h.handleDelete))
	mux.Handle("POST /clients/{id}/toggle-active", write(h.handleToggle))
}

type view struct {
	Title    string
	Username string
	Flash    string
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	v := view{Title: title, Flash: popFlash(w, r), Data: data}
	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
		v.Username = claims.Username
	}

	var buf bytes.Buffer
	if err := h.templates[name].Execute(&buf, v); err != nil {
		slogx.FromContext(r.Context()).Error("render failed", "template", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	httpx.ClearCookie(w, flashCookie)
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

var systemLabels = map[domain.CredentialSystem]string{
	domain.CredentialFiscal:            "Fiscal key",
	domain.CredentialCityPortal:        "City portal",
	domain.CredentialProvincialRevenue: "Provincial revenue",
	domain.CredentialSocialSecurity:    "Social security",
	domain.CredentialSectorFund1:       "Sector fund 1",
	domain.CredentialSectorFund2:       "Sector fund 2",
	domain.CredentialSectorFund3:       "Sector fund 3",
	domain.CredentialDigitalLedger:     "Digital ledger",
	domain.CredentialFirmPortal:        "Firm portal",
}

var funcs = template.FuncMap{
	"systemLabel": func(s domain.CredentialSystem) string { return systemLabels[s] },
	"systems":     func() []domain.CredentialSystem { return domain.CredentialSystems },
	"date":        func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
	"add":         func(a, b int) int { return a + b },
	"sub":         func(a, b int) int { return a - b },
	"mask": func(secret string) string {
		if secret == "" {
			return ""
		}
		return "••••••"
	},
}
