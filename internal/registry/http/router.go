package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/metrics"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/internal/registry/store"
	"github.com/aussiebroadwan/registry/internal/registry/web"
	"github.com/aussiebroadwan/registry/pkg/httpx"
	"github.com/aussiebroadwan/registry/pkg/jwtx"
	"github.com/aussiebroadwan/registry/pkg/slogx"

	_ "github.com/aussiebroadwan/registry/api/registry" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store         store.Store
	ClientService *service.ClientService
	AuthService   *service.AuthService

	// Web is the HTML interface. Nil leaves only the API mounted.
	Web *web.Handler
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// metricsMiddleware must sit directly on the mux to see the matched
	// pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metricsMiddleware(r.metrics),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerClients()
	r.registerSystem()

	if r.Web != nil {
		r.Web.Register(r.Mux)
	}

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Client Registry API
//	@version					0.1.0
//	@description				Client registry of the accounting firm: client records, portal credentials and dashboard statistics.
//	@description
//	@description				Access tokens are EdDSA signed JWTs and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/registry
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Rate limited by IP + username to slow down password guessing.
	tokenHandler := &TokenHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndFormField(httpx.LoginLimit, "username"),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.ReadLimit),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	readLimit := httpx.RateLimitByUser(httpx.ReadLimit)
	writeLimit := httpx.RateLimitByUser(httpx.WriteLimit)

	read := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(domain.ScopeClientsRead),
			readLimit,
		)
	}
	write := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(domain.ScopeClientsWrite),
			writeLimit,
		)
	}

	r.Mux.Handle("GET /v1/clients", read(h.HandleList))
	r.Mux.Handle("POST /v1/clients", write(h.HandleCreate))
	r.Mux.Handle("GET /v1/clients/statistics", read(h.HandleStatistics))
	r.Mux.Handle("GET /v1/clients/by-tax-id", read(h.HandleByTaxID))
	r.Mux.Handle("GET /v1/clients/{id}", read(h.HandleGet))
	r.Mux.Handle("PUT /v1/clients/{id}", write(h.HandleUpdate))
	r.Mux.Handle("PATCH /v1/clients/{id}", write(h.HandlePatch))
	r.Mux.Handle("DELETE /v1/clients/{id}", write(h.HandleDelete))
	r.Mux.Handle("POST /v1/clients/{id}/toggle-active", write(h.HandleToggleActive))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
