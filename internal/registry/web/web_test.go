package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/internal/registry/store/drivers/sqlite"
	"github.com/aussiebroadwan/registry/internal/registry/web"
	"github.com/aussiebroadwan/registry/pkg/cryptox"
	"github.com/aussiebroadwan/registry/pkg/jwtx"
	"github.com/aussiebroadwan/registry/pkg/registrysdk"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv     *httptest.Server
	clients *service.ClientService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	key, _, err := cryptox.LoadMasterKey("", "web-test-master-key")
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer(key)
	require.NoError(t, err)
	st, err := sqlite.NewStore(":memory:", sealer)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "registry-web-test"})
	require.NoError(t, err)

	clients := &service.ClientService{Store: st}
	auth := &service.AuthService{
		Store:     st,
		Hasher:    cryptox.PasswordHasher{Pepper: "web-test-pepper"},
		Signer:    km.Signer,
		Issuer:    "registry-web-test",
		AccessTTL: 5 * time.Minute,
	}
	_, err = auth.CreateUser(context.Background(), "clerk", "clerk-pass", domain.AllScopes)
	require.NoError(t, err)

	h, err := web.NewHandler(clients, auth, km.Verifier)
	require.NoError(t, err)
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, clients: clients}
}

// browser returns a client that keeps cookies and does not follow redirects.
func (f *fixture) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (f *fixture) login(t *testing.T) *http.Client {
	t.Helper()
	c := f.browser(t)
	resp, err := c.PostForm(f.srv.URL+"/login", url.Values{
		"username": {"clerk"},
		"password": {"clerk-pass"},
		"next":     {"/clients"},
	})
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/clients", resp.Header.Get("Location"))
	return c
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRequiresSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := f.browser(t).Get(f.srv.URL + "/clients")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?next=/clients", resp.Header.Get("Location"))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := f.browser(t).PostForm(f.srv.URL+"/login", url.Values{
		"username": {"clerk"},
		"password": {"wrong"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body(t, resp), "Invalid username or password.")
}

func TestLoginIgnoresForeignRedirect(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := f.browser(t).PostForm(f.srv.URL+"/login", url.Values{
		"username": {"clerk"},
		"password": {"clerk-pass"},
		"next":     {"//evil.example/"},
	})
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestListFilters(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	inactive := false

	for _, in := range []service.ClientInput{
		{Name: "Estudio Norte", TaxID: "20-11111111-1", Credentials: domain.Credentials{domain.CredentialFiscal: "s3cret"}},
		{Name: "Panadería Sur", TaxID: "20-22222222-2", Address: "Mendoza"},
		{Name: "Importadora Norte", TaxID: "30-11223344-5", Active: &inactive},
	} {
		_, err := f.clients.Create(ctx, in)
		require.NoError(t, err)
	}
	c := f.login(t)

	get := func(path string) string {
		resp, err := c.Get(f.srv.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return body(t, resp)
	}

	page := get("/clients")
	require.Contains(t, page, "3 client(s)")
	require.NotContains(t, page, "s3cret")

	page = get("/clients?search=NORTE&activo=true")
	require.Contains(t, page, "Estudio Norte")
	require.NotContains(t, page, "Importadora Norte")

	page = get("/clients?activo=false")
	require.Contains(t, page, "Importadora Norte")
	require.Contains(t, page, "1 client(s)")

	page = get("/")
	require.Contains(t, page, "66.67%")
}

func TestCreateEditDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	c := f.login(t)

	form := url.Values{
		"name":        {"  Ferretería Central  "},
		"tax_id":      {"30-55555555-5"},
		"address":     {"San Martín 100"},
		"active":      {"on"},
		"cred_fiscal": {"clave-afip"},
	}

	t.Run("validation errors re-render the form", func(t *testing.T) {
		bad := url.Values{"name": {""}, "tax_id": {"305555555555"}}
		resp, err := c.PostForm(f.srv.URL+"/clients/new", bad)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		html := body(t, resp)
		require.Contains(t, html, service.MsgNameRequired)
		require.Contains(t, html, service.MsgTaxIDMalformed)
	})

	resp, err := c.PostForm(f.srv.URL+"/clients/new", form)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	created, err := f.clients.GetByTaxID(context.Background(), "30-55555555-5")
	require.NoError(t, err)
	require.Equal(t, "Ferretería Central", created.Name)
	require.True(t, created.HasFiscalCredential())

	t.Run("flash shown once", func(t *testing.T) {
		resp, err := c.Get(f.srv.URL + "/clients")
		require.NoError(t, err)
		require.Contains(t, body(t, resp), "Client Ferretería Central created.")

		resp, err = c.Get(f.srv.URL + "/clients")
		require.NoError(t, err)
		require.NotContains(t, body(t, resp), "created.")
	})

	t.Run("duplicate tax id", func(t *testing.T) {
		resp, err := c.PostForm(f.srv.URL+"/clients/new", form)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body(t, resp), service.MsgTaxIDInUse)
	})

	t.Run("detail reveals credentials", func(t *testing.T) {
		resp, err := c.Get(f.srv.URL + "/clients/" + created.ID)
		require.NoError(t, err)
		require.Contains(t, body(t, resp), "clave-afip")
	})

	t.Run("edit", func(t *testing.T) {
		edit := url.Values{"name": {"Ferretería Central SRL"}, "tax_id": {"30-55555555-5"}}
		resp, err := c.PostForm(f.srv.URL+"/clients/"+created.ID+"/edit", edit)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		got, err := f.clients.Get(context.Background(), created.ID)
		require.NoError(t, err)
		require.Equal(t, "Ferretería Central SRL", got.Name)
		require.False(t, got.Active)
		require.False(t, got.HasFiscalCredential())
	})

	t.Run("toggle", func(t *testing.T) {
		resp, err := c.Post(f.srv.URL+"/clients/"+created.ID+"/toggle-active", "", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		got, err := f.clients.Get(context.Background(), created.ID)
		require.NoError(t, err)
		require.True(t, got.Active)
	})

	t.Run("delete answers JSON", func(t *testing.T) {
		resp, err := c.Post(f.srv.URL+"/clients/"+created.ID+"/delete", "", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var res registrysdk.ActionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		require.True(t, res.Success)
		require.True(t, strings.HasPrefix(res.Message, "Client Ferretería Central SRL"))

		resp2, err := c.Post(f.srv.URL+"/clients/"+created.ID+"/delete", "", nil)
		require.NoError(t, err)
		_ = resp2.Body.Close()
		require.Equal(t, http.StatusNotFound, resp2.StatusCode)
	})
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	c := f.login(t)

	resp, err := c.Post(f.srv.URL+"/logout", "", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = c.Get(f.srv.URL + "/clients")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}
