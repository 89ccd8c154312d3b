package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/httpx"
	"github.com/aussiebroadwan/registry/pkg/registrysdk"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

type listView struct {
	Page   service.ClientPage
	Search string
	Active string // "", "true" or "false"
}

// PageURL keeps the current filter when linking to page n.
func (v listView) PageURL(n int) string {
	q := url.Values{}
	if v.Search != "" {
		q.Set("search", v.Search)
	}
	if v.Active != "" {
		q.Set("activo", v.Active)
	}
	q.Set("page", strconv.Itoa(n))
	return "/clients?" + q.Encode()
}

type formView struct {
	Action  string
	IsNew   bool
	Client  domain.Client
	Errors  map[string]string
	Systems []domain.CredentialSystem
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Clients.Statistics(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "dashboard", "Dashboard", stats)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ClientFilter{Search: q.Get("search")}
	active := strings.TrimSpace(q.Get("activo"))
	if active != "" {
		b := strings.EqualFold(active, "true")
		filter.Active = &b
		active = strconv.FormatBool(b)
	}

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 1
	}

	result, err := h.Clients.Query(filter).Paginate(r.Context(), page, h.PageSize)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "list", "Clients", listView{Page: result, Search: filter.Search, Active: active})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "detail", c.Name, c)
}

func (h *Handler) handleNewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "form", "New client", formView{
		Action:  "/clients/new",
		IsNew:   true,
		Client:  domain.Client{Active: true},
		Systems: domain.CredentialSystems,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := parseClientForm(w, r)
	if !ok {
		return
	}

	c, err := h.Clients.Create(r.Context(), in)
	if err != nil {
		h.formError(w, r, err, formView{Action: "/clients/new", IsNew: true, Client: echo(in)})
		return
	}

	setFlash(w, "Client "+c.Name+" created.")
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

func (h *Handler) handleEditForm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "form", "Edit "+c.Name, formView{
		Action:  "/clients/" + c.ID + "/edit",
		Client:  c,
		Systems: domain.CredentialSystems,
	})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	in, ok := parseClientForm(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	c, err := h.Clients.Update(r.Context(), id, in)
	if err != nil {
		v := echo(in)
		v.ID = id
		h.formError(w, r, err, formView{Action: "/clients/" + id + "/edit", Client: v})
		return
	}

	setFlash(w, "Client "+c.Name+" updated.")
	http.Redirect(w, r, "/clients/"+c.ID, http.StatusSeeOther)
}

// handleDelete answers with JSON for the list page's inline delete button.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	c, err := h.Clients.Get(ctx, id)
	if err == nil {
		err = h.Clients.Delete(ctx, id)
	}
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, registrysdk.ActionResponse{
			Success: true,
			Message: "Client " + c.Name + " deleted.",
		})
	case errors.Is(err, service.ErrClientNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, registrysdk.ActionResponse{Message: err.Error()})
	default:
		slogx.FromContext(ctx).Error("web delete failed", "client_id", id, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, registrysdk.ActionResponse{Message: "Could not delete the client."})
	}
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	c, err := h.Clients.ToggleActive(r.Context(), r.PathValue("id"))
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}

	state := "deactivated"
	if c.Active {
		state = "activated"
	}
	setFlash(w, "Client "+c.Name+" "+state+".")
	http.Redirect(w, r, "/clients/"+c.ID, http.StatusSeeOther)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (domain.Client, bool) {
	c, err := h.Clients.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.notFoundOrError(w, r, err)
		return domain.Client{}, false
	}
	return c, true
}

func (h *Handler) notFoundOrError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrClientNotFound) {
		http.NotFound(w, r)
		return
	}
	h.serverError(w, r, err)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Error("web request failed", "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// formError re-renders the form with field messages, or falls back to the
// generic error pages.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error, v formView) {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		h.notFoundOrError(w, r, err)
		return
	}
	v.Errors = verr.Fields
	v.Systems = domain.CredentialSystems
	h.render(w, r, http.StatusBadRequest, "form", "Check the form", v)
}

func parseClientForm(w http.ResponseWriter, r *http.Request) (service.ClientInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return service.ClientInput{}, false
	}
	f := r.PostForm

	creds := make(domain.Credentials)
	for _, sys := range domain.CredentialSystems {
		if v := f.Get("cred_" + string(sys)); v != "" {
			creds[sys] = v
		}
	}
	active := f.Get("active") != ""

	return service.ClientInput{
		Name:                   f.Get("name"),
		TaxID:                  f.Get("tax_id"),
		Address:                f.Get("address"),
		Credentials:            creds,
		EmployerRegistryNumber: f.Get("employer_registry_number"),
		Notes:                  f.Get("notes"),
		FolderPath:             f.Get("folder_path"),
		PointOfSale:            f.Get("point_of_sale"),
		DBName:                 f.Get("db_name"),
		DBPath:                 f.Get("db_path"),
		BackupPath:             f.Get("backup_path"),
		Active:                 &active,
	}, true
}

// echo turns rejected input back into a client for the form.
func echo(in service.ClientInput) domain.Client {
	return domain.Client{
		Name:                   in.Name,
		TaxID:                  in.TaxID,
		Address:                in.Address,
		Credentials:            in.Credentials,
		EmployerRegistryNumber: in.EmployerRegistryNumber,
		Notes:                  in.Notes,
		FolderPath:             in.FolderPath,
		PointOfSale:            in.PointOfSale,
		DBName:                 in.DBName,
		DBPath:                 in.DBPath,
		BackupPath:             in.BackupPath,
		Active:                 in.Active == nil || *in.Active,
	}
}
