package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/httpx"
	"github.com/aussiebroadwan/registry/pkg/registrysdk"
)

// ClientsHandler serves the /v1/clients resource.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// ParseFilter reads the search text verbatim and the first non-empty of
// activeParams. An empty or absent active leaves the filter unset, "true" in
// any case selects active clients and any other value selects inactive ones.
func ParseFilter(q url.Values, activeParams ...string) domain.ClientFilter {
	f := domain.ClientFilter{Search: q.Get("search")}
	for _, param := range activeParams {
		if v := strings.TrimSpace(q.Get(param)); v != "" {
			active := strings.EqualFold(v, "true")
			f.Active = &active
			break
		}
	}
	return f
}

// parsePositive returns def when s is absent or not a positive integer.
func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// HandleList godoc
//
//	@Summary		List clients
//	@Description	Returns one page of clients ordered by name. search is matched case-insensitively against name, tax id and address.
//	@Description	Out of range page numbers are clamped to the nearest valid page.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			search		query		string						false	"Free text search"
//	@Param			active		query		string						false	"true for active clients, any other value for inactive"
//	@Param			activo		query		string						false	"Alias of active, used when active is empty"
//	@Param			page		query		int							false	"1-based page number"	default(1)
//	@Param			page_size	query		int							false	"Page size (max 100)"	default(10)
//	@Success		200			{object}	registrysdk.ListResponse
//	@Failure		401			{string}	string	"unauthorized"
//	@Failure		403			{string}	string	"insufficient_scope"
//	@Failure		500			{object}	registrysdk.ErrorResponse
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ParseFilter(q, "active", "activo")
	page := parsePositive(q.Get("page"), 1)
	size := parsePositive(q.Get("page_size"), service.DefaultPageSize)

	result, err := h.ClientService.Query(filter).Paginate(r.Context(), page, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	items := make([]registrysdk.ClientSummary, 0, len(result.Items))
	for _, c := range result.Items {
		items = append(items, toSummary(c))
	}
	httpx.WriteJSON(w, http.StatusOK, registrysdk.ListResponse{
		Items:    items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		Pages:    result.Pages,
	})
}

// HandleCreate godoc
//
//	@Summary		Create a client
//	@Description	Registers a new client. tax_id must match NN-NNNNNNNN-N and be unique.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		registrysdk.ClientRequest	true	"Client"
//	@Success		201		{object}	registrysdk.ClientDetail
//	@Failure		400		{object}	registrysdk.ErrorResponse
//	@Failure		401		{string}	string	"unauthorized"
//	@Failure		403		{string}	string	"insufficient_scope"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req registrysdk.ClientRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		registrysdk.NewInvalidRequest(err.Error()).WriteError(w)
		return
	}

	c, err := h.ClientService.Create(r.Context(), toInput(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/clients/"+c.ID)
	httpx.WriteJSON(w, http.StatusCreated, toDetail(c))
}

// HandleGet godoc
//
//	@Summary		Get a client
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Client ID"
//	@Success		200	{object}	registrysdk.ClientDetail
//	@Failure		404	{object}	registrysdk.ErrorResponse
//	@Router			/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.ClientService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDetail(c))
}

// HandleByTaxID godoc
//
//	@Summary		Find a client by tax id
//	@Description	Exact match on the hyphenated tax id.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			tax_id	query		string	true	"Tax id, NN-NNNNNNNN-N"
//	@Success		200		{object}	registrysdk.ClientDetail
//	@Failure		400		{object}	registrysdk.ErrorResponse
//	@Failure		404		{object}	registrysdk.ErrorResponse
//	@Router			/v1/clients/by-tax-id [get].
func (h *ClientsHandler) HandleByTaxID(w http.ResponseWriter, r *http.Request) {
	taxID := strings.TrimSpace(r.URL.Query().Get("tax_id"))
	if taxID == "" {
		registrysdk.NewInvalidRequest("tax_id is required").WriteError(w)
		return
	}

	c, err := h.ClientService.GetByTaxID(r.Context(), taxID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDetail(c))
}

// HandleUpdate godoc
//
//	@Summary		Replace a client
//	@Description	Replaces the fields of the client. Omitted credentials and active keep their stored values.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Client ID"
//	@Param			body	body		registrysdk.ClientRequest	true	"Client"
//	@Success		200		{object}	registrysdk.ClientDetail
//	@Failure		400		{object}	registrysdk.ErrorResponse
//	@Failure		404		{object}	registrysdk.ErrorResponse
//	@Router			/v1/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req registrysdk.ClientRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		registrysdk.NewInvalidRequest(err.Error()).WriteError(w)
		return
	}

	c, err := h.ClientService.Update(r.Context(), r.PathValue("id"), toInput(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDetail(c))
}

// HandlePatch godoc
//
//	@Summary		Update some fields of a client
//	@Description	Omitted fields keep their value. A credentials object replaces all stored credentials.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Client ID"
//	@Param			body	body		registrysdk.ClientPatchRequest	true	"Fields to change"
//	@Success		200		{object}	registrysdk.ClientDetail
//	@Failure		400		{object}	registrysdk.ErrorResponse
//	@Failure		404		{object}	registrysdk.ErrorResponse
//	@Router			/v1/clients/{id} [patch].
func (h *ClientsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var req registrysdk.ClientPatchRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		registrysdk.NewInvalidRequest(err.Error()).WriteError(w)
		return
	}

	c, err := h.ClientService.Patch(r.Context(), r.PathValue("id"), toPatch(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDetail(c))
}

// HandleDelete godoc
//
//	@Summary		Delete a client
//	@Tags			Clients
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Client ID"
//	@Success		204
//	@Failure		404	{object}	registrysdk.ErrorResponse
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ClientService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleActive godoc
//
//	@Summary		Flip a client's active flag
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Client ID"
//	@Success		200	{object}	registrysdk.ToggleResponse
//	@Failure		404	{object}	registrysdk.ErrorResponse
//	@Router			/v1/clients/{id}/toggle-active [post].
func (h *ClientsHandler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	c, err := h.ClientService.ToggleActive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, registrysdk.ToggleResponse{
		Message: ToggleMessage(c),
		Client:  toDetail(c),
	})
}

// ToggleMessage describes the state a client was toggled into.
func ToggleMessage(c domain.Client) string {
	if c.Active {
		return "Client " + c.Name + " activated"
	}
	return "Client " + c.Name + " deactivated"
}

// HandleStatistics godoc
//
//	@Summary		Client statistics
//	@Description	Totals over the whole client book. percent_active is rounded to two decimals and is 0 when there are no clients.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	registrysdk.StatisticsResponse
//	@Router			/v1/clients/statistics [get].
func (h *ClientsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ClientService.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toStatistics(stats))
}
