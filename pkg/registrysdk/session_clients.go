package registrysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	scopeRead  = "clients:read"
	scopeWrite = "clients:write"
)

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// ListClientsParams filters GET /v1/clients. A nil Active lists both states.
type ListClientsParams struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}

func (p ListClientsParams) query() string {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Active != nil {
		q.Set("active", strconv.FormatBool(*p.Active))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListClients returns one page of clients ordered by name.
// Requires: clients:read
func (s *Session) ListClients(ctx context.Context, p ListClientsParams) (*ListResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/clients"+p.query(), nil, nil, scopeRead)
	if err != nil {
		return nil, err
	}

	var list ListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetClient fetches one client with its credentials.
// Requires: clients:read
func (s *Session) GetClient(ctx context.Context, id string) (*ClientDetail, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/clients/"+url.PathEscape(id), nil, nil, scopeRead)
	if err != nil {
		return nil, err
	}
	return decodeClient(resp, http.StatusOK)
}

// GetClientByTaxID looks a client up by its exact tax id.
// Requires: clients:read
func (s *Session) GetClientByTaxID(ctx context.Context, taxID string) (*ClientDetail, error) {
	path := "/v1/clients/by-tax-id?" + url.Values{"tax_id": {taxID}}.Encode()
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil, scopeRead)
	if err != nil {
		return nil, err
	}
	return decodeClient(resp, http.StatusOK)
}

// CreateClient registers a client.
// Requires: clients:write
func (s *Session) CreateClient(ctx context.Context, req ClientRequest) (*ClientDetail, error) {
	return s.sendClient(ctx, http.MethodPost, "/v1/clients", req, http.StatusCreated)
}

// UpdateClient replaces every field of a client.
// Requires: clients:write
func (s *Session) UpdateClient(ctx context.Context, id string, req ClientRequest) (*ClientDetail, error) {
	return s.sendClient(ctx, http.MethodPut, "/v1/clients/"+url.PathEscape(id), req, http.StatusOK)
}

// PatchClient changes only the fields present in req.
// Requires: clients:write
func (s *Session) PatchClient(ctx context.Context, id string, req ClientPatchRequest) (*ClientDetail, error) {
	return s.sendClient(ctx, http.MethodPatch, "/v1/clients/"+url.PathEscape(id), req, http.StatusOK)
}

// DeleteClient removes a client permanently.
// Requires: clients:write
func (s *Session) DeleteClient(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/clients/"+url.PathEscape(id), nil, nil, scopeWrite)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ToggleActive flips a client's active flag.
// Requires: clients:write
func (s *Session) ToggleActive(ctx context.Context, id string) (*ToggleResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/clients/"+url.PathEscape(id)+"/toggle-active", nil, nil, scopeWrite)
	if err != nil {
		return nil, err
	}

	var out ToggleResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Statistics returns the dashboard summary.
// Requires: clients:read
func (s *Session) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/clients/statistics", nil, nil, scopeRead)
	if err != nil {
		return nil, err
	}

	var out StatisticsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) sendClient(ctx context.Context, method, path string, body any, expected int) (*ClientDetail, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, method, path, bytes.NewReader(raw), jsonHeaders, scopeWrite)
	if err != nil {
		return nil, err
	}
	return decodeClient(resp, expected)
}

func decodeClient(resp *http.Response, expected int) (*ClientDetail, error) {
	var c ClientDetail
	if err := decodeJSON(resp, &c, expected); err != nil {
		return nil, err
	}
	return &c, nil
}
