package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/registrysdk"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

func toSummary(c domain.Client) registrysdk.ClientSummary {
	return registrysdk.ClientSummary{
		ID:                  c.ID,
		Name:                c.Name,
		TaxID:               c.TaxID,
		Address:             c.Address,
		Active:              c.Active,
		HasFiscalCredential: c.HasFiscalCredential(),
		CreatedAt:           c.CreatedAt,
	}
}

func toDetail(c domain.Client) registrysdk.ClientDetail {
	creds := make(map[string]string, len(c.Credentials))
	for sys, secret := range c.Credentials {
		creds[string(sys)] = secret
	}
	return registrysdk.ClientDetail{
		ID:                     c.ID,
		Name:                   c.Name,
		TaxID:                  c.TaxID,
		TaxIDNoHyphens:         c.TaxIDNoHyphens(),
		Address:                c.Address,
		Credentials:            creds,
		HasFiscalCredential:    c.HasFiscalCredential(),
		EmployerRegistryNumber: c.EmployerRegistryNumber,
		Notes:                  c.Notes,
		FolderPath:             c.FolderPath,
		PointOfSale:            c.PointOfSale,
		DBName:                 c.DBName,
		DBPath:                 c.DBPath,
		BackupPath:             c.BackupPath,
		Active:                 c.Active,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func toStatistics(s domain.Statistics) registrysdk.StatisticsResponse {
	return registrysdk.StatisticsResponse{
		Total:                s.Total,
		Active:               s.Active,
		Inactive:             s.Inactive,
		WithFiscalCredential: s.WithFiscalCredential,
		PercentActive:        s.PercentActive,
	}
}

func toCredentials(m map[string]string) domain.Credentials {
	if m == nil {
		return nil
	}
	out := make(domain.Credentials, len(m))
	for sys, secret := range m {
		out[domain.CredentialSystem(sys)] = secret
	}
	return out
}

func toInput(req registrysdk.ClientRequest) service.ClientInput {
	var creds domain.Credentials
	if req.Credentials != nil {
		creds = toCredentials(*req.Credentials)
		if creds == nil {
			creds = domain.Credentials{}
		}
	}
	return service.ClientInput{
		Name:                   req.Name,
		TaxID:                  req.TaxID,
		Address:                req.Address,
		Credentials:            creds,
		EmployerRegistryNumber: req.EmployerRegistryNumber,
		Notes:                  req.Notes,
		FolderPath:             req.FolderPath,
		PointOfSale:            req.PointOfSale,
		DBName:                 req.DBName,
		DBPath:                 req.DBPath,
		BackupPath:             req.BackupPath,
		Active:                 req.Active,
	}
}

func toPatch(req registrysdk.ClientPatchRequest) service.ClientPatch {
	p := service.ClientPatch{
		Name:                   req.Name,
		TaxID:                  req.TaxID,
		Address:                req.Address,
		EmployerRegistryNumber: req.EmployerRegistryNumber,
		Notes:                  req.Notes,
		FolderPath:             req.FolderPath,
		PointOfSale:            req.PointOfSale,
		DBName:                 req.DBName,
		DBPath:                 req.DBPath,
		BackupPath:             req.BackupPath,
		Active:                 req.Active,
	}
	if req.Credentials != nil {
		creds := toCredentials(*req.Credentials)
		p.Credentials = &creds
	}
	return p
}

// writeServiceError maps a ClientService error onto the API error format.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		registrysdk.NewValidationError(verr.Fields).WriteError(w)
	case errors.Is(err, service.ErrClientNotFound):
		registrysdk.ErrNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("client request failed", "error", err)
		registrysdk.ErrServerError.WriteError(w)
	}
}
