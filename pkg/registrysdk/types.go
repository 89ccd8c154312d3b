package registrysdk

import (
	"time"

	"github.com/aussiebroadwan/registry/pkg/jwtx"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-2xx response of the /v1 API
// except the token endpoint.
type ErrorResponse struct {
	// Code is a machine readable error code, e.g. "not_found".
	Code string `json:"code"`

	// Message is a human readable description.
	Message string `json:"message"`

	// Details maps a field name to its validation message. Only present for
	// "validation_error".
	Details map[string]string `json:"details,omitempty"`
}

// OAuthErrorResponse is the body of a failed token request (RFC 6749).
type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is returned by POST /v1/auth/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// JWKSResponse is the public key set used to verify access tokens.
type JWKSResponse = jwtx.JWKS

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency probed by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ============================================================================
// Client Types
// ============================================================================

// ClientRequest is the body of POST /v1/clients and PUT /v1/clients/{id}.
// On PUT a nil Credentials or Active keeps the stored value.
type ClientRequest struct {
	Name                   string             `json:"name"`
	TaxID                  string             `json:"tax_id"`
	Address                string             `json:"address,omitempty"`
	Credentials            *map[string]string `json:"credentials,omitempty"`
	EmployerRegistryNumber string             `json:"employer_registry_number,omitempty"`
	Notes                  string             `json:"notes,omitempty"`
	FolderPath             string             `json:"folder_path,omitempty"`
	PointOfSale            string             `json:"point_of_sale,omitempty"`
	DBName                 string             `json:"db_name,omitempty"`
	DBPath                 string             `json:"db_path,omitempty"`
	BackupPath             string             `json:"backup_path,omitempty"`

	// Active defaults to true when omitted on create.
	Active *bool `json:"active,omitempty"`
}

// ClientPatchRequest is the body of PATCH /v1/clients/{id}. Omitted fields
// are left unchanged; a present credentials object replaces all credentials.
type ClientPatchRequest struct {
	Name                   *string            `json:"name,omitempty"`
	TaxID                  *string            `json:"tax_id,omitempty"`
	Address                *string            `json:"address,omitempty"`
	Credentials            *map[string]string `json:"credentials,omitempty"`
	EmployerRegistryNumber *string            `json:"employer_registry_number,omitempty"`
	Notes                  *string            `json:"notes,omitempty"`
	FolderPath             *string            `json:"folder_path,omitempty"`
	PointOfSale            *string            `json:"point_of_sale,omitempty"`
	DBName                 *string            `json:"db_name,omitempty"`
	DBPath                 *string            `json:"db_path,omitempty"`
	BackupPath             *string            `json:"backup_path,omitempty"`
	Active                 *bool              `json:"active,omitempty"`
}

// ClientSummary is the list representation of a client. Credentials are
// never included.
type ClientSummary struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	TaxID               string    `json:"tax_id"`
	Address             string    `json:"address"`
	Active              bool      `json:"active"`
	HasFiscalCredential bool      `json:"has_fiscal_credential"`
	CreatedAt           time.Time `json:"created_at"`
}

// ClientDetail is the full representation of a client.
type ClientDetail struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	TaxID                  string            `json:"tax_id"`
	TaxIDNoHyphens         string            `json:"tax_id_no_hyphens"`
	Address                string            `json:"address"`
	Credentials            map[string]string `json:"credentials"`
	HasFiscalCredential    bool              `json:"has_fiscal_credential"`
	EmployerRegistryNumber string            `json:"employer_registry_number"`
	Notes                  string            `json:"notes"`
	FolderPath             string            `json:"folder_path"`
	PointOfSale            string            `json:"point_of_sale"`
	DBName                 string            `json:"db_name"`
	DBPath                 string            `json:"db_path"`
	BackupPath             string            `json:"backup_path"`
	Active                 bool              `json:"active"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// ListResponse is one page of GET /v1/clients.
type ListResponse struct {
	Items    []ClientSummary `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Pages    int             `json:"pages"`
}

// ToggleResponse is returned by POST /v1/clients/{id}/toggle-active.
type ToggleResponse struct {
	Message string       `json:"message"`
	Client  ClientDetail `json:"client"`
}

// StatisticsResponse is returned by GET /v1/clients/statistics.
type StatisticsResponse struct {
	Total                int     `json:"total"`
	Active               int     `json:"active"`
	Inactive             int     `json:"inactive"`
	WithFiscalCredential int     `json:"with_fiscal_credential"`
	PercentActive        float64 `json:"percent_active"`
}

// ActionResponse is returned by the web UI's JSON actions.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
