package registrysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/registry/pkg/httpx"
)

// Error codes of the /v1 API.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeValidation        = "validation_error"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeUnauthorized      = "unauthorized"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeRateLimited       = "rate_limited"
	ErrorCodeServerError       = "server_error"

	// OAuth2 token endpoint codes.
	ErrorCodeInvalidGrant         = "invalid_grant"
	ErrorCodeInvalidScope         = "invalid_scope"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
)

// APIError is a non-2xx response. The server writes it and the SDK returns
// it.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s %v", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes e as an ErrorResponse.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details})
}

// WriteOAuthError writes e in the RFC 6749 token error format.
func (e *APIError) WriteOAuthError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, OAuthErrorResponse{Error: e.Code, ErrorDescription: e.Message})
}

var (
	ErrInvalidJSON = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "request body is not valid JSON",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "client not found",
	}

	ErrInvalidGrant = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidGrant,
		Message:    "invalid credentials",
	}

	ErrInvalidScope = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidScope,
		Message:    "requested scope is invalid",
	}

	ErrUnsupportedGrantType = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeUnsupportedGrantType,
		Message:    "grant type not supported",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}
)

// NewInvalidRequest builds a 400 with message.
func NewInvalidRequest(message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidRequest, Message: message}
}

// NewValidationError builds a 400 carrying per-field messages.
func NewValidationError(details map[string]string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeValidation,
		Message:    "one or more fields are invalid",
		Details:    details,
	}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ValidationDetails returns the field messages of a validation failure.
func ValidationDetails(err error) (map[string]string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == ErrorCodeValidation {
		return apiErr.Details, true
	}
	return nil, false
}

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Code,
			Message:    errResp.Message,
			Details:    errResp.Details,
		}
	}

	var oauthResp OAuthErrorResponse
	if err := json.Unmarshal(body, &oauthResp); err == nil && oauthResp.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       oauthResp.Error,
			Message:    oauthResp.ErrorDescription,
		}
	}

	code := ErrorCodeServerError
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code = ErrorCodeUnauthorized
	case http.StatusForbidden:
		code = ErrorCodeInsufficientScope
	case http.StatusTooManyRequests:
		code = ErrorCodeRateLimited
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
