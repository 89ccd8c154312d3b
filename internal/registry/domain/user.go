package domain

import "time"

// Operator scopes.
const (
	ScopeClientsRead  = "clients:read"
	ScopeClientsWrite = "clients:write"
)

// AllScopes is granted to administrators.
var AllScopes = []string{ScopeClientsRead, ScopeClientsWrite}

// User is a member of the firm who operates the registry.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2id, PHC encoded
	Scopes       []string
	CreatedAt    time.Time
}
