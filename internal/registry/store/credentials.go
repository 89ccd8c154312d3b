package store

import (
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
)

// Sealer protects credential blobs at rest. *cryptox.Sealer implements it.
type Sealer interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(sealed, aad []byte) ([]byte, error)
}

// SealCredentials encodes the non-blank credentials of a client and seals
// them bound to clientID. A client without credentials yields nil.
func SealCredentials(s Sealer, clientID string, c domain.Credentials) ([]byte, error) {
	c = c.Compact()
	if len(c) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("store: encode credentials: %w", err)
	}
	return s.Seal(raw, []byte(clientID))
}

// OpenCredentials reverses SealCredentials.
func OpenCredentials(s Sealer, clientID string, sealed []byte) (domain.Credentials, error) {
	if len(sealed) == 0 {
		return domain.Credentials{}, nil
	}

	raw, err := s.Open(sealed, []byte(clientID))
	if err != nil {
		return nil, fmt.Errorf("store: open credentials of client %s: %w", clientID, err)
	}

	var c domain.Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("store: decode credentials: %w", err)
	}
	return c, nil
}
