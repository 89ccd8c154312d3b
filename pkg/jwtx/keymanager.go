package jwtx

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/registry/pkg/cryptox"
)

// KeyManager owns the signing key of a running registry instance together
// with the verifier and JWKS built from it.
type KeyManager struct {
	Signer   Signer
	Verifier Verifier
	KeySet   *KeySet
}

// KeyManagerOptions configures NewEphemeralKeyManager.
type KeyManagerOptions struct {
	// Issuer is written to and enforced on every token.
	Issuer string

	// Audience values enforced on verification. Empty disables the check.
	Audience []string
}

// NewEphemeralKeyManager generates a fresh Ed25519 key that only lives in
// memory. Tokens issued before a restart stop verifying after it.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate key: %w", err)
	}

	kid, err := cryptox.GenerateToken(12)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate key id: %w", err)
	}

	signer, err := NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, err
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: register signer: %w", err)
	}

	return &KeyManager{
		Signer:   signer,
		Verifier: NewVerifierEdDSA(keyset, opts.Issuer, opts.Audience),
		KeySet:   keyset,
	}, nil
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.Signer != nil && km.KeySet.IsReady()
}
