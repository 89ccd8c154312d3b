package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/store"
	"github.com/aussiebroadwan/registry/pkg/cryptox"
	"github.com/aussiebroadwan/registry/pkg/idx"
	"github.com/aussiebroadwan/registry/pkg/jwtx"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

var (
	ErrInvalidScope = errors.New("invalid_scope")
	ErrUserExists   = errors.New("user already exists")
)

// Token is an issued operator access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	Scopes      []string
}

// AuthService authenticates operators and issues their access tokens.
type AuthService struct {
	Store     store.Store
	Hasher    cryptox.PasswordHasher
	Signer    jwtx.Signer
	Issuer    string
	Audience  []string
	AccessTTL time.Duration
}

// PasswordGrant checks the operator's password and issues an access token.
// An empty scope requests every scope the operator holds.
func (s *AuthService) PasswordGrant(ctx context.Context, username, password, scope string) (*Token, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	scopes := u.Scopes
	if requested := strings.Fields(scope); len(requested) > 0 {
		for _, sc := range requested {
			if !slices.Contains(u.Scopes, sc) {
				l.Warn("scope not granted to user", "user_id", u.ID, "scope", sc)
				return nil, ErrInvalidScope
			}
		}
		scopes = requested
	}

	return s.issue(u, scopes, time.Now())
}

// Authenticate returns the operator named username when password matches.
// Unknown users and wrong passwords are both reported as
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login for unknown user", "username", username)
			return domain.User{}, ErrInvalidCredentials
		}
		l.Error("failed to load user", "error", err)
		return domain.User{}, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		l.Info("login with wrong password", "user_id", u.ID)
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// CreateUser stores a new operator. An existing username yields
// ErrUserExists.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, scopes []string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, errors.New("username and password are required")
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Scopes:       scopes,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// CreateAdmin creates an operator holding every scope. It reports false
// without error when the username is already taken.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.CreateUser(ctx, username, password, domain.AllScopes)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	return err == nil, err
}

func (s *AuthService) issue(u domain.User, scopes []string, now time.Time) (*Token, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(u.ID, u.Username, scopes, ttl, s.Issuer, s.Audience, now)
	access, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: access, TokenType: "Bearer", ExpiresIn: ttl, Scopes: scopes}, nil
}
