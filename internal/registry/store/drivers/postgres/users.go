package postgres

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
)

type usersRepo struct {
	q dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, scopes, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.PasswordHash, strings.Join(u.Scopes, " "), u.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var (
		u      domain.User
		scopes string
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, scopes, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &scopes, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Scopes = strings.Fields(scopes)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
