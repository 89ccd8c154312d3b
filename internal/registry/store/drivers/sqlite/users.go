package sqlite

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
		`INSERT INTO users (id, username, password_hash, scopes, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, strings.Join(u.Scopes, " "), formatTime(u.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var (
		u         domain.User
		scopes    string
		createdAt string
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, scopes, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &scopes, &createdAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Scopes = strings.Fields(scopes)
	u.CreatedAt, err = parseTime(createdAt)
	return u, err
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
