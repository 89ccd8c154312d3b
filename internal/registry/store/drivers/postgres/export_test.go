package postgres

import "context"

// RawCredentials returns the stored credential column untouched.
func RawCredentials(ctx context.Context, s *Store, id string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT credentials FROM clients WHERE id = $1`, id).Scan(&raw)
	return raw, err
}
