package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/store"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db     *sql.DB
	sealer store.Sealer
}

// NewStore connects to the Postgres database at dsn through pgx.
func NewStore(ctx context.Context, dsn string, sealer store.Sealer) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, sealer: sealer}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn in a transaction. Concurrent writers racing on the same tax
// id meet the unique index, which reports the loser as store.ErrAlreadyExists.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&txStore{q: tx, sealer: s.sealer}); err != nil {
		return err
	}
	return mapConstraint(tx.Commit())
}

func (s *Store) Clients() store.Clients { return &clientsRepo{q: s.db, sealer: s.sealer} }
func (s *Store) Users() store.Users     { return &usersRepo{q: s.db} }

type txStore struct {
	q      *sql.Tx
	sealer store.Sealer
}

func (t *txStore) Clients() store.Clients { return &clientsRepo{q: t.q, sealer: t.sealer} }
func (t *txStore) Users() store.Users     { return &usersRepo{q: t.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}
