package store

import (
	"context"
	"errors"
	"iter"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this and expose sub-repositories. Transactions are only
// reachable through WithTx so a repo can never start one of its own.
type Store interface {
	Clients() Clients
	Users() Users

	ApplyMigrations() error

	// WithTx runs fn inside a read/write transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is the view of a Store inside WithTx.
type Tx interface {
	Clients() Clients
	Users() Users
}

// Page bounds a listing. A zero Limit means no bound.
type Page struct {
	Limit  int
	Offset int
}

// Clients persists client records. Rows are returned ordered by name, then
// id, using a byte-wise comparison of the stored name. The same byte-wise
// equality is used for tax id lookups and the unique index.
type Clients interface {
	// CreateClient inserts c. A duplicate tax id yields ErrAlreadyExists.
	CreateClient(ctx context.Context, c domain.Client) error

	// UpdateClient overwrites every mutable column of the record with c.ID.
	// created_at is never written. A duplicate tax id yields ErrAlreadyExists.
	UpdateClient(ctx context.Context, c domain.Client) error

	DeleteClient(ctx context.Context, id string) error

	GetClient(ctx context.Context, id string) (domain.Client, error)
	GetClientByTaxID(ctx context.Context, taxID string) (domain.Client, error)

	// TaxIDInUse reports whether a client other than excludeID holds taxID.
	// An empty excludeID excludes nobody.
	TaxIDInUse(ctx context.Context, taxID, excludeID string) (bool, error)

	SearchClients(ctx context.Context, f domain.ClientFilter, p Page) ([]domain.Client, error)
	CountClients(ctx context.Context, f domain.ClientFilter) (int, error)

	// AllClients streams every record. Iteration stops at the first error.
	AllClients(ctx context.Context) iter.Seq2[domain.Client, error]
}

// Users persists operator accounts.
type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	CountUsers(ctx context.Context) (int, error)
}
