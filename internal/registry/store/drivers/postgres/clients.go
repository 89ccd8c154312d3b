package postgres

import (
	"context"
	"database/sql"
	"iter"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/store"
)

const clientColumns = `id, name, tax_id, address, credentials, employer_registry_number, notes,
	folder_path, point_of_sale, db_name, db_path, backup_path, active, created_at, updated_at`

// Byte-wise ordering so results match the sqlite driver regardless of the
// database locale.
const clientOrder = ` ORDER BY name COLLATE "C", id`

type clientsRepo struct {
	q      dbtx
	sealer store.Sealer
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	sealed, err := store.SealCredentials(r.sealer, c.ID, c.Credentials)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO clients (
			id, name, name_fold, tax_id, address, address_fold, credentials,
			employer_registry_number, notes, folder_path, point_of_sale,
			db_name, db_path, backup_path, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.ID, c.Name, domain.Fold(c.Name), c.TaxID, c.Address, domain.Fold(c.Address), sealed,
		c.EmployerRegistryNumber, c.Notes, c.FolderPath, c.PointOfSale,
		c.DBName, c.DBPath, c.BackupPath, c.Active, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.Client) error {
	sealed, err := store.SealCredentials(r.sealer, c.ID, c.Credentials)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE clients SET
			name = $1, name_fold = $2, tax_id = $3, address = $4, address_fold = $5, credentials = $6,
			employer_registry_number = $7, notes = $8, folder_path = $9, point_of_sale = $10,
			db_name = $11, db_path = $12, backup_path = $13, active = $14, updated_at = $15
		WHERE id = $16`,
		c.Name, domain.Fold(c.Name), c.TaxID, c.Address, domain.Fold(c.Address), sealed,
		c.EmployerRegistryNumber, c.Notes, c.FolderPath, c.PointOfSale,
		c.DBName, c.DBPath, c.BackupPath, c.Active, c.UpdatedAt.UTC(),
		c.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireOneRow(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *clientsRepo) GetClient(ctx context.Context, id string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return r.scan(row)
}

func (r *clientsRepo) GetClientByTaxID(ctx context.Context, taxID string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE tax_id = $1`, taxID)
	return r.scan(row)
}

func (r *clientsRepo) TaxIDInUse(ctx context.Context, taxID, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM clients WHERE tax_id = $1 AND id <> $2)`,
		taxID, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *clientsRepo) SearchClients(ctx context.Context, f domain.ClientFilter, p store.Page) ([]domain.Client, error) {
	var a args
	where := filterClause(&a, f)

	query := `SELECT ` + clientColumns + ` FROM clients` + where + clientOrder
	if p.Limit > 0 {
		query += ` LIMIT ` + a.add(p.Limit)
	}
	if p.Offset > 0 {
		query += ` OFFSET ` + a.add(p.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) CountClients(ctx context.Context, f domain.ClientFilter) (int, error) {
	var a args
	where := filterClause(&a, f)

	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`+where, a...).Scan(&n)
	return n, err
}

func (r *clientsRepo) AllClients(ctx context.Context) iter.Seq2[domain.Client, error] {
	return func(yield func(domain.Client, error) bool) {
		rows, err := r.q.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients`+clientOrder)
		if err != nil {
			yield(domain.Client{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			c, err := r.scan(rows)
			if !yield(c, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Client{}, err)
		}
	}
}

// args collects positional parameters and hands back their placeholders.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

func filterClause(a *args, f domain.ClientFilter) string {
	var conds []string
	if needle := f.Needle(); needle != "" {
		n := a.add(needle)
		conds = append(conds, `(strpos(name_fold, `+n+`) > 0 OR strpos(tax_id, `+n+`) > 0 OR strpos(address_fold, `+n+`) > 0)`)
	}
	if f.Active != nil {
		conds = append(conds, `active = `+a.add(*f.Active))
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *clientsRepo) scan(row scanner) (domain.Client, error) {
	var (
		c      domain.Client
		sealed []byte
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.TaxID, &c.Address, &sealed, &c.EmployerRegistryNumber, &c.Notes,
		&c.FolderPath, &c.PointOfSale, &c.DBName, &c.DBPath, &c.BackupPath, &c.Active,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()

	if c.Credentials, err = store.OpenCredentials(r.sealer, c.ID, sealed); err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
