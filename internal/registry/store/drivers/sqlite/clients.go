package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/store"
)

const clientColumns = `id, name, tax_id, address, credentials, employer_registry_number, notes,
	folder_path, point_of_sale, db_name, db_path, backup_path, active, created_at, updated_at`

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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, domain.Fold(c.Name), c.TaxID, c.Address, domain.Fold(c.Address), sealed,
		c.EmployerRegistryNumber, c.Notes, c.FolderPath, c.PointOfSale,
		c.DBName, c.DBPath, c.BackupPath, c.Active, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
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
			name = ?, name_fold = ?, tax_id = ?, address = ?, address_fold = ?, credentials = ?,
			employer_registry_number = ?, notes = ?, folder_path = ?, point_of_sale = ?,
			db_name = ?, db_path = ?, backup_path = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, domain.Fold(c.Name), c.TaxID, c.Address, domain.Fold(c.Address), sealed,
		c.EmployerRegistryNumber, c.Notes, c.FolderPath, c.PointOfSale,
		c.DBName, c.DBPath, c.BackupPath, c.Active, formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireOneRow(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *clientsRepo) GetClient(ctx context.Context, id string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return r.scan(row)
}

func (r *clientsRepo) GetClientByTaxID(ctx context.Context, taxID string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE tax_id = ?`, taxID)
	return r.scan(row)
}

func (r *clientsRepo) TaxIDInUse(ctx context.Context, taxID, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM clients WHERE tax_id = ? AND id <> ?)`,
		taxID, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *clientsRepo) SearchClients(ctx context.Context, f domain.ClientFilter, p store.Page) ([]domain.Client, error) {
	where, args := filterClause(f)

	limit := -1
	if p.Limit > 0 {
		limit = p.Limit
	}
	args = append(args, limit, max(p.Offset, 0))

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients`+where+` ORDER BY name, id LIMIT ? OFFSET ?`,
		args...,
	)
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
	where, args := filterClause(f)

	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&n)
	return n, err
}

func (r *clientsRepo) AllClients(ctx context.Context) iter.Seq2[domain.Client, error] {
	return func(yield func(domain.Client, error) bool) {
		rows, err := r.q.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name, id`)
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

// filterClause renders f as a WHERE clause over the folded columns.
func filterClause(f domain.ClientFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if needle := f.Needle(); needle != "" {
		conds = append(conds, `(instr(name_fold, ?) > 0 OR instr(tax_id, ?) > 0 OR instr(address_fold, ?) > 0)`)
		args = append(args, needle, needle, needle)
	}
	if f.Active != nil {
		conds = append(conds, `active = ?`)
		args = append(args, *f.Active)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *clientsRepo) scan(row scanner) (domain.Client, error) {
	var (
		c                    domain.Client
		sealed               []byte
		createdAt, updatedAt string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.TaxID, &c.Address, &sealed, &c.EmployerRegistryNumber, &c.Notes,
		&c.FolderPath, &c.PointOfSale, &c.DBName, &c.DBPath, &c.BackupPath, &c.Active,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Client{}, fmt.Errorf("sqlite: client %s created_at: %w", c.ID, err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Client{}, fmt.Errorf("sqlite: client %s updated_at: %w", c.ID, err)
	}
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
