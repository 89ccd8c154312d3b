package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/metrics"
	"github.com/aussiebroadwan/registry/internal/registry/store"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

// ClientService owns every read and write of client records.
type ClientService struct {
	Store   store.Store
	Metrics *metrics.Metrics

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Timestamps are kept at microsecond precision, the finest both drivers
// store.
func (s *ClientService) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Truncate(time.Microsecond)
}

// Create validates in and inserts it. The tax id check and the insert share a
// transaction and a concurrent insert of the same tax id is still caught by
// the unique index.
func (s *ClientService) Create(ctx context.Context, in ClientInput) (domain.Client, error) {
	var created domain.Client
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := ValidateForCreate(ctx, tx.Clients(), in, s.now())
		if err != nil {
			return err
		}
		if err := tx.Clients().CreateClient(ctx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return domain.Client{}, s.writeError(ctx, "create", "", err)
	}

	s.Metrics.IncMutation(metrics.OpCreated)
	slogx.FromContext(ctx).Info("client created", "client_id", created.ID, "tax_id", created.TaxID)
	return created, nil
}

// Get returns the client with id.
func (s *ClientService) Get(ctx context.Context, id string) (domain.Client, error) {
	c, err := s.Store.Clients().GetClient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, &NotFoundError{ID: id}
	}
	return c, err
}

// GetByTaxID returns the client holding exactly taxID.
func (s *ClientService) GetByTaxID(ctx context.Context, taxID string) (domain.Client, error) {
	taxID = strings.TrimSpace(taxID)
	c, err := s.Store.Clients().GetClientByTaxID(ctx, taxID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, fmt.Errorf("tax_id %s: %w", taxID, ErrClientNotFound)
	}
	return c, err
}

// Update replaces the client's fields with in. Credentials and Active are
// kept when in leaves them nil.
func (s *ClientService) Update(ctx context.Context, id string, in ClientInput) (domain.Client, error) {
	return s.Patch(ctx, id, in.Patch())
}

// Patch applies the non-nil fields of p to the client.
func (s *ClientService) Patch(ctx context.Context, id string, p ClientPatch) (domain.Client, error) {
	var updated domain.Client
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := ValidateForUpdate(ctx, tx.Clients(), id, p, s.now())
		if err != nil {
			return err
		}
		if err := tx.Clients().UpdateClient(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return domain.Client{}, s.writeError(ctx, "update", id, err)
	}

	s.Metrics.IncMutation(metrics.OpUpdated)
	slogx.FromContext(ctx).Info("client updated", "client_id", id)
	return updated, nil
}

// ToggleActive flips the active flag and returns the updated client.
func (s *ClientService) ToggleActive(ctx context.Context, id string) (domain.Client, error) {
	var updated domain.Client
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := tx.Clients().GetClient(ctx, id)
		if err != nil {
			return err
		}
		c.Active = !c.Active
		c.UpdatedAt = s.now()
		if err := tx.Clients().UpdateClient(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return domain.Client{}, s.writeError(ctx, "toggle", id, err)
	}

	s.Metrics.IncMutation(metrics.OpToggled)
	slogx.FromContext(ctx).Info("client active toggled", "client_id", id, "active", updated.Active)
	return updated, nil
}

// Delete removes the client permanently.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := ValidateForDelete(ctx, tx.Clients(), id); err != nil {
			return err
		}
		return tx.Clients().DeleteClient(ctx, id)
	})
	if err != nil {
		return s.writeError(ctx, "delete", id, err)
	}

	s.Metrics.IncMutation(metrics.OpDeleted)
	slogx.FromContext(ctx).Info("client deleted", "client_id", id)
	return nil
}

// Statistics tallies the whole client book.
func (s *ClientService) Statistics(ctx context.Context) (domain.Statistics, error) {
	var t domain.Tally
	for c, err := range s.Store.Clients().AllClients(ctx) {
		if err != nil {
			return domain.Statistics{}, err
		}
		t.Add(c)
	}
	return t.Statistics(), nil
}

// writeError normalises a failed write and records it. A unique violation
// surfacing from the store means another writer claimed the tax id first.
func (s *ClientService) writeError(ctx context.Context, op, id string, err error) error {
	l := slogx.FromContext(ctx)

	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		err = taxIDInUse()
	case errors.Is(err, store.ErrNotFound):
		err = &NotFoundError{ID: id}
	}

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		s.Metrics.IncValidationFailures(verr.Fields)
		l.Info("client "+op+" rejected", "client_id", id, "fields", verr.Fields)
	case errors.Is(err, ErrClientNotFound):
		l.Info("client "+op+" on missing record", "client_id", id)
	default:
		l.Error("failed to "+op+" client", "client_id", id, "error", err)
	}
	return err
}
