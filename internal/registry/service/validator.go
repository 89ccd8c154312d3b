package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/store"
	"github.com/aussiebroadwan/registry/pkg/idx"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . ClientLookup

// ClientLookup is the read side the validators need. store.Clients satisfies
// it, both on the root store and inside a transaction.
type ClientLookup interface {
	GetClient(ctx context.Context, id string) (domain.Client, error)
	TaxIDInUse(ctx context.Context, taxID, excludeID string) (bool, error)
}

// ClientInput is a complete client as submitted by a form or API caller.
type ClientInput struct {
	Name    string
	TaxID   string
	Address string

	// Credentials is nil when the caller sent none. A full update then keeps
	// the stored set; a non-nil empty set clears it.
	Credentials            domain.Credentials
	EmployerRegistryNumber string
	Notes                  string
	FolderPath             string
	PointOfSale            string
	DBName                 string
	DBPath                 string
	BackupPath             string

	// Active defaults to true on create and is left unchanged on update
	// when nil.
	Active *bool
}

// ClientPatch carries the fields of an update. Nil fields are left as they
// are. A non-nil Credentials replaces the whole credential set.
type ClientPatch struct {
	Name                   *string
	TaxID                  *string
	Address                *string
	Credentials            *domain.Credentials
	EmployerRegistryNumber *string
	Notes                  *string
	FolderPath             *string
	PointOfSale            *string
	DBName                 *string
	DBPath                 *string
	BackupPath             *string
	Active                 *bool
}

// Patch converts a full input into the patch a full update applies: every
// text field is set, while nil Credentials and Active keep the stored values.
func (in ClientInput) Patch() ClientPatch {
	p := ClientPatch{
		Name:                   &in.Name,
		TaxID:                  &in.TaxID,
		Address:                &in.Address,
		EmployerRegistryNumber: &in.EmployerRegistryNumber,
		Notes:                  &in.Notes,
		FolderPath:             &in.FolderPath,
		PointOfSale:            &in.PointOfSale,
		DBName:                 &in.DBName,
		DBPath:                 &in.DBPath,
		BackupPath:             &in.BackupPath,
		Active:                 in.Active,
	}
	if in.Credentials != nil {
		creds := in.Credentials
		p.Credentials = &creds
	}
	return p
}

// ValidateForCreate checks in and returns the record to insert, with a fresh
// id and both timestamps set to now. Lookup failures other than validation
// are returned as is.
func ValidateForCreate(ctx context.Context, lookup ClientLookup, in ClientInput, now time.Time) (domain.Client, error) {
	var verr ValidationError

	c := domain.Client{
		ID:                     idx.NewAt(now).String(),
		Name:                   strings.TrimSpace(in.Name),
		TaxID:                  strings.TrimSpace(in.TaxID),
		Address:                strings.TrimSpace(in.Address),
		Credentials:            checkCredentials(&verr, in.Credentials),
		EmployerRegistryNumber: strings.TrimSpace(in.EmployerRegistryNumber),
		Notes:                  strings.TrimSpace(in.Notes),
		FolderPath:             strings.TrimSpace(in.FolderPath),
		PointOfSale:            strings.TrimSpace(in.PointOfSale),
		DBName:                 strings.TrimSpace(in.DBName),
		DBPath:                 strings.TrimSpace(in.DBPath),
		BackupPath:             strings.TrimSpace(in.BackupPath),
		Active:                 in.Active == nil || *in.Active,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if c.Name == "" {
		verr.add(FieldName, MsgNameRequired)
	}
	if checkTaxIDFormat(&verr, c.TaxID) {
		inUse, err := lookup.TaxIDInUse(ctx, c.TaxID, "")
		if err != nil {
			return domain.Client{}, fmt.Errorf("check tax_id: %w", err)
		}
		if inUse {
			verr.add(FieldTaxID, MsgTaxIDInUse)
		}
	}

	if err := verr.orNil(); err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

// ValidateForUpdate applies p to the stored record id and returns the result.
// A tax id that changes must not belong to any other record. CreatedAt is
// carried over and UpdatedAt becomes now.
func ValidateForUpdate(ctx context.Context, lookup ClientLookup, id string, p ClientPatch, now time.Time) (domain.Client, error) {
	c, err := lookup.GetClient(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, &NotFoundError{ID: id}
		}
		return domain.Client{}, fmt.Errorf("load client: %w", err)
	}

	var verr ValidationError

	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
		if c.Name == "" {
			verr.add(FieldName, MsgNameRequired)
		}
	}
	if p.TaxID != nil {
		taxID := strings.TrimSpace(*p.TaxID)
		if checkTaxIDFormat(&verr, taxID) && taxID != c.TaxID {
			inUse, err := lookup.TaxIDInUse(ctx, taxID, id)
			if err != nil {
				return domain.Client{}, fmt.Errorf("check tax_id: %w", err)
			}
			if inUse {
				verr.add(FieldTaxID, MsgTaxIDInUse)
			}
		}
		c.TaxID = taxID
	}
	if p.Credentials != nil {
		c.Credentials = checkCredentials(&verr, *p.Credentials)
	}

	setTrimmed(&c.Address, p.Address)
	setTrimmed(&c.EmployerRegistryNumber, p.EmployerRegistryNumber)
	setTrimmed(&c.Notes, p.Notes)
	setTrimmed(&c.FolderPath, p.FolderPath)
	setTrimmed(&c.PointOfSale, p.PointOfSale)
	setTrimmed(&c.DBName, p.DBName)
	setTrimmed(&c.DBPath, p.DBPath)
	setTrimmed(&c.BackupPath, p.BackupPath)
	if p.Active != nil {
		c.Active = *p.Active
	}

	if err := verr.orNil(); err != nil {
		return domain.Client{}, err
	}
	c.UpdatedAt = now
	return c, nil
}

// ValidateForDelete requires id to exist.
func ValidateForDelete(ctx context.Context, lookup ClientLookup, id string) error {
	if _, err := lookup.GetClient(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return fmt.Errorf("load client: %w", err)
	}
	return nil
}

// checkTaxIDFormat reports whether taxID is well formed, recording why not.
func checkTaxIDFormat(verr *ValidationError, taxID string) bool {
	switch {
	case taxID == "":
		verr.add(FieldTaxID, MsgTaxIDRequired)
		return false
	case !domain.TaxIDPattern.MatchString(taxID):
		verr.add(FieldTaxID, MsgTaxIDMalformed)
		return false
	}
	return true
}

func checkCredentials(verr *ValidationError, creds domain.Credentials) domain.Credentials {
	var unknown []string
	for sys := range creds {
		if !sys.Known() {
			unknown = append(unknown, string(sys))
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		verr.add(FieldCredentials, "unknown credential system: "+strings.Join(unknown, ", "))
	}
	return creds.Compact()
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
