// Package seed loads demo clients into an empty or partially filled
// registry.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

//go:embed demo_clients.yaml
var demoClients []byte

type fixture struct {
	Name                   string            `yaml:"name"`
	TaxID                  string            `yaml:"tax_id"`
	Address                string            `yaml:"address"`
	Active                 *bool             `yaml:"active"`
	Credentials            map[string]string `yaml:"credentials"`
	EmployerRegistryNumber string            `yaml:"employer_registry_number"`
	Notes                  string            `yaml:"notes"`
	FolderPath             string            `yaml:"folder_path"`
	PointOfSale            string            `yaml:"point_of_sale"`
	DBName                 string            `yaml:"db_name"`
	DBPath                 string            `yaml:"db_path"`
	BackupPath             string            `yaml:"backup_path"`
}

func (f fixture) input() service.ClientInput {
	creds := make(domain.Credentials, len(f.Credentials))
	for sys, secret := range f.Credentials {
		creds[domain.CredentialSystem(sys)] = secret
	}
	return service.ClientInput{
		Name:                   f.Name,
		TaxID:                  f.TaxID,
		Address:                f.Address,
		Credentials:            creds,
		EmployerRegistryNumber: f.EmployerRegistryNumber,
		Notes:                  f.Notes,
		FolderPath:             f.FolderPath,
		PointOfSale:            f.PointOfSale,
		DBName:                 f.DBName,
		DBPath:                 f.DBPath,
		BackupPath:             f.BackupPath,
		Active:                 f.Active,
	}
}

// Demo returns the built-in demo clients.
func Demo() ([]service.ClientInput, error) {
	return Parse(bytes.NewReader(demoClients))
}

// Parse reads a YAML list of clients. Unknown keys are rejected.
func Parse(r io.Reader) ([]service.ClientInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fixtures []fixture
	if err := dec.Decode(&fixtures); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	out := make([]service.ClientInput, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, f.input())
	}
	return out, nil
}

// Result counts what Load did.
type Result struct {
	Created int
	Skipped int
}

// Load creates every client whose tax id is not registered yet. Existing
// clients are left untouched, so running it twice is harmless.
func Load(ctx context.Context, clients *service.ClientService, inputs []service.ClientInput) (Result, error) {
	log := slogx.FromContext(ctx)
	var res Result

	for _, in := range inputs {
		_, err := clients.GetByTaxID(ctx, in.TaxID)
		switch {
		case err == nil:
			res.Skipped++
			log.Info("seed client exists", "tax_id", in.TaxID)
			continue
		case !errors.Is(err, service.ErrClientNotFound):
			return res, err
		}

		c, err := clients.Create(ctx, in)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) && verr.Fields[service.FieldTaxID] == service.MsgTaxIDInUse {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("seed %s: %w", in.TaxID, err)
		}
		res.Created++
		log.Info("seed client created", "client_id", c.ID, "name", c.Name)
	}
	return res, nil
}
