package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestClientFilterMatches(t *testing.T) {
	empresa := domain.Client{Name: "EMPRESA EJEMPLO S.A.", TaxID: "30-12345678-9", Address: "Av. Corrientes 1234", Active: true}
	norte := domain.Client{Name: "IMPORTADORA NORTE", TaxID: "30-11223344-5", Address: "Ruta 9 km 12, Tucumán", Active: false}

	tests := []struct {
		name   string
		filter domain.ClientFilter
		want   []domain.Client
	}{
		{"empty matches all", domain.ClientFilter{}, []domain.Client{empresa, norte}},
		{"name case insensitive", domain.ClientFilter{Search: "empresa"}, []domain.Client{empresa}},
		{"inactive only", domain.ClientFilter{Active: ptr(false)}, []domain.Client{norte}},
		{"active only", domain.ClientFilter{Active: ptr(true)}, []domain.Client{empresa}},
		{"no match", domain.ClientFilter{Search: "xyz"}, nil},
		{"tax id substring", domain.ClientFilter{Search: "1122"}, []domain.Client{norte}},
		{"address substring", domain.ClientFilter{Search: "corrientes"}, []domain.Client{empresa}},
		{"unicode folding", domain.ClientFilter{Search: "TUCUMÁN"}, []domain.Client{norte}},
		{"search and flag are conjunctive", domain.ClientFilter{Search: "empresa", Active: ptr(false)}, nil},
		{"spaces match literally", domain.ClientFilter{Search: " norte"}, []domain.Client{norte}},
		{"whitespace only is not empty", domain.ClientFilter{Search: "   "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []domain.Client
			for _, c := range []domain.Client{empresa, norte} {
				if tt.filter.Matches(c) {
					got = append(got, c)
				}
			}
			require.Equal(t, tt.want, got)
		})
	}
}
