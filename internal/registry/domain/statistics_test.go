package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/stretchr/testify/require"
)

func TestComputeStatistics(t *testing.T) {
	fiscal := domain.Credentials{domain.CredentialFiscal: "clave123"}

	tests := []struct {
		name    string
		clients []domain.Client
		want    domain.Statistics
	}{
		{
			name: "empty book",
			want: domain.Statistics{},
		},
		{
			name: "three of four active",
			clients: []domain.Client{
				{Active: true, Credentials: fiscal},
				{Active: true},
				{Active: true, Credentials: domain.Credentials{domain.CredentialFiscal: "  "}},
				{Active: false, Credentials: fiscal},
			},
			want: domain.Statistics{Total: 4, Active: 3, Inactive: 1, WithFiscalCredential: 2, PercentActive: 75},
		},
		{
			name:    "rounded to two decimals",
			clients: []domain.Client{{Active: true}, {Active: true}, {Active: false}},
			want:    domain.Statistics{Total: 3, Active: 2, Inactive: 1, PercentActive: 66.67},
		},
		{
			name:    "none active",
			clients: []domain.Client{{}, {}},
			want:    domain.Statistics{Total: 2, Inactive: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, domain.ComputeStatistics(tt.clients))
		})
	}
}
