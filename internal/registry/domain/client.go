package domain

import (
	"regexp"
	"strings"
	"time"
)

// CredentialSystem names an external portal a client delegates access to.
type CredentialSystem string

const (
	CredentialFiscal            CredentialSystem = "fiscal"
	CredentialCityPortal        CredentialSystem = "city_portal"
	CredentialProvincialRevenue CredentialSystem = "provincial_revenue"
	CredentialSocialSecurity    CredentialSystem = "social_security"
	CredentialSectorFund1       CredentialSystem = "sector_fund_1"
	CredentialSectorFund2       CredentialSystem = "sector_fund_2"
	CredentialSectorFund3       CredentialSystem = "sector_fund_3"
	CredentialDigitalLedger     CredentialSystem = "digital_ledger"
	CredentialFirmPortal        CredentialSystem = "firm_portal"
)

// CredentialSystems lists every known system in display order.
var CredentialSystems = []CredentialSystem{
	CredentialFiscal,
	CredentialCityPortal,
	CredentialProvincialRevenue,
	CredentialSocialSecurity,
	CredentialSectorFund1,
	CredentialSectorFund2,
	CredentialSectorFund3,
	CredentialDigitalLedger,
	CredentialFirmPortal,
}

// Known reports whether s is one of CredentialSystems.
func (s CredentialSystem) Known() bool {
	for _, k := range CredentialSystems {
		if s == k {
			return true
		}
	}
	return false
}

// Credentials maps a system to the secret used to log into it. Absent and
// blank entries both mean "no credential".
type Credentials map[CredentialSystem]string

// Get returns the secret for s trimmed of surrounding whitespace.
func (c Credentials) Get(s CredentialSystem) string {
	return strings.TrimSpace(c[s])
}

// Compact returns a copy without blank entries.
func (c Credentials) Compact() Credentials {
	out := make(Credentials, len(c))
	for k, v := range c {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

// TaxIDPattern is two digits, hyphen, eight digits, hyphen, one digit.
var TaxIDPattern = regexp.MustCompile(`^\d{2}-\d{8}-\d$`)

// Client is one customer of the firm.
type Client struct {
	ID      string
	Name    string
	TaxID   string
	Address string

	Credentials Credentials

	EmployerRegistryNumber string
	Notes                  string

	// Administrative metadata, free text.
	FolderPath  string
	PointOfSale string
	DBName      string
	DBPath      string
	BackupPath  string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaxIDNoHyphens returns the tax id with hyphens removed.
func (c Client) TaxIDNoHyphens() string {
	return strings.ReplaceAll(c.TaxID, "-", "")
}

// HasFiscalCredential is true when the fiscal credential is present and not
// blank.
func (c Client) HasFiscalCredential() bool {
	return c.Credentials.Get(CredentialFiscal) != ""
}

func (c Client) String() string {
	return c.Name + " (" + c.TaxID + ")"
}
