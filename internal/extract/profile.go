package extract

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/default.yaml
var defaultProfileYAML []byte

// Profile holds the heuristic tables the extractor runs on: tag aliases per
// semantic field, account marker keys, and blacklist terms. One profile
// describes one family of bureau schema versions.
type Profile struct {
	Identity       IdentityAliases `yaml:"identity"`
	Summary        SummaryAliases  `yaml:"summary"`
	Account        AccountAliases  `yaml:"account"`
	AccountMarkers []string        `yaml:"account_markers"`
	Blacklist      []string        `yaml:"blacklist"`
}

// IdentityAliases name the tags holding the consumer's personal details.
type IdentityAliases struct {
	FirstName []string `yaml:"first_name"`
	LastName  []string `yaml:"last_name"`
	FullName  []string `yaml:"full_name"`
	Phone     []string `yaml:"phone"`
	PAN       []string `yaml:"pan"`
}

// SummaryAliases name the tags of the report-level score and account totals.
type SummaryAliases struct {
	CreditScore      []string `yaml:"credit_score"`
	TotalAccounts    []string `yaml:"total_accounts"`
	ActiveAccounts   []string `yaml:"active_accounts"`
	ClosedAccounts   []string `yaml:"closed_accounts"`
	CurrentBalance   []string `yaml:"current_balance"`
	SecuredBalance   []string `yaml:"secured_balance"`
	UnsecuredBalance []string `yaml:"unsecured_balance"`
	RecentEnquiries  []string `yaml:"recent_enquiries"`
}

// AccountAliases are looked up only among the direct keys of a candidate
// account node. AddressHolder and HolderDetails name nested sub-structures
// consulted when the node itself lacks address or PAN keys.
type AccountAliases struct {
	Bank           []string `yaml:"bank"`
	Number         []string `yaml:"number"`
	Type           []string `yaml:"type"`
	PortfolioType  []string `yaml:"portfolio_type"`
	AmountOverdue  []string `yaml:"amount_overdue"`
	CurrentBalance []string `yaml:"current_balance"`
	AddressLine1   []string `yaml:"address_line1"`
	AddressLine2   []string `yaml:"address_line2"`
	City           []string `yaml:"city"`
	PostalCode     []string `yaml:"postal_code"`
	HolderPAN      []string `yaml:"holder_pan"`
	Description    []string `yaml:"description"`
	AddressHolder  string   `yaml:"address_holder"`
	HolderDetails  string   `yaml:"holder_details"`
}

// DefaultProfile returns the built-in profile covering the common bureau
// report variants.
func DefaultProfile() *Profile {
	p, err := ParseProfile(defaultProfileYAML)
	if err != nil {
		panic("extract: embedded default profile is invalid: " + err.Error())
	}
	return p
}

// LoadProfile reads a YAML profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes and validates a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate rejects profiles that would silently extract nothing.
func (p *Profile) Validate() error {
	required := []struct {
		name    string
		aliases []string
	}{
		{"identity.first_name", p.Identity.FirstName},
		{"identity.last_name", p.Identity.LastName},
		{"identity.full_name", p.Identity.FullName},
		{"identity.phone", p.Identity.Phone},
		{"identity.pan", p.Identity.PAN},
		{"summary.credit_score", p.Summary.CreditScore},
		{"summary.total_accounts", p.Summary.TotalAccounts},
		{"account.bank", p.Account.Bank},
		{"account.number", p.Account.Number},
		{"account.current_balance", p.Account.CurrentBalance},
		{"account.amount_overdue", p.Account.AmountOverdue},
		{"account_markers", p.AccountMarkers},
	}
	for _, r := range required {
		if len(r.aliases) == 0 {
			return fmt.Errorf("profile: %s must list at least one tag", r.name)
		}
		for _, a := range r.aliases {
			if NormalizeKey(a) == "" {
				return fmt.Errorf("profile: %s contains an empty tag", r.name)
			}
		}
	}
	return nil
}
