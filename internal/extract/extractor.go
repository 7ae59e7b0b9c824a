package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/creditgest/internal/doctree"
	"github.com/dgallion1/creditgest/internal/parser"
	"github.com/dgallion1/creditgest/internal/report"
)

// Extractor turns one bureau document into a Report. It holds no per-call
// state and is safe for concurrent use.
type Extractor struct {
	profile *Profile
	parser  parser.Parser
	log     *slog.Logger
}

// NewExtractor creates an extractor. A nil profile means DefaultProfile.
func NewExtractor(profile *Profile, p parser.Parser, log *slog.Logger) *Extractor {
	if profile == nil {
		profile = DefaultProfile()
	}
	if p == nil {
		p = parser.NewXMLParser(0, 0)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{profile: profile, parser: p, log: log}
}

// Profile returns the heuristic tables in use.
func (e *Extractor) Profile() *Profile {
	return e.profile
}

// Extract parses raw and builds the Report. The only error is a parse
// failure; missing fields default to "" or 0.
func (e *Extractor) Extract(raw []byte) (report.Report, error) {
	tree, err := e.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return report.Report{}, fmt.Errorf("parse document: %w", err)
	}
	return e.FromTree(tree, string(raw)), nil
}

// FromTree builds the Report from an already parsed tree. raw is the original
// document text, scanned when structured identity lookups come up empty.
func (e *Extractor) FromTree(tree *doctree.Tree, raw string) report.Report {
	p := e.profile
	nodes := tree.Flatten()
	find := func(aliases []string) string {
		s, _ := FindFirstByTag(nodes, aliases)
		return s
	}
	number := func(aliases []string) float64 {
		return ParseNumber(find(aliases))
	}

	r := report.Report{
		Name:             e.resolveName(nodes),
		Phone:            NormalizePhoneDigits(find(p.Identity.Phone)),
		PAN:              find(p.Identity.PAN),
		CreditScore:      number(p.Summary.CreditScore),
		ActiveAccounts:   number(p.Summary.ActiveAccounts),
		ClosedAccounts:   number(p.Summary.ClosedAccounts),
		CurrentBalance:   number(p.Summary.CurrentBalance),
		SecuredBalance:   number(p.Summary.SecuredBalance),
		UnsecuredBalance: number(p.Summary.UnsecuredBalance),
		RecentEnquiries:  number(p.Summary.RecentEnquiries),
	}
	if r.Phone == "" {
		r.Phone, _ = FindPhone(raw)
	}
	if r.PAN == "" {
		r.PAN, _ = FindPAN(raw)
	}

	r.Accounts = e.accounts(nodes)
	r.TotalAccounts = number(p.Summary.TotalAccounts)
	if r.TotalAccounts == 0 {
		r.TotalAccounts = float64(len(r.Accounts))
	}

	e.logMissing(r)
	return r
}

func (e *Extractor) resolveName(nodes []*doctree.Node) string {
	id := e.profile.Identity
	first, _ := FindFirstByTag(nodes, id.FirstName)
	last, _ := FindFirstByTag(nodes, id.LastName)
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name, _ = FindFirstByTag(nodes, id.FullName)
	}
	return TitleCase(name)
}

func (e *Extractor) accounts(nodes []*doctree.Node) []report.Account {
	candidates := FindAccountNodes(nodes, e.profile.AccountMarkers)
	accounts := make([]report.Account, 0, len(candidates))
	rejected := 0
	for _, n := range candidates {
		c := e.profile.extractAccount(n)
		if !e.profile.IsLikelyAccount(n, c.account.Bank, c.account.AccountNumber, c.description) {
			rejected++
			continue
		}
		accounts = append(accounts, c.account)
	}
	deduped := DedupeAccounts(accounts)
	e.log.Debug("account detection",
		"candidates", len(candidates),
		"rejected", rejected,
		"duplicates", len(accounts)-len(deduped),
		"accounts", len(deduped),
	)
	return deduped
}

func (e *Extractor) logMissing(r report.Report) {
	if r.Name == "" {
		e.log.Warn("field not found in document", "field", "name")
	}
	if r.PAN == "" {
		e.log.Warn("field not found in document", "field", "pan")
	}
	if r.Phone == "" {
		e.log.Warn("field not found in document", "field", "phone")
	}
	if len(r.Accounts) == 0 {
		e.log.Warn("no accounts detected")
	}
}
