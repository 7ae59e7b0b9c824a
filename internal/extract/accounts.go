package extract

import (
	"strings"

	"github.com/dgallion1/creditgest/internal/doctree"
	"github.com/dgallion1/creditgest/internal/report"
)

// FindAccountNodes returns the nodes that have at least one direct key whose
// normalized form contains a marker. Section wrappers match too; callers
// filter with IsLikelyAccount. Result order is document order, one entry per
// node id.
func FindAccountNodes(nodes []*doctree.Node, markers []string) []*doctree.Node {
	norm := make([]string, 0, len(markers))
	for _, m := range markers {
		if nm := NormalizeKey(m); nm != "" {
			norm = append(norm, nm)
		}
	}

	seen := make(map[int]struct{})
	var out []*doctree.Node
	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		if hasMarkerKey(n, norm) {
			seen[n.ID] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func hasMarkerKey(n *doctree.Node, markers []string) bool {
	for _, key := range n.Keys() {
		k := NormalizeKey(key)
		for _, m := range markers {
			if strings.Contains(k, m) {
				return true
			}
		}
	}
	return false
}

// candidate is an account record plus the free-text description used only
// for validation.
type candidate struct {
	account     report.Account
	description string
}

// extractAccount pulls account fields from the direct keys of n.
func (p *Profile) extractAccount(n *doctree.Node) candidate {
	a := p.Account
	pick := func(aliases []string) string {
		s, _ := PickFromNode(n, aliases)
		return s
	}

	acc := report.Account{
		Bank:           CleanBankName(pick(a.Bank)),
		AccountNumber:  pick(a.Number),
		AmountOverdue:  ParseNumber(pick(a.AmountOverdue)),
		CurrentBalance: ParseNumber(pick(a.CurrentBalance)),
		Address:        p.accountAddress(n),
		HolderPAN:      pick(a.HolderPAN),
	}
	acc.Type = pick(a.Type)
	if acc.Type == "" {
		acc.Type = pick(a.PortfolioType)
	}
	if acc.HolderPAN == "" {
		if holder := firstChildNode(n, a.HolderDetails); holder != nil {
			acc.HolderPAN, _ = PickFromNode(holder, a.HolderPAN)
		}
	}
	return candidate{account: acc, description: pick(a.Description)}
}

// accountAddress joins the address components found on n, falling back to
// the first nested address-holder entry.
func (p *Profile) accountAddress(n *doctree.Node) string {
	if addr := p.joinAddress(n); addr != "" {
		return addr
	}
	if holder := firstChildNode(n, p.Account.AddressHolder); holder != nil {
		return p.joinAddress(holder)
	}
	return ""
}

func (p *Profile) joinAddress(n *doctree.Node) string {
	var parts []string
	for _, aliases := range [][]string{
		p.Account.AddressLine1,
		p.Account.AddressLine2,
		p.Account.City,
		p.Account.PostalCode,
	} {
		if s, ok := PickFromNode(n, aliases); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
