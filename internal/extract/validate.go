package extract

import (
	"strings"

	"github.com/dgallion1/creditgest/internal/doctree"
)

// IsLikelyAccount checks a candidate account node. Returns true if valid.
//
// A node is rejected when its bank, account number or description mention a
// blacklisted term, which marks document or section metadata. Otherwise it
// must carry a bank, an account number, or a balance or overdue value of its
// own.
func (p *Profile) IsLikelyAccount(n *doctree.Node, bank, accountNumber, description string) bool {
	if n == nil {
		return false
	}
	combined := strings.ToLower(bank + " " + accountNumber + " " + description)
	for _, term := range p.Blacklist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(combined, term) {
			return false
		}
	}
	if bank != "" || accountNumber != "" {
		return true
	}
	if _, ok := PickFromNode(n, p.Account.CurrentBalance); ok {
		return true
	}
	_, ok := PickFromNode(n, p.Account.AmountOverdue)
	return ok
}
