package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders a human-readable summary of s.
func Markdown(s Stored) string {
	var b strings.Builder

	title := s.Name
	if title == "" {
		title = "Unnamed applicant"
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	if s.ID != "" {
		fmt.Fprintf(&b, "Report `%s`, uploaded %s.\n\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04 MST"))
	}

	b.WriteString("## Applicant\n\n")
	fmt.Fprintf(&b, "- **Phone:** %s\n", orDash(s.Phone))
	fmt.Fprintf(&b, "- **PAN:** %s\n", orDash(s.PAN))
	fmt.Fprintf(&b, "- **Credit score:** %s\n\n", num(s.CreditScore))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n| --- | ---: |\n")
	rows := []struct {
		label string
		v     float64
	}{
		{"Total accounts", s.TotalAccounts},
		{"Active accounts", s.ActiveAccounts},
		{"Closed accounts", s.ClosedAccounts},
		{"Current balance", s.CurrentBalance},
		{"Secured balance", s.SecuredBalance},
		{"Unsecured balance", s.UnsecuredBalance},
		{"Enquiries (last 7 days)", s.RecentEnquiries},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r.label, num(r.v))
	}

	b.WriteString("\n## Accounts\n\n")
	if len(s.Accounts) == 0 {
		b.WriteString("No accounts detected.\n")
		return b.String()
	}
	b.WriteString("| # | Bank | Type | Account number | Balance | Overdue | Holder PAN |\n")
	b.WriteString("| ---: | --- | --- | --- | ---: | ---: | --- |\n")
	for i, a := range s.Accounts {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			i+1, cell(a.Bank), cell(a.Type), cell(a.AccountNumber),
			num(a.CurrentBalance), num(a.AmountOverdue), cell(a.HolderPAN))
	}
	return b.String()
}

// HTML renders the Markdown summary of s through goldmark.
func HTML(s Stored) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(s)), &buf); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return escape(s)
}

func cell(s string) string {
	return strings.ReplaceAll(orDash(s), "|", `\|`)
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escape(s string) string {
	return mdEscaper.Replace(s)
}
