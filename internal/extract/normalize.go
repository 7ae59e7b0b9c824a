package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/creditgest/internal/doctree"
)

// NormalizeKey lower-cases a tag name and drops whitespace, underscores and
// hyphens, so "Account_Number", "ACCOUNT NUMBER" and "account-number" compare
// equal. It is idempotent.
func NormalizeKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range k {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ParseNumber keeps only digits, '.' and '-' and parses what is left. Anything
// unparseable or non-finite is 0.
func ParseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	return n
}

// Coerce turns any tree value into a number. Lists are summed element by
// element; a node contributes its text content, or 0 without one.
//
// Callers holding a single resolved string should use ParseNumber; Coerce is
// for summing every occurrence of a repeated tag.
func Coerce(v doctree.Value) float64 {
	switch v := v.(type) {
	case doctree.Scalar:
		return ParseNumber(string(v))
	case doctree.List:
		var sum float64
		for _, item := range v {
			sum += Coerce(item)
		}
		return sum
	case *doctree.Node:
		if v != nil && v.HasText {
			return ParseNumber(v.Text)
		}
	}
	return 0
}

// PickFirstPrimitive returns the first non-empty text a value carries: a
// scalar's trimmed text, a wrapped node's text content, or for a list the
// first element yielding either.
func PickFirstPrimitive(v doctree.Value) (string, bool) {
	switch v := v.(type) {
	case doctree.Scalar:
		s := strings.TrimSpace(string(v))
		return s, s != ""
	case doctree.List:
		for _, item := range v {
			if s, ok := PickFirstPrimitive(item); ok {
				return s, true
			}
		}
	case *doctree.Node:
		if v != nil && v.HasText {
			s := strings.TrimSpace(v.Text)
			return s, s != ""
		}
	}
	return "", false
}

// TitleCase upper-cases the first letter of each whitespace-separated part
// and lower-cases the rest, joining parts with single spaces.
func TitleCase(s string) string {
	parts := strings.Fields(s)
	for i, part := range parts {
		r, size := utf8.DecodeRuneInString(part)
		parts[i] = string(unicode.ToUpper(r)) + strings.ToLower(part[size:])
	}
	return strings.Join(parts, " ")
}

var bankPrefix = regexp.MustCompile(`^\s*[\d\-.:]+\s*[-:]*\s*`)

// CleanBankName strips a leading member-code prefix such as "01-" from a
// subscriber name.
func CleanBankName(s string) string {
	return strings.TrimSpace(bankPrefix.ReplaceAllString(s, ""))
}
