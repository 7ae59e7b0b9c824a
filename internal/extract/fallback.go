package extract

import (
	"regexp"
	"strings"
)

// PAN: 5 letters, 4 digits, 1 letter.
var panPattern = regexp.MustCompile(`[A-Za-z]{5}[0-9]{4}[A-Za-z]`)

// FindPAN returns the first PAN-shaped token in raw document text, upper-cased.
func FindPAN(raw string) (string, bool) {
	m := panPattern.FindString(raw)
	if m == "" {
		return "", false
	}
	return strings.ToUpper(m), true
}

// FindPhone scans maximal digit runs in raw document text and returns the
// first one that is a mobile number: 10 digits starting 6-9, or the same
// behind a "91" country code or a leading trunk "0".
func FindPhone(raw string) (string, bool) {
	start := -1
	for i := 0; i <= len(raw); i++ {
		if i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start < 0 {
			continue
		}
		if phone, ok := mobileFromRun(raw[start:i]); ok {
			return phone, true
		}
		start = -1
	}
	return "", false
}

func mobileFromRun(run string) (string, bool) {
	switch {
	case len(run) == 10 && isMobile(run):
		return run, true
	case len(run) == 12 && strings.HasPrefix(run, "91") && isMobile(run[2:]):
		return run[2:], true
	case len(run) == 11 && run[0] == '0' && isMobile(run[1:]):
		return run[1:], true
	}
	return "", false
}

func isMobile(digits string) bool {
	return len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9'
}

// NormalizePhoneDigits strips everything but digits from a structured phone
// value and drops a "91" country code from 12-digit numbers.
func NormalizePhoneDigits(s string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		return digits[2:]
	}
	return digits
}
