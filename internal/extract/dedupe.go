package extract

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dgallion1/creditgest/internal/report"
	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// fingerprintMode encodes with Core Deterministic Encoding (RFC 8949 §4.2) so
// equal records always produce identical bytes.
var fingerprintMode cbor.EncMode

func init() {
	var err error
	fingerprintMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("extract: CBOR encoder initialization failed: " + err.Error())
	}
}

// AccountKey is the identity used for deduplication: the trimmed account
// number when present, otherwise a digest over every field of the record.
func AccountKey(a report.Account) string {
	if n := strings.TrimSpace(a.AccountNumber); n != "" {
		return "number:" + n
	}
	return "record:" + Fingerprint(a)
}

// Fingerprint returns a hex BLAKE3 digest of the record's deterministic CBOR
// encoding.
func Fingerprint(a report.Account) string {
	data, err := fingerprintMode.Marshal(a)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", a))
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DedupeAccounts drops every record whose key was already seen. The first
// occurrence keeps its position and its field values; later ones are
// discarded whole.
func DedupeAccounts(accounts []report.Account) []report.Account {
	out := make([]report.Account, 0, len(accounts))
	seen := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		key := AccountKey(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
