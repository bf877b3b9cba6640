// Package id builds the identifiers used across conversions: transaction
// keys and GnuCash style GUIDs.
package id

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
)

// TxKey returns a transaction key scoped to an account, like
// "Checking:2024-01-15:42". The trailing sequence keeps same-day
// transactions distinct.
func TxKey(accountID, isoDate string, seq int) string {
	if accountID == "" {
		return fmt.Sprintf("%s:%d", isoDate, seq)
	}
	return fmt.Sprintf("%s:%s:%d", accountID, isoDate, seq)
}

// HashKey returns a transaction key derived from free text, like
// "2024-01-15:a1b2c3d4". Used where the source format has no stable
// sequence to key on.
func HashKey(isoDate, text string) string {
	h := fnv.New32a()
	h.Write([]byte(text))
	return fmt.Sprintf("%s:%08x", isoDate, h.Sum32())
}

// NewGUID returns a fresh GnuCash style GUID: 32 hex characters.
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
