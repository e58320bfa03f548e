package calls

import (
	"fmt"
	"math/rand"
	"regexp"
)

const externalIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// ExternalIDPattern matches generated ids: call_<epoch millis>_<7 base36>.
var ExternalIDPattern = regexp.MustCompile(`^call_\d+_[0-9a-z]{7}$`)

// NewExternalID generates an external id for callers that did not supply one.
// Time-based prefix plus a random suffix; uniqueness is ultimately enforced by
// the store's unique constraint.
func NewExternalID(nowMillis int64) string {
	var suffix [7]byte
	for i := range suffix {
		suffix[i] = externalIDAlphabet[rand.Intn(len(externalIDAlphabet))]
	}
	return fmt.Sprintf("call_%d_%s", nowMillis, string(suffix[:]))
}
