package guidance

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// idEvidenceItems is how many leading evidence tokens participate in the
// identity hash. Trailing evidence can grow or shrink without changing the
// suggestion's identity.
const idEvidenceItems = 4

// idLength is the truncated hex length of a suggestion id.
//
// Compatibility contract: ids are sha1(type|recommendation|first-4-evidence)
// truncated to 12 hex characters. Persisted lifecycle rows are keyed by
// these ids, so changing the algorithm or truncation orphans stored state.
const idLength = 12

// SuggestionID derives the content-addressed id for a suggestion. The same
// logical suggestion recomputed on a different day keeps its id as long as
// the recommendation text and leading evidence are unchanged.
func SuggestionID(suggestionType, recommendation string, evidence []string) string {
	if len(evidence) > idEvidenceItems {
		evidence = evidence[:idEvidenceItems]
	}
	payload := suggestionType + "|" + recommendation + "|" + strings.Join(evidence, "|")
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])[:idLength]
}
