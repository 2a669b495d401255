package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint is an order-independent summary of a snapshot's check
// conclusions and workflow run statuses. Two snapshots with equal
// fingerprints are treated as identical for action purposes; re-polling an
// unchanged pull request is a no-op.
type Fingerprint string

// Fingerprint derives the snapshot's fingerprint. Check runs contribute
// name=conclusion pairs and workflow runs contribute id=status pairs; the
// pairs are sorted before hashing so element order never affects the result.
func (s PullRequestSnapshot) Fingerprint() Fingerprint {
	lines := make([]string, 0, len(s.CheckRuns)+len(s.WorkflowRuns))
	for _, c := range s.CheckRuns {
		lines = append(lines, fmt.Sprintf("check/%s=%s", c.Name, c.Conclusion))
	}
	for _, w := range s.WorkflowRuns {
		lines = append(lines, fmt.Sprintf("run/%d=%s", w.ID, w.Status))
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return Fingerprint(hex.EncodeToString(sum[:]))
}
