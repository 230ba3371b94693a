package stats

import (
	"strings"
	"time"

	"github.com/zeus-03/pennytrail/internal/dates"
	"github.com/zeus-03/pennytrail/internal/models"
)

// Filter returns the transactions matching every criterion of the spec,
// preserving input order. The input is never mutated; a new slice is returned
// even when the spec is the identity.
//
// Criteria compose as an AND of independent predicates:
//   - time range membership against the reference time ("all" or an unknown
//     key disables the check)
//   - category equality ("all" or empty disables it; a record with a category
//     outside the enumeration only ever matches "all")
//   - case-insensitive substring match of the search text against the
//     merchant (empty disables it)
func Filter(txns []models.Transaction, spec models.FilterSpec, now time.Time) []models.Transaction {
	timeRange, checkRange := dates.RangeFor(spec.TimeRange, now)

	checkCategory := spec.Category != "" && spec.Category != models.CategoryAll

	search := strings.ToLower(spec.Search)
	checkSearch := search != ""

	matched := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if checkRange && !timeRange.Contains(t.TransactionDate) {
			continue
		}
		if checkCategory && t.Category != spec.Category {
			continue
		}
		if checkSearch && !strings.Contains(strings.ToLower(t.Merchant), search) {
			continue
		}
		matched = append(matched, t)
	}

	return matched
}
