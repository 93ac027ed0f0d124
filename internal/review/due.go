// Package review selects which words are due for a review session. All
// functions here are pure filters over in-memory lists; no I/O happens and
// nothing is mutated.
package review

import (
	"sort"
	"time"

	"github.com/yuchiaw/vocasync/internal/logging"
	"github.com/yuchiaw/vocasync/internal/models"
)

// ScopeUngrouped is the pseudo-scope selecting words that belong to no
// group at all. An empty scope means no scope filtering.
const ScopeUngrouped = "ungrouped"

// CalculateDueWords returns the words whose scheduled review time has
// arrived, earliest due first.
//
// Words with status "new" or without a scheduled review are never due.
// An unparseable next_review_date is logged and skipped rather than
// failing the whole calculation. A positive limit truncates the sorted
// result; zero means unlimited.
func CalculateDueWords(words []models.Word, limit int, scope string) []models.Word {
	due := make([]models.Word, 0)
	if len(words) == 0 {
		return due
	}

	now := time.Now()
	dueAt := make(map[string]time.Time, len(words))

	for _, w := range words {
		if w.Status == models.StatusNew || w.NextReviewDate == "" {
			continue
		}
		if !inScope(w, scope) {
			continue
		}
		reviewAt, err := time.Parse(time.RFC3339, w.NextReviewDate)
		if err != nil {
			logging.Warn("Word has unparseable next_review_date", map[string]interface{}{
				"word_id": w.ID,
				"value":   w.NextReviewDate,
			})
			continue
		}
		if reviewAt.After(now) {
			continue
		}
		dueAt[w.ID] = reviewAt
		due = append(due, w)
	}

	// Stable sort keeps input order for equal timestamps, so ties break
	// deterministically.
	sort.SliceStable(due, func(i, j int) bool {
		return dueAt[due[i].ID].Before(dueAt[due[j].ID])
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

// CountDueWords returns how many words are due in the given scope. Defined
// through CalculateDueWords so the two can never disagree.
func CountDueWords(words []models.Word, scope string) int {
	return len(CalculateDueWords(words, 0, scope))
}

func inScope(w models.Word, scope string) bool {
	switch scope {
	case "":
		return true
	case ScopeUngrouped:
		return w.GroupID == ""
	default:
		return w.GroupID == scope
	}
}
