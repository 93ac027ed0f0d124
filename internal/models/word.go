// Package models provides data model definitions for the vocasync core.
package models

import "time"

// WordStatus represents the learning state of a word.
type WordStatus string

const (
	StatusNew      WordStatus = "new"
	StatusLearning WordStatus = "learning"
	StatusLearned  WordStatus = "learned"
)

// Word represents a learnable vocabulary item with its review schedule.
// NextReviewDate is an RFC3339 timestamp; empty means no review is scheduled.
type Word struct {
	ID             string     `json:"id"`
	Term           string     `json:"term"`
	Translation    string     `json:"translation"`
	Example        string     `json:"example,omitempty"`
	GroupID        string     `json:"group_id,omitempty"`
	Status         WordStatus `json:"status"`
	NextReviewDate string     `json:"next_review_date,omitempty"`
	CreatedAt      int64      `json:"created_at,omitempty"`
	UpdatedAt      int64      `json:"updated_at,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (w *Word) Touch() {
	w.UpdatedAt = time.Now().UnixMilli()
}

// WordPatch is a partial update to a Word. Nil fields are left untouched
// when the patch is applied.
type WordPatch struct {
	Term           *string     `json:"term,omitempty"`
	Translation    *string     `json:"translation,omitempty"`
	Example        *string     `json:"example,omitempty"`
	GroupID        *string     `json:"group_id,omitempty"`
	Status         *WordStatus `json:"status,omitempty"`
	NextReviewDate *string     `json:"next_review_date,omitempty"`
}

// Apply merges the patch into the word, leaving fields not present in the
// patch unchanged.
func (p WordPatch) Apply(w *Word) {
	if p.Term != nil {
		w.Term = *p.Term
	}
	if p.Translation != nil {
		w.Translation = *p.Translation
	}
	if p.Example != nil {
		w.Example = *p.Example
	}
	if p.GroupID != nil {
		w.GroupID = *p.GroupID
	}
	if p.Status != nil {
		w.Status = *p.Status
	}
	if p.NextReviewDate != nil {
		w.NextReviewDate = *p.NextReviewDate
	}
}

// IsEmpty reports whether the patch carries no fields.
func (p WordPatch) IsEmpty() bool {
	return p.Term == nil && p.Translation == nil && p.Example == nil &&
		p.GroupID == nil && p.Status == nil && p.NextReviewDate == nil
}
