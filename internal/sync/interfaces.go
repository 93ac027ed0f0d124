// Package sync drains the pending-action queue against the remote source
// of truth and keeps the local cache fresh.
package sync

import (
	"context"
	"time"

	"github.com/yuchiaw/vocasync/internal/models"
)

// WordService is the remote word collection. Implementations live in the
// transport layer; the engine only needs these three operations.
//
// A Delete or Update against a word that no longer exists must return an
// error carrying errors.ErrNotFound so the engine can branch on data
// rather than error prose.
type WordService interface {
	// Delete removes the word remotely.
	Delete(ctx context.Context, id string) error

	// Update applies a partial update and returns the updated word.
	Update(ctx context.Context, id string, patch models.WordPatch) (*models.Word, error)

	// ListAll returns the authoritative word list.
	ListAll(ctx context.Context) ([]models.Word, error)
}

// ReviewOutcome is what the remote scheduling algorithm returns for a
// rating. The interval algorithm itself is out of scope here.
type ReviewOutcome struct {
	NextReviewAt time.Time
}

// ProgressService is the remote learning-progress tracker.
type ProgressService interface {
	// RecordReview submits a review rating and returns the next scheduled
	// review time.
	RecordReview(ctx context.Context, userID, wordID string, rating int) (*ReviewOutcome, error)

	// StartLearning marks a word as entered into the learning rotation.
	StartLearning(ctx context.Context, userID, wordID string) error
}

// StateStore is the slice of the local state store the engine depends on.
type StateStore interface {
	GetWords() []models.Word
	SetWords(words []models.Word) bool
	GetPendingActions() []models.PendingAction
	RemoveAction(id string) bool
	UpdateAction(id string, fn func(models.PendingAction) models.PendingAction) bool
}
