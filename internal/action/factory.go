// Package action builds immutable pending-mutation records and provides the
// pure predicates the store and sync engine apply to them. No I/O happens here.
package action

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yuchiaw/vocasync/internal/models"
)

const (
	// MaxRetries is the number of times a failing action is retried by the
	// sync engine before it is left queued until expiry.
	MaxRetries = 3

	// MaxAge is how long an action may stay queued before it is silently
	// dropped on the next read.
	MaxAge = 7 * 24 * time.Hour
)

// newAction constructs a pending action with a fresh id, the current
// timestamp and a zero retry count.
func newAction(typ models.ActionType, payload interface{}) models.PendingAction {
	raw, _ := json.Marshal(payload)
	return models.PendingAction{
		ID:        uuid.New().String(),
		Type:      typ,
		Payload:   raw,
		Timestamp: time.Now().UnixMilli(),
		Retries:   0,
	}
}

// NewDeleteAction creates a pending deletion of a remote word.
func NewDeleteAction(wordID string) models.PendingAction {
	return newAction(models.ActionDeleteWord, models.DeletePayload{WordID: wordID})
}

// NewUpdateAction creates a pending partial update of a remote word.
func NewUpdateAction(wordID string, patch models.WordPatch) models.PendingAction {
	return newAction(models.ActionUpdateWord, models.UpdatePayload{WordID: wordID, Patch: patch})
}

// NewProgressAction creates a pending review-rating submission.
func NewProgressAction(userID, wordID string, rating int) models.PendingAction {
	return newAction(models.ActionUpdateProgress, models.ProgressPayload{
		UserID: userID,
		WordID: wordID,
		Rating: rating,
	})
}

// NewStartLearningAction creates a pending start-learning marker.
func NewStartLearningAction(userID, wordID string) models.PendingAction {
	return newAction(models.ActionStartLearning, models.StartLearningPayload{
		UserID: userID,
		WordID: wordID,
	})
}

// CanRetry reports whether the action has retry budget left.
func CanRetry(a models.PendingAction) bool {
	return a.Retries < MaxRetries
}

// IncrementRetries returns a copy of the action with the retry count bumped.
// The argument is not mutated.
func IncrementRetries(a models.PendingAction) models.PendingAction {
	a.Retries++
	return a
}

// IsExpired reports whether the action is older than maxAge. A zero maxAge
// means the default MaxAge.
func IsExpired(a models.PendingAction, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = MaxAge
	}
	age := time.Now().UnixMilli() - a.Timestamp
	return age > maxAge.Milliseconds()
}

// FilterValid drops expired actions, preserving the order of the rest.
func FilterValid(actions []models.PendingAction, maxAge time.Duration) []models.PendingAction {
	valid := make([]models.PendingAction, 0, len(actions))
	for _, a := range actions {
		if !IsExpired(a, maxAge) {
			valid = append(valid, a)
		}
	}
	return valid
}
