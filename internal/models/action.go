package models

import (
	"encoding/json"
	"fmt"
)

// ActionType discriminates the payload shape of a pending action.
type ActionType string

const (
	ActionDeleteWord     ActionType = "DELETE_WORD"
	ActionUpdateWord     ActionType = "UPDATE_WORD"
	ActionUpdateProgress ActionType = "UPDATE_PROGRESS"
	ActionStartLearning  ActionType = "START_LEARNING"
)

// PendingAction is a queued, not-yet-confirmed mutation awaiting remote
// application. Payload is the raw JSON variant determined by Type and is
// decoded at dispatch time.
type PendingAction struct {
	ID        string          `json:"id"`
	Type      ActionType      `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Retries   int             `json:"retries"`
}

// DeletePayload is the payload for ActionDeleteWord.
type DeletePayload struct {
	WordID string `json:"word_id"`
}

// UpdatePayload is the payload for ActionUpdateWord.
type UpdatePayload struct {
	WordID string    `json:"word_id"`
	Patch  WordPatch `json:"patch"`
}

// ProgressPayload is the payload for ActionUpdateProgress.
type ProgressPayload struct {
	UserID string `json:"user_id"`
	WordID string `json:"word_id"`
	Rating int    `json:"rating"`
}

// StartLearningPayload is the payload for ActionStartLearning.
type StartLearningPayload struct {
	UserID string `json:"user_id"`
	WordID string `json:"word_id"`
}

// DecodePayload unmarshals the raw payload into dst and validates that the
// required identifiers for the action's type are present.
func (a PendingAction) DecodePayload(dst interface{}) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("action %s has empty payload", a.ID)
	}
	if err := json.Unmarshal(a.Payload, dst); err != nil {
		return fmt.Errorf("action %s payload does not match type %s: %w", a.ID, a.Type, err)
	}
	switch p := dst.(type) {
	case *DeletePayload:
		if p.WordID == "" {
			return fmt.Errorf("action %s: missing word_id", a.ID)
		}
	case *UpdatePayload:
		if p.WordID == "" {
			return fmt.Errorf("action %s: missing word_id", a.ID)
		}
	case *ProgressPayload:
		if p.UserID == "" || p.WordID == "" {
			return fmt.Errorf("action %s: missing user_id or word_id", a.ID)
		}
	case *StartLearningPayload:
		if p.UserID == "" || p.WordID == "" {
			return fmt.Errorf("action %s: missing user_id or word_id", a.ID)
		}
	}
	return nil
}
