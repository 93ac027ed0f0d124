package models

import (
	"encoding/json"
	"testing"
)

// TestDecodePayloadValidation verifies required identifiers are enforced.
func TestDecodePayloadValidation(t *testing.T) {
	a := PendingAction{
		ID:      "a1",
		Type:    ActionDeleteWord,
		Payload: json.RawMessage(`{"word_id":"w1"}`),
	}

	var p DeletePayload
	if err := a.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if p.WordID != "w1" {
		t.Errorf("WordID = %s, want w1", p.WordID)
	}

	a.Payload = json.RawMessage(`{}`)
	if err := a.DecodePayload(&DeletePayload{}); err == nil {
		t.Error("Expected error for missing word_id")
	}

	a.Payload = nil
	if err := a.DecodePayload(&DeletePayload{}); err == nil {
		t.Error("Expected error for empty payload")
	}

	a.Payload = json.RawMessage(`"a string"`)
	if err := a.DecodePayload(&DeletePayload{}); err == nil {
		t.Error("Expected error for mismatched payload shape")
	}
}

// TestWordPatchApply verifies nil fields leave the word untouched.
func TestWordPatchApply(t *testing.T) {
	w := Word{
		ID:          "w1",
		Term:        "hund",
		Translation: "dog",
		Status:      StatusLearning,
	}

	translation := "hound"
	status := StatusLearned
	WordPatch{Translation: &translation, Status: &status}.Apply(&w)

	if w.Translation != "hound" || w.Status != StatusLearned {
		t.Errorf("Patch not applied: %+v", w)
	}
	if w.Term != "hund" || w.ID != "w1" {
		t.Errorf("Patch touched unpatched fields: %+v", w)
	}

	if !(WordPatch{}).IsEmpty() {
		t.Error("Zero patch should be empty")
	}
	if (WordPatch{Translation: &translation}).IsEmpty() {
		t.Error("Non-zero patch should not be empty")
	}
}

// TestOfflineStateClone verifies the clone is independent of the original.
func TestOfflineStateClone(t *testing.T) {
	s := NewOfflineState()
	s.Words = []Word{{ID: "w1", Term: "hund"}}
	s.PendingActions = []PendingAction{{
		ID:      "a1",
		Type:    ActionDeleteWord,
		Payload: json.RawMessage(`{"word_id":"w1"}`),
	}}

	c := s.Clone()
	c.Words[0].Term = "katze"
	c.PendingActions[0].Payload[2] = 'X'

	if s.Words[0].Term != "hund" {
		t.Error("Clone shares word storage with the original")
	}
	if string(s.PendingActions[0].Payload) != `{"word_id":"w1"}` {
		t.Error("Clone shares payload storage with the original")
	}
}
