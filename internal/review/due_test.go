package review

import (
	"testing"
	"time"

	"github.com/yuchiaw/vocasync/internal/models"
)

func wordDueAt(id string, status models.WordStatus, at time.Time) models.Word {
	return models.Word{
		ID:             id,
		Term:           "term-" + id,
		Status:         status,
		NextReviewDate: at.Format(time.RFC3339),
	}
}

// TestCalculateDueWordsFilters verifies new words and unscheduled words are
// never due.
func TestCalculateDueWordsFilters(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	words := []models.Word{
		wordDueAt("w1", models.StatusNew, past),
		{ID: "w2", Status: models.StatusLearning},
		wordDueAt("w3", models.StatusLearning, past),
		wordDueAt("w4", models.StatusLearned, past),
		wordDueAt("w5", models.StatusLearning, time.Now().Add(time.Hour)),
	}

	due := CalculateDueWords(words, 0, "")

	if len(due) != 2 {
		t.Fatalf("Expected 2 due words, got %d", len(due))
	}
	for _, w := range due {
		if w.Status == models.StatusNew {
			t.Errorf("New word %s should never be due", w.ID)
		}
		if w.NextReviewDate == "" {
			t.Errorf("Word %s without schedule should never be due", w.ID)
		}
	}
}

// TestCalculateDueWordsOrder verifies the earliest-due-first ordering.
func TestCalculateDueWordsOrder(t *testing.T) {
	now := time.Now()
	words := []models.Word{
		wordDueAt("late", models.StatusLearning, now.Add(-1*time.Hour)),
		wordDueAt("early", models.StatusLearned, now.Add(-48*time.Hour)),
		wordDueAt("mid", models.StatusLearning, now.Add(-24*time.Hour)),
	}

	due := CalculateDueWords(words, 0, "")

	if len(due) != 3 {
		t.Fatalf("Expected 3 due words, got %d", len(due))
	}
	want := []string{"early", "mid", "late"}
	for i, id := range want {
		if due[i].ID != id {
			t.Errorf("Position %d = %s, want %s", i, due[i].ID, id)
		}
	}
}

// TestCalculateDueWordsLimit verifies truncation keeps the earliest-due
// entries.
func TestCalculateDueWordsLimit(t *testing.T) {
	now := time.Now()
	words := []models.Word{
		wordDueAt("w1", models.StatusLearning, now.Add(-1*time.Hour)),
		wordDueAt("w2", models.StatusLearning, now.Add(-3*time.Hour)),
		wordDueAt("w3", models.StatusLearning, now.Add(-2*time.Hour)),
	}

	due := CalculateDueWords(words, 2, "")

	if len(due) != 2 {
		t.Fatalf("Expected 2 due words, got %d", len(due))
	}
	if due[0].ID != "w2" || due[1].ID != "w3" {
		t.Errorf("Limit kept %s, %s; want w2, w3", due[0].ID, due[1].ID)
	}

	if got := len(CalculateDueWords(words, 10, "")); got != 3 {
		t.Errorf("Limit above due count returned %d words, want 3", got)
	}
}

// TestCalculateDueWordsMalformedDate verifies unparseable dates are skipped
// without failing.
func TestCalculateDueWordsMalformedDate(t *testing.T) {
	words := []models.Word{
		{ID: "bad", Status: models.StatusLearning, NextReviewDate: "not-a-date"},
		wordDueAt("good", models.StatusLearning, time.Now().Add(-time.Hour)),
	}

	due := CalculateDueWords(words, 0, "")

	if len(due) != 1 {
		t.Fatalf("Expected 1 due word, got %d", len(due))
	}
	if due[0].ID != "good" {
		t.Errorf("Expected good, got %s", due[0].ID)
	}
}

// TestCalculateDueWordsScope verifies group filtering including the
// ungrouped pseudo-scope.
func TestCalculateDueWordsScope(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	grouped := wordDueAt("g1", models.StatusLearning, past)
	grouped.GroupID = "travel"
	other := wordDueAt("g2", models.StatusLearning, past)
	other.GroupID = "food"
	loose := wordDueAt("g3", models.StatusLearning, past)
	words := []models.Word{grouped, other, loose}

	if got := CalculateDueWords(words, 0, "travel"); len(got) != 1 || got[0].ID != "g1" {
		t.Errorf("Scope travel returned %v", got)
	}
	if got := CalculateDueWords(words, 0, ScopeUngrouped); len(got) != 1 || got[0].ID != "g3" {
		t.Errorf("Ungrouped scope returned %v", got)
	}
	if got := CalculateDueWords(words, 0, ""); len(got) != 3 {
		t.Errorf("Empty scope returned %d words, want 3", len(got))
	}
}

// TestCalculateDueWordsEmptyInput verifies nil and empty inputs yield an
// empty list.
func TestCalculateDueWordsEmptyInput(t *testing.T) {
	if got := CalculateDueWords(nil, 0, ""); len(got) != 0 {
		t.Errorf("nil input returned %d words", len(got))
	}
	if got := CalculateDueWords([]models.Word{}, 5, "x"); len(got) != 0 {
		t.Errorf("empty input returned %d words", len(got))
	}
}

// TestCountDueWordsMatchesCalculate verifies the count is defined by the
// calculation for a range of inputs.
func TestCountDueWordsMatchesCalculate(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	inputs := [][]models.Word{
		nil,
		{},
		{wordDueAt("w1", models.StatusLearning, past)},
		{
			wordDueAt("w1", models.StatusNew, past),
			{ID: "w2", Status: models.StatusLearning, NextReviewDate: "garbage"},
			wordDueAt("w3", models.StatusLearned, past),
		},
	}

	for i, words := range inputs {
		want := len(CalculateDueWords(words, 0, ""))
		if got := CountDueWords(words, ""); got != want {
			t.Errorf("Input %d: CountDueWords = %d, calculate length = %d", i, got, want)
		}
	}
}
