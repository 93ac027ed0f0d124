package store

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/yuchiaw/vocasync/internal/action"
	"github.com/yuchiaw/vocasync/internal/db"
	apperrors "github.com/yuchiaw/vocasync/internal/errors"
	"github.com/yuchiaw/vocasync/internal/logging"
	"github.com/yuchiaw/vocasync/internal/models"
)

// Config controls the store's pruning limits and key namespace.
type Config struct {
	// Namespace prefixes every storage key.
	Namespace string

	// MaxActions caps the pending-action queue. On overflow the
	// newest-by-timestamp entries are kept.
	MaxActions int

	// MaxActionAge is how long an action may stay queued before it is
	// silently dropped on read.
	MaxActionAge time.Duration

	// MaxDocumentBytes is the durable backend's write quota. Zero means
	// unlimited.
	MaxDocumentBytes int
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		Namespace:        "vocasync",
		MaxActions:       1000,
		MaxActionAge:     action.MaxAge,
		MaxDocumentBytes: 0,
	}
}

// Store is the single point of truth for on-device persistence of the
// offline state document. All mutations are atomic read-modify-writes.
type Store struct {
	mu      sync.Mutex
	backend Backend
	mem     *MemoryBackend // non-nil when running on the fallback
	cfg     Config
	userID  string
}

// New opens the durable backend under dataDir. If the capability probe
// fails the store silently switches to an in-memory fallback; every
// operation still works, but SetState reports false to signal "not durably
// persisted".
func New(dataDir string, cfg Config) *Store {
	if cfg.Namespace == "" {
		cfg.Namespace = "vocasync"
	}
	if cfg.MaxActions <= 0 {
		cfg.MaxActions = 1000
	}
	if cfg.MaxActionAge <= 0 {
		cfg.MaxActionAge = action.MaxAge
	}

	s := &Store{cfg: cfg}

	database, err := db.Open(dataDir)
	if err == nil {
		var backend *SQLiteBackend
		backend, err = NewSQLiteBackend(database, cfg.MaxDocumentBytes)
		if err == nil {
			s.backend = backend
			return s
		}
		database.Close()
	}

	logging.Warn("Storage unavailable, using in-memory fallback", map[string]interface{}{
		"error": err.Error(),
	})
	s.mem = NewMemoryBackend()
	s.backend = s.mem
	return s
}

// NewWithBackend builds a store over an explicit backend. durable controls
// what SetState reports on success.
func NewWithBackend(backend Backend, durable bool, cfg Config) *Store {
	if cfg.Namespace == "" {
		cfg.Namespace = "vocasync"
	}
	if cfg.MaxActions <= 0 {
		cfg.MaxActions = 1000
	}
	if cfg.MaxActionAge <= 0 {
		cfg.MaxActionAge = action.MaxAge
	}
	s := &Store{backend: backend, cfg: cfg}
	if !durable {
		if mem, ok := backend.(*MemoryBackend); ok {
			s.mem = mem
		} else {
			s.mem = NewMemoryBackend()
		}
	}
	return s
}

// Durable reports whether writes reach persistent storage.
func (s *Store) Durable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem == nil
}

// SetActiveUser switches the storage key to the given user identifier (or
// back to the anonymous key when id is empty) and resets the in-memory
// fallback so a previous session's data cannot leak across accounts.
func (s *Store) SetActiveUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = id
	if s.mem != nil {
		s.mem.Reset()
	}
}

// key returns the namespaced storage key, suffixed with the active user.
func (s *Store) key() string {
	k := s.cfg.Namespace + ":offline_state"
	if s.userID != "" {
		k += ":" + s.userID
	}
	return k
}

// GetState returns the stored document, or a fresh empty one when storage
// is absent or corrupt. Expired pending actions are filtered out before
// returning; a parse failure is logged, never propagated.
func (s *Store) GetState() *models.OfflineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getStateLocked()
}

func (s *Store) getStateLocked() *models.OfflineState {
	raw, err := s.backend.Get(s.key())
	if err != nil {
		logging.Error("Failed to read offline state", err, map[string]interface{}{
			"key": s.key(),
		})
		return models.NewOfflineState()
	}
	if raw == nil {
		return models.NewOfflineState()
	}

	state := models.NewOfflineState()
	if err := json.Unmarshal(raw, state); err != nil {
		logging.Warn("Offline state is corrupt, starting fresh", map[string]interface{}{
			"key":   s.key(),
			"error": err.Error(),
		})
		return models.NewOfflineState()
	}
	if state.Words == nil {
		state.Words = []models.Word{}
	}
	state.PendingActions = action.FilterValid(state.PendingActions, s.cfg.MaxActionAge)
	return state
}

// SetState persists the document after applying the age and size limits.
// On a quota failure the queue is pruned to roughly 10% of the cap (newest
// first), a stale word cache is dropped, and the write is retried exactly
// once. Returns false without throwing if the retry still fails, and in
// fallback mode where nothing is durably persisted.
func (s *Store) SetState(state *models.OfflineState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStateLocked(state)
}

func (s *Store) setStateLocked(state *models.OfflineState) bool {
	doc := state.Clone()
	doc.PendingActions = action.FilterValid(doc.PendingActions, s.cfg.MaxActionAge)
	doc.PendingActions = capNewest(doc.PendingActions, s.cfg.MaxActions)

	raw, err := json.Marshal(doc)
	if err != nil {
		logging.Error("Failed to encode offline state", err, nil)
		return false
	}

	err = s.backend.Set(s.key(), raw)
	if err == nil {
		return s.mem == nil
	}
	if !apperrors.Is(err, apperrors.ErrQuotaExceeded) {
		logging.Error("Failed to write offline state", err, map[string]interface{}{
			"key": s.key(),
		})
		return false
	}

	// Over quota: keep only the newest slice of the queue, and if the last
	// successful sync is stale the cached words are droppable too since the
	// next sync refreshes them in full.
	doc.PendingActions = capNewest(doc.PendingActions, s.cfg.MaxActions/10)
	staleCutoff := time.Now().Add(-s.cfg.MaxActionAge).UnixMilli()
	if doc.LastSync < staleCutoff {
		doc.Words = []models.Word{}
	}
	logging.Warn("Storage quota exceeded, pruned offline state", map[string]interface{}{
		"kept_actions": len(doc.PendingActions),
		"kept_words":   len(doc.Words),
	})

	raw, err = json.Marshal(doc)
	if err != nil {
		logging.Error("Failed to encode pruned offline state", err, nil)
		return false
	}
	if err := s.backend.Set(s.key(), raw); err != nil {
		logging.Error("Retry write failed after pruning", err, map[string]interface{}{
			"key": s.key(),
		})
		return false
	}
	return s.mem == nil
}

// UpdateState reads the current document, applies fn and persists the result.
func (s *Store) UpdateState(fn func(*models.OfflineState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.getStateLocked()
	fn(state)
	return s.setStateLocked(state)
}

// capNewest keeps at most max actions, preferring the newest by timestamp,
// preserving their relative order.
func capNewest(actions []models.PendingAction, max int) []models.PendingAction {
	if max <= 0 || len(actions) <= max {
		return actions
	}
	kept := make([]models.PendingAction, len(actions))
	copy(kept, actions)
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Timestamp < kept[j].Timestamp
	})
	return kept[len(kept)-max:]
}

// GetWords returns the cached word list.
func (s *Store) GetWords() []models.Word {
	return s.GetState().Words
}

// SetWords replaces the cached word list and stamps lastSync.
func (s *Store) SetWords(words []models.Word) bool {
	return s.UpdateState(func(state *models.OfflineState) {
		state.Words = words
		state.LastSync = time.Now().UnixMilli()
	})
}

// UpdateWord merges the patch into the matching word only; all other words
// are left untouched. No-op when the id is unknown.
func (s *Store) UpdateWord(id string, patch models.WordPatch) bool {
	return s.UpdateState(func(state *models.OfflineState) {
		for i := range state.Words {
			if state.Words[i].ID == id {
				patch.Apply(&state.Words[i])
				return
			}
		}
	})
}

// DeleteWord removes the word with the given id from the cache.
func (s *Store) DeleteWord(id string) bool {
	return s.UpdateState(func(state *models.OfflineState) {
		words := state.Words[:0]
		for _, w := range state.Words {
			if w.ID != id {
				words = append(words, w)
			}
		}
		state.Words = words
	})
}

// GetPendingActions returns the queued actions in FIFO order, already
// filtered for expiry.
func (s *Store) GetPendingActions() []models.PendingAction {
	return s.GetState().PendingActions
}

// AddAction appends an action to the queue.
func (s *Store) AddAction(a models.PendingAction) bool {
	return s.UpdateState(func(state *models.OfflineState) {
		state.PendingActions = append(state.PendingActions, a)
	})
}

// RemoveAction removes only the targeted action; siblings are untouched.
func (s *Store) RemoveAction(id string) bool {
	return s.UpdateState(func(state *models.OfflineState) {
		actions := state.PendingActions[:0]
		for _, a := range state.PendingActions {
			if a.ID != id {
				actions = append(actions, a)
			}
		}
		state.PendingActions = actions
	})
}

// UpdateAction replaces the matching action with fn's result. No-op when
// the id is not found.
func (s *Store) UpdateAction(id string, fn func(models.PendingAction) models.PendingAction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.getStateLocked()
	for i := range state.PendingActions {
		if state.PendingActions[i].ID == id {
			state.PendingActions[i] = fn(state.PendingActions[i])
			return s.setStateLocked(state)
		}
	}
	return true
}

// ClearAll removes the persisted document for the active key. Used on
// sign-out together with SetActiveUser.
func (s *Store) ClearAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(s.key()); err != nil {
		logging.Error("Failed to clear offline state", err, map[string]interface{}{
			"key": s.key(),
		})
		return false
	}
	return true
}
