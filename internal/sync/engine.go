package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/yuchiaw/vocasync/internal/action"
	"github.com/yuchiaw/vocasync/internal/connectivity"
	apperrors "github.com/yuchiaw/vocasync/internal/errors"
	"github.com/yuchiaw/vocasync/internal/logging"
	"github.com/yuchiaw/vocasync/internal/models"
	"github.com/yuchiaw/vocasync/internal/telemetry"
)

// SyncResult reports the outcome of one drain of the pending-action queue.
// Success reflects the action loop only; a failed post-drain refresh is
// recorded in Errors without flipping it.
type SyncResult struct {
	Success     bool
	SyncedCount int
	FailedCount int
	Errors      []string
	Duration    time.Duration
}

// Engine drains pending actions sequentially against the remote services.
// Only one drain may run at a time; concurrent invocations are rejected,
// not queued.
type Engine struct {
	store    StateStore
	words    WordService
	progress ProgressService
	oracle   connectivity.Oracle

	running atomic.Bool

	mu        stdsync.Mutex
	nextID    int
	listeners map[int]func(bool)
}

// NewEngine creates an idle engine over the given collaborators.
func NewEngine(store StateStore, words WordService, progress ProgressService, oracle connectivity.Oracle) *Engine {
	return &Engine{
		store:     store,
		words:     words,
		progress:  progress,
		oracle:    oracle,
		listeners: make(map[int]func(bool)),
	}
}

// IsSyncing reports whether a drain is currently running.
func (e *Engine) IsSyncing() bool {
	return e.running.Load()
}

// AddSyncListener subscribes to drain lifecycle notifications: true when a
// drain starts, false when it finishes. The returned function unsubscribes.
func (e *Engine) AddSyncListener(fn func(syncing bool)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// notify delivers to every listener, containing panics so one failing
// listener cannot suppress delivery to the rest.
func (e *Engine) notify(syncing bool) {
	e.mu.Lock()
	fns := make([]func(bool), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Error("Sync listener panicked", nil, map[string]interface{}{
						"panic": r,
					})
				}
			}()
			fn(syncing)
		}()
	}
}

// SyncPendingActions drains the queue in FIFO order. Later edits to the
// same word must not race ahead of earlier ones, so actions are processed
// sequentially, never in parallel.
func (e *Engine) SyncPendingActions(ctx context.Context) (result SyncResult) {
	start := time.Now()

	if !e.running.CompareAndSwap(false, true) {
		return SyncResult{Success: false, Errors: []string{"Sync already in progress"}}
	}

	if !e.oracle.IsOnline() {
		e.running.Store(false)
		return SyncResult{Success: false, Errors: []string{"No internet connection"}}
	}

	pending := e.store.GetPendingActions()
	if len(pending) == 0 {
		e.running.Store(false)
		return SyncResult{Success: true}
	}

	e.notify(true)
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Sync drain panicked", nil, map[string]interface{}{"panic": r})
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("internal error: %v", r))
		}
		result.Duration = time.Since(start)
		telemetry.RecordTiming("sync.duration", result.Duration, nil)
		e.running.Store(false)
		e.notify(false)
	}()

	logging.Info("Sync started", map[string]interface{}{"pending": len(pending)})

	for _, a := range pending {
		if !action.CanRetry(a) {
			// Out of retry budget; leave it queued until expiry prunes it.
			logging.Debug("Skipping action with exhausted retries", map[string]interface{}{
				"action_id": a.ID,
				"type":      string(a.Type),
			})
			continue
		}

		err := e.dispatch(ctx, a)
		if err == nil {
			e.store.RemoveAction(a.ID)
			result.SyncedCount++
			continue
		}

		// A remote update whose target is already gone is a benign no-op:
		// the remote deletion achieved the same end state.
		if a.Type == models.ActionUpdateWord && apperrors.Is(err, apperrors.ErrNotFound) {
			logging.Info("Update target already deleted remotely, dropping action", map[string]interface{}{
				"action_id": a.ID,
			})
			e.store.RemoveAction(a.ID)
			result.SyncedCount++
			continue
		}

		e.store.UpdateAction(a.ID, action.IncrementRetries)
		result.FailedCount++
		result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", a.Type, a.ID, err))
		logging.Warn("Action failed, kept queued", map[string]interface{}{
			"action_id": a.ID,
			"type":      string(a.Type),
			"retries":   a.Retries + 1,
			"error":     err.Error(),
		})
		telemetry.TrackError(err, map[string]interface{}{"action_type": string(a.Type)})
	}

	// One full refresh from the source of truth. Its failure is soft: the
	// drain outcome stands on the action loop alone.
	if words, err := e.words.ListAll(ctx); err != nil {
		result.Errors = append(result.Errors,
			apperrors.Wrap(apperrors.ErrRefreshFailed, "post-sync refresh failed", err).Error())
		logging.Warn("Post-sync refresh failed", map[string]interface{}{"error": err.Error()})
	} else {
		e.store.SetWords(words)
	}

	result.Success = result.FailedCount == 0
	logging.Info("Sync finished", map[string]interface{}{
		"synced": result.SyncedCount,
		"failed": result.FailedCount,
	})
	telemetry.RecordCount("sync.synced", result.SyncedCount, nil)
	telemetry.RecordCount("sync.failed", result.FailedCount, nil)
	return result
}

// dispatch decodes the action's payload and invokes the matching remote
// operation. A payload that does not match the declared type fails only
// this action.
func (e *Engine) dispatch(ctx context.Context, a models.PendingAction) error {
	switch a.Type {
	case models.ActionDeleteWord:
		var p models.DeletePayload
		if err := a.DecodePayload(&p); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidPayload, "malformed delete payload", err)
		}
		return e.words.Delete(ctx, p.WordID)

	case models.ActionUpdateWord:
		var p models.UpdatePayload
		if err := a.DecodePayload(&p); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidPayload, "malformed update payload", err)
		}
		_, err := e.words.Update(ctx, p.WordID, p.Patch)
		return err

	case models.ActionUpdateProgress:
		var p models.ProgressPayload
		if err := a.DecodePayload(&p); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidPayload, "malformed progress payload", err)
		}
		_, err := e.progress.RecordReview(ctx, p.UserID, p.WordID, p.Rating)
		return err

	case models.ActionStartLearning:
		var p models.StartLearningPayload
		if err := a.DecodePayload(&p); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidPayload, "malformed start-learning payload", err)
		}
		return e.progress.StartLearning(ctx, p.UserID, p.WordID)

	default:
		return apperrors.New(apperrors.ErrInvalidPayload,
			fmt.Sprintf("unknown action type %q", a.Type))
	}
}

// LoadInitialData returns the word list for session start: fresh from the
// remote when online, the local cache otherwise. Fails with NO_DATA only
// when neither source yields anything.
func (e *Engine) LoadInitialData(ctx context.Context) ([]models.Word, error) {
	if e.oracle.IsOnline() {
		words, err := e.words.ListAll(ctx)
		if err == nil {
			e.store.SetWords(words)
			return words, nil
		}
		logging.Warn("Remote fetch failed, falling back to cache", map[string]interface{}{
			"error": err.Error(),
		})
	}

	cached := e.store.GetWords()
	if len(cached) > 0 {
		return cached, nil
	}
	return nil, apperrors.New(apperrors.ErrNoData, "no data available")
}

// AttachConnectivity wires the engine to a monitor: becoming online
// triggers a fire-and-forget drain when anything is queued; becoming
// offline is only logged. The returned function detaches both handlers.
func (e *Engine) AttachConnectivity(m *connectivity.Monitor) func() {
	offOnline := m.OnOnline(func() {
		if len(e.store.GetPendingActions()) == 0 {
			return
		}
		go e.SyncPendingActions(context.Background())
	})
	offOffline := m.OnOffline(func() {
		logging.Info("Offline; mutations will queue until connectivity returns", nil)
	})
	return func() {
		offOnline()
		offOffline()
	}
}
