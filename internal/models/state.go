package models

// OfflineState is the persisted on-device document: the cached word list,
// the timestamp of the last successful sync and the queue of pending
// mutations. It is stored as a single JSON value under a namespaced key.
type OfflineState struct {
	Words          []Word          `json:"words"`
	LastSync       int64           `json:"lastSync"`
	PendingActions []PendingAction `json:"pendingActions"`
}

// NewOfflineState returns a fresh empty document.
func NewOfflineState() *OfflineState {
	return &OfflineState{
		Words:          []Word{},
		PendingActions: []PendingAction{},
	}
}

// Clone returns a deep copy of the state so callers can mutate the copy
// without affecting the original.
func (s *OfflineState) Clone() *OfflineState {
	c := &OfflineState{
		Words:          make([]Word, len(s.Words)),
		LastSync:       s.LastSync,
		PendingActions: make([]PendingAction, len(s.PendingActions)),
	}
	copy(c.Words, s.Words)
	for i, a := range s.PendingActions {
		c.PendingActions[i] = a
		if a.Payload != nil {
			c.PendingActions[i].Payload = append([]byte(nil), a.Payload...)
		}
	}
	return c
}
