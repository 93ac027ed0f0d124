// Package connectivity observes online/offline transitions and fans them
// out to subscribers. The actual network signal is an external primitive;
// whatever layer owns it reports transitions through Monitor.SetOnline.
package connectivity

import (
	"sync"

	"github.com/yuchiaw/vocasync/internal/logging"
)

// Oracle answers the synchronous "are we online right now" question.
type Oracle interface {
	IsOnline() bool
}

// Monitor is a flag-backed Oracle with observer lists for transitions.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	onOnline  map[int]func()
	onOffline map[int]func()
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online:    online,
		onOnline:  make(map[int]func()),
		onOffline: make(map[int]func()),
	}
}

// IsOnline implements Oracle.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records the current connectivity and notifies subscribers on a
// transition. Repeated reports of the same state are ignored.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	var handlers []func()
	if online {
		for _, fn := range m.onOnline {
			handlers = append(handlers, fn)
		}
	} else {
		for _, fn := range m.onOffline {
			handlers = append(handlers, fn)
		}
	}
	m.mu.Unlock()

	logging.Info("Connectivity changed", map[string]interface{}{"online": online})
	for _, fn := range handlers {
		invoke(fn)
	}
}

// OnOnline subscribes to became-online transitions. The returned function
// unsubscribes.
func (m *Monitor) OnOnline(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.onOnline[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.onOnline, id)
	}
}

// OnOffline subscribes to became-offline transitions. The returned function
// unsubscribes.
func (m *Monitor) OnOffline(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.onOffline[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.onOffline, id)
	}
}

// invoke runs a handler, containing panics so one failing subscriber
// cannot suppress delivery to the rest.
func invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Connectivity handler panicked", nil, map[string]interface{}{
				"panic": r,
			})
		}
	}()
	fn()
}
