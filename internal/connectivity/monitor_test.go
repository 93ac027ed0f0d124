package connectivity

import "testing"

// TestMonitorTransitions verifies handlers fire only on real transitions.
func TestMonitorTransitions(t *testing.T) {
	m := NewMonitor(false)

	var online, offline int
	m.OnOnline(func() { online++ })
	m.OnOffline(func() { offline++ })

	m.SetOnline(false) // no transition
	m.SetOnline(true)
	m.SetOnline(true) // no transition
	m.SetOnline(false)

	if online != 1 {
		t.Errorf("online handler fired %d times, want 1", online)
	}
	if offline != 1 {
		t.Errorf("offline handler fired %d times, want 1", offline)
	}
	if m.IsOnline() {
		t.Error("IsOnline = true, want false")
	}
}

// TestMonitorUnsubscribe verifies the returned token stops delivery.
func TestMonitorUnsubscribe(t *testing.T) {
	m := NewMonitor(false)

	var calls int
	unsubscribe := m.OnOnline(func() { calls++ })
	unsubscribe()

	m.SetOnline(true)

	if calls != 0 {
		t.Errorf("Unsubscribed handler fired %d times", calls)
	}
}

// TestMonitorPanicIsolation verifies one panicking handler cannot suppress
// the rest.
func TestMonitorPanicIsolation(t *testing.T) {
	m := NewMonitor(false)

	m.OnOnline(func() { panic("handler bug") })
	var called bool
	m.OnOnline(func() { called = true })

	m.SetOnline(true)

	if !called {
		t.Error("Second handler was not invoked after a sibling panicked")
	}
}
