package consensus

import (
	"sync"

	"github.com/matteriben/hedera-services/event"
)

// WindowManager derives event windows from consensus rounds and fans the
// latest window out to every intake component. It runs on a
// DIRECT_THREADSAFE scheduler: window updates arrive both from the
// consensus engine and from out-of-band reconnect overrides.
type WindowManager struct {
	mu     sync.Mutex
	latest event.Window
}

// NewWindowManager creates a manager holding the genesis window.
func NewWindowManager(mode event.AncientMode) *WindowManager {
	return &WindowManager{latest: event.Genesis(mode)}
}

// ExtractEventWindow records and returns the window derived from a round.
func (m *WindowManager) ExtractEventWindow(round *Round) event.Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = round.Window
	return m.latest
}

// UpdateEventWindow overrides the window out of band, at restart and
// reconnect boundaries.
func (m *WindowManager) UpdateEventWindow(window event.Window) event.Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = window
	return m.latest
}

// Latest returns the most recent window.
func (m *WindowManager) Latest() event.Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}
