package state

import (
	"sync"

	"github.com/matteriben/hedera-services/event"
)

// Nexus is a thread-safe holder of the latest signed state of some kind.
// Nexus components run on DIRECT_THREADSAFE schedulers so callers on any
// goroutine observe a consistent latest state.
type Nexus struct {
	mu      sync.Mutex
	current *ReservedSignedState
}

// NewNexus creates an empty nexus.
func NewNexus() *Nexus {
	return &Nexus{}
}

// SetState replaces the held state, releasing the previous reservation.
// The nexus takes ownership of the supplied reservation.
func (n *Nexus) SetState(rs *ReservedSignedState) {
	n.mu.Lock()
	previous := n.current
	n.current = rs
	n.mu.Unlock()
	if previous != nil {
		previous.Close()
	}
}

// GetState returns a fresh reservation on the held state, or nil if none
// is held. The caller must close it.
func (n *Nexus) GetState() *ReservedSignedState {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	return n.current.GetAndReserve()
}

// Round returns the held state's round, or -1 if none is held.
func (n *Nexus) Round() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return -1
	}
	return n.current.Get().Round
}

// Clear releases and drops the held state.
func (n *Nexus) Clear() {
	n.SetState(nil)
}

// LatestCompleteStateNexus tracks the newest fully signed state, rejecting
// states older than the one held and dropping states that fall out of the
// event window.
type LatestCompleteStateNexus struct {
	nexus Nexus
}

// NewLatestCompleteStateNexus creates an empty complete-state nexus.
func NewLatestCompleteStateNexus() *LatestCompleteStateNexus {
	return &LatestCompleteStateNexus{}
}

// SetStateIfNewer holds the state only if it is newer than the current
// one; otherwise the reservation is released immediately.
func (n *LatestCompleteStateNexus) SetStateIfNewer(rs *ReservedSignedState) {
	if rs.Get().Round > n.nexus.Round() {
		n.nexus.SetState(rs)
	} else {
		rs.Close()
	}
}

// completeStateRetentionRounds bounds how far the held complete state may
// trail consensus before it is dropped.
const completeStateRetentionRounds = 10

// UpdateEventWindow drops the held state once it trails consensus by more
// than the retention bound, freeing its reservation without waiting for a
// newer complete state.
func (n *LatestCompleteStateNexus) UpdateEventWindow(window event.Window) {
	round := n.nexus.Round()
	if round >= 0 && round+completeStateRetentionRounds < window.LatestConsensusRound {
		n.nexus.Clear()
	}
}

// GetState returns a fresh reservation on the held state, or nil.
func (n *LatestCompleteStateNexus) GetState() *ReservedSignedState {
	return n.nexus.GetState()
}

// Round returns the held state's round, or -1.
func (n *LatestCompleteStateNexus) Round() int64 {
	return n.nexus.Round()
}

// Clear releases and drops the held state.
func (n *LatestCompleteStateNexus) Clear() {
	n.nexus.Clear()
}
