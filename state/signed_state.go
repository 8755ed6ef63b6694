// Package state provides signed states, the reservation discipline that
// guards their lifecycle, and the components that hash, sign, collect and
// inspect them.
package state

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/matteriben/hedera-services/consensus"
	"github.com/matteriben/hedera-services/errors"
	"github.com/matteriben/hedera-services/event"
)

// SignedState is the platform state produced by handling one consensus
// round, together with the signatures collected for it.
type SignedState struct {
	Round int64
	Hash  event.Hash

	mu         sync.Mutex
	signatures map[int64][]byte
	complete   bool

	// reservations counts outstanding ReservedSignedState holders. The
	// state is disposed when it reaches zero.
	reservations atomic.Int64
	disposed     atomic.Bool
}

// NewSignedState creates an unsigned state for a round.
func NewSignedState(round int64) *SignedState {
	return &SignedState{
		Round:      round,
		signatures: make(map[int64][]byte),
	}
}

// AddSignature records one node's signature. Returns true if the state
// just became complete under the given threshold.
func (s *SignedState) AddSignature(nodeID int64, signature []byte, threshold int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.complete {
		return false
	}
	s.signatures[nodeID] = signature
	if len(s.signatures) >= threshold {
		s.complete = true
		return true
	}
	return false
}

// IsComplete reports whether enough signatures have been collected.
func (s *SignedState) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// SignatureCount returns the number of collected signatures.
func (s *SignedState) SignatureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.signatures)
}

// Reservations returns the number of outstanding reservations.
func (s *SignedState) Reservations() int64 {
	return s.reservations.Load()
}

// IsDisposed reports whether the last reservation has been released.
func (s *SignedState) IsDisposed() bool {
	return s.disposed.Load()
}

// dispose is called when the reservation count reaches zero.
func (s *SignedState) dispose() {
	s.disposed.Store(true)
}

// ReservedSignedState is one holder's reservation on a SignedState. The
// holder must call Close exactly once when done; GetAndReserve hands the
// same underlying state to an additional holder.
type ReservedSignedState struct {
	state    *SignedState
	released atomic.Bool
}

// NewReservedSignedState takes the first reservation on a state.
func NewReservedSignedState(state *SignedState) *ReservedSignedState {
	state.reservations.Add(1)
	return &ReservedSignedState{state: state}
}

// Get returns the underlying state. Panics if the reservation was already
// released: using a released reservation is a lifecycle bug.
func (r *ReservedSignedState) Get() *SignedState {
	if r.released.Load() {
		panic(errors.WrapFatal(
			fmt.Errorf("state for round %d", r.state.Round),
			"ReservedSignedState", "Get", "use after release"))
	}
	return r.state
}

// GetAndReserve takes an additional reservation on the underlying state,
// returning a new handle that must be closed independently.
func (r *ReservedSignedState) GetAndReserve() *ReservedSignedState {
	if r.released.Load() {
		panic(errors.WrapFatal(
			fmt.Errorf("state for round %d", r.state.Round),
			"ReservedSignedState", "GetAndReserve", "reserve after release"))
	}
	r.state.reservations.Add(1)
	return &ReservedSignedState{state: r.state}
}

// Close releases the reservation. Releasing twice panics. When the last
// reservation is released, the state is disposed.
func (r *ReservedSignedState) Close() {
	if !r.released.CompareAndSwap(false, true) {
		panic(errors.WrapFatal(
			fmt.Errorf("state for round %d", r.state.Round),
			"ReservedSignedState", "Close", "double release"))
	}
	if r.state.reservations.Add(-1) == 0 {
		r.state.dispose()
	}
}

// StateAndRound couples a reserved signed state with the consensus round
// that produced it. It is the combined output of the round handler and the
// state hasher.
type StateAndRound struct {
	State *ReservedSignedState
	Round *consensus.Round
}
