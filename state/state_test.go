package state

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteriben/hedera-services/consensus"
	"github.com/matteriben/hedera-services/event"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reservedState(round int64) *ReservedSignedState {
	return NewReservedSignedState(NewSignedState(round))
}

func testStateAndRound(round int64) StateAndRound {
	keystone := event.NewEvent(0, round, round)
	keystone.Hash = keystone.ComputeHash()
	return StateAndRound{
		State: reservedState(round),
		Round: &consensus.Round{
			Number:   round,
			Events:   []*event.Event{keystone},
			Keystone: keystone,
		},
	}
}

func TestReservationLifecycle(t *testing.T) {
	rs := reservedState(1)
	signedState := rs.Get()
	assert.Equal(t, int64(1), signedState.Reservations())

	second := rs.GetAndReserve()
	assert.Equal(t, int64(2), signedState.Reservations())

	rs.Close()
	assert.Equal(t, int64(1), signedState.Reservations())
	assert.False(t, signedState.IsDisposed())

	second.Close()
	assert.Equal(t, int64(0), signedState.Reservations())
	assert.True(t, signedState.IsDisposed(), "last release disposes the state")
}

func TestDoubleReleasePanics(t *testing.T) {
	rs := reservedState(1)
	rs.Close()
	require.Panics(t, func() { rs.Close() })
}

func TestUseAfterReleasePanics(t *testing.T) {
	rs := reservedState(1)
	rs.Close()
	require.Panics(t, func() { rs.Get() })
	require.Panics(t, func() { rs.GetAndReserve() })
}

func TestSignedStateCompletion(t *testing.T) {
	s := NewSignedState(1)

	assert.False(t, s.AddSignature(1, []byte("a"), 2))
	assert.False(t, s.IsComplete())
	assert.True(t, s.AddSignature(2, []byte("b"), 2), "threshold reached")
	assert.True(t, s.IsComplete())
	assert.False(t, s.AddSignature(3, []byte("c"), 2), "already complete")
}

func TestSignedStateReserver(t *testing.T) {
	reserver := NewSignedStateReserver("test")
	rs := reservedState(1)

	extra := reserver.Transform(rs)
	assert.Equal(t, int64(2), rs.Get().Reservations())

	reserver.Dispose(extra)
	rs.Close()
	assert.True(t, rs.state.IsDisposed())
}

func TestStateAndRoundReserver(t *testing.T) {
	reserver := NewStateAndRoundReserver()
	sar := testStateAndRound(1)

	extra := reserver.Transform(sar)
	assert.Same(t, sar.Round, extra.Round)
	assert.Equal(t, int64(2), sar.State.Get().Reservations())

	reserver.Dispose(extra)
	sar.State.Close()
}

func TestHasherComputesStateHash(t *testing.T) {
	h := NewHasher(testLogger())
	sar := testStateAndRound(4)

	out := h.HashState(sar)
	assert.False(t, out.State.Get().Hash.IsZero())

	// Same round content hashes identically.
	again := testStateAndRound(4)
	again.Round = sar.Round
	h.HashState(again)
	assert.Equal(t, out.State.Get().Hash, again.State.Get().Hash)
}

func TestSignatureCollectorCompletesState(t *testing.T) {
	c := NewSignatureCollector(testLogger(), 2)

	rs := reservedState(1)
	completed := c.AddReservedState(rs)
	assert.Empty(t, completed)

	completed = c.HandlePreconsensusSignatures([]event.StateSignature{
		{Round: 1, NodeID: 1, Signature: []byte("a")},
	})
	assert.Empty(t, completed)

	completed = c.HandlePostconsensusSignatures([]event.StateSignature{
		{Round: 1, NodeID: 2, Signature: []byte("b")},
	})
	require.Len(t, completed, 1)
	assert.True(t, completed[0].Get().IsComplete())
	assert.Equal(t, 0, c.HeldStates())

	// Ownership of the reservation moved downstream.
	completed[0].Close()
}

func TestSignatureCollectorBuffersEarlySignatures(t *testing.T) {
	c := NewSignatureCollector(testLogger(), 1)

	// Signature arrives before its state.
	completed := c.HandlePreconsensusSignatures([]event.StateSignature{
		{Round: 3, NodeID: 1, Signature: []byte("a")},
	})
	assert.Empty(t, completed)

	completed = c.AddReservedState(reservedState(3))
	require.Len(t, completed, 1, "early signature must complete the state on arrival")
	completed[0].Close()
}

func TestSignatureCollectorClearReleasesReservations(t *testing.T) {
	c := NewSignatureCollector(testLogger(), 5)

	rs := reservedState(1)
	signedState := rs.Get()
	c.AddReservedState(rs)

	c.Clear()
	assert.Equal(t, 0, c.HeldStates())
	assert.True(t, signedState.IsDisposed(), "clear must release held reservations")
}

func TestNexusHoldsLatestState(t *testing.T) {
	n := NewNexus()
	assert.Nil(t, n.GetState())
	assert.Equal(t, int64(-1), n.Round())

	first := reservedState(1)
	firstState := first.Get()
	n.SetState(first)
	assert.Equal(t, int64(1), n.Round())

	second := reservedState(2)
	n.SetState(second)
	assert.True(t, firstState.IsDisposed(), "replaced state must be released")

	borrowed := n.GetState()
	require.NotNil(t, borrowed)
	assert.Equal(t, int64(2), borrowed.Get().Round)
	borrowed.Close()

	n.Clear()
	assert.Equal(t, int64(-1), n.Round())
}

func TestLatestCompleteNexusRejectsOlderStates(t *testing.T) {
	n := NewLatestCompleteStateNexus()

	newer := reservedState(5)
	n.SetStateIfNewer(newer)
	require.Equal(t, int64(5), n.Round())

	older := reservedState(3)
	olderState := older.Get()
	n.SetStateIfNewer(older)
	assert.Equal(t, int64(5), n.Round())
	assert.True(t, olderState.IsDisposed(), "rejected state must be released")
}

func TestLatestCompleteNexusWindowExpiry(t *testing.T) {
	n := NewLatestCompleteStateNexus()
	held := reservedState(1)
	heldState := held.Get()
	n.SetStateIfNewer(held)

	n.UpdateEventWindow(event.Window{LatestConsensusRound: 50})
	assert.Equal(t, int64(-1), n.Round())
	assert.True(t, heldState.IsDisposed())
}

func TestGarbageCollectorFlagsLeaks(t *testing.T) {
	gc := NewGarbageCollector(testLogger(), 2)

	leaky := testStateAndRound(1)
	extra := leaky.State.GetAndReserve() // simulated leak: never closed
	gc.RegisterState(leaky)

	// Advance rounds past retention.
	gc.RegisterState(testStateAndRound(5))
	gc.Heartbeat(time.Now())

	assert.Equal(t, int64(1), gc.LeakCount())
	extra.Close()
}

func TestGarbageCollectorReleasesCleanStates(t *testing.T) {
	gc := NewGarbageCollector(testLogger(), 2)

	clean := testStateAndRound(1)
	signedState := clean.State.Get()
	gc.RegisterState(clean)
	gc.RegisterState(testStateAndRound(5))
	gc.Heartbeat(time.Now())

	assert.Equal(t, int64(0), gc.LeakCount())
	assert.True(t, signedState.IsDisposed())
	assert.Equal(t, 1, gc.RegisteredStates())
}

func TestIssDetectorReportsMismatch(t *testing.T) {
	d := NewIssDetector(testLogger(), 0)
	d.SignalEndOfPreconsensusReplay()

	// Round 1: remember our hash.
	first := testStateAndRound(1)
	first.State.Get().Hash = first.Round.Keystone.Hash
	notifications := d.HandleStateAndRound(first)
	assert.Empty(t, notifications)

	// Round 2 carries a signature for round 1 disagreeing with our hash.
	second := testStateAndRound(2)
	second.Round.Events[0].StateSignatures = []event.StateSignature{
		{Round: 1, NodeID: 3, Signature: []byte("disagreement")},
	}
	notifications = d.HandleStateAndRound(second)
	require.Len(t, notifications, 1)
	assert.Equal(t, OtherIss, notifications[0].Type)
	assert.Equal(t, int64(3), notifications[0].NodeID)
}

func TestIssDetectorAcceptsMatchingSignature(t *testing.T) {
	d := NewIssDetector(testLogger(), 0)
	d.SignalEndOfPreconsensusReplay()

	first := testStateAndRound(1)
	h := first.Round.Keystone.Hash
	first.State.Get().Hash = h
	d.HandleStateAndRound(first)

	second := testStateAndRound(2)
	second.Round.Events[0].StateSignatures = []event.StateSignature{
		{Round: 1, NodeID: 3, Signature: h[:]},
	}
	notifications := d.HandleStateAndRound(second)
	assert.Empty(t, notifications)
}

func TestIssDetectorSuppressedDuringReplay(t *testing.T) {
	d := NewIssDetector(testLogger(), 0)

	first := testStateAndRound(1)
	first.State.Get().Hash = first.Round.Keystone.Hash
	d.HandleStateAndRound(first)

	second := testStateAndRound(2)
	second.Round.Events[0].StateSignatures = []event.StateSignature{
		{Round: 1, NodeID: 3, Signature: []byte("disagreement")},
	}
	notifications := d.HandleStateAndRound(second)
	assert.Empty(t, notifications, "replay observations must not be reported")
}
