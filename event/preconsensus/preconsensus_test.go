package preconsensus

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

func sequencedEvent(s *Sequencer) *event.Event {
	e := event.NewEvent(0, 1, 1)
	return s.AssignStreamSequenceNumber(e)
}

func TestSequencerAssignsDenseMonotonicNumbers(t *testing.T) {
	s := NewSequencer()
	for i := int64(0); i < 10; i++ {
		e := event.NewEvent(0, i, 1)
		require.Equal(t, event.NoStreamSequenceNumber, e.StreamSequenceNumber)
		s.AssignStreamSequenceNumber(e)
		assert.Equal(t, i, e.StreamSequenceNumber)
	}
}

func TestWriterReplayModeEventsImmediatelyDurable(t *testing.T) {
	w := NewDefaultWriter(testLogger())
	s := NewSequencer()

	durable, changed := w.WriteEvent(sequencedEvent(s))
	assert.True(t, changed)
	assert.Equal(t, int64(0), durable)

	durable, changed = w.WriteEvent(sequencedEvent(s))
	assert.True(t, changed)
	assert.Equal(t, int64(1), durable)
}

func TestWriterLiveModeRequiresFlush(t *testing.T) {
	w := NewDefaultWriter(testLogger())
	s := NewSequencer()
	w.BeginStreamingNewEvents()

	_, changed := w.WriteEvent(sequencedEvent(s))
	assert.False(t, changed, "live events are not durable until flushed")

	durable, changed := w.SubmitFlushRequest(0)
	assert.True(t, changed)
	assert.Equal(t, int64(0), durable)

	// A second request at or below the watermark is a no-op.
	_, changed = w.SubmitFlushRequest(0)
	assert.False(t, changed)
}

func TestWriterPendingFlushSatisfiedByLaterWrite(t *testing.T) {
	w := NewDefaultWriter(testLogger())
	s := NewSequencer()
	w.BeginStreamingNewEvents()

	// Flush request ahead of the stream: remembered, not satisfied.
	_, changed := w.SubmitFlushRequest(1)
	assert.False(t, changed)

	_, changed = w.WriteEvent(sequencedEvent(s)) // seq 0
	assert.False(t, changed)

	// The covering write triggers the pending flush.
	durable, changed := w.WriteEvent(sequencedEvent(s)) // seq 1
	assert.True(t, changed)
	assert.Equal(t, int64(1), durable)
}

func TestWriterRegisterDiscontinuityFlushes(t *testing.T) {
	w := NewDefaultWriter(testLogger())
	s := NewSequencer()
	w.BeginStreamingNewEvents()

	w.WriteEvent(sequencedEvent(s))
	w.WriteEvent(sequencedEvent(s))

	durable, changed := w.RegisterDiscontinuity(7)
	assert.True(t, changed)
	assert.Equal(t, int64(1), durable)
}

func roundWithKeystone(number int64, keystoneSeq int64) *consensus.Round {
	keystone := event.NewEvent(0, number, number)
	keystone.StreamSequenceNumber = keystoneSeq
	return &consensus.Round{
		Number:   number,
		Events:   []*event.Event{keystone},
		Keystone: keystone,
	}
}

func TestDurabilityBufferHoldsUntilKeystoneDurable(t *testing.T) {
	b := NewRoundDurabilityBuffer(testLogger(), time.Second)

	released := b.AddRound(roundWithKeystone(1, 5))
	assert.Empty(t, released, "round must be held until its keystone is durable")
	assert.Equal(t, 1, b.PendingRounds())

	released = b.SetLatestDurableSequenceNumber(4)
	assert.Empty(t, released)

	released = b.SetLatestDurableSequenceNumber(5)
	require.Len(t, released, 1)
	assert.Equal(t, int64(1), released[0].Number)
	assert.Equal(t, 0, b.PendingRounds())
}

func TestDurabilityBufferReleasesImmediatelyWhenAlreadyDurable(t *testing.T) {
	b := NewRoundDurabilityBuffer(testLogger(), time.Second)

	b.SetLatestDurableSequenceNumber(10)
	released := b.AddRound(roundWithKeystone(1, 3))
	require.Len(t, released, 1)
}

func TestDurabilityBufferReleasesInArrivalOrder(t *testing.T) {
	b := NewRoundDurabilityBuffer(testLogger(), time.Second)

	b.AddRound(roundWithKeystone(1, 2))
	b.AddRound(roundWithKeystone(2, 4))
	b.AddRound(roundWithKeystone(3, 6))

	released := b.SetLatestDurableSequenceNumber(5)
	require.Len(t, released, 2)
	assert.Equal(t, int64(1), released[0].Number)
	assert.Equal(t, int64(2), released[1].Number)
	assert.Equal(t, 1, b.PendingRounds())
}

func TestDurabilityBufferWatermarkNeverRegresses(t *testing.T) {
	b := NewRoundDurabilityBuffer(testLogger(), time.Second)

	b.SetLatestDurableSequenceNumber(10)
	b.SetLatestDurableSequenceNumber(3)
	assert.Equal(t, int64(10), b.LatestDurableSequenceNumber())
}

func TestDurabilityBufferClearDropsPendingRounds(t *testing.T) {
	b := NewRoundDurabilityBuffer(testLogger(), time.Second)

	b.AddRound(roundWithKeystone(1, 5))
	b.Clear()
	assert.Equal(t, 0, b.PendingRounds())

	// The dropped round must not resurface when durability advances.
	released := b.SetLatestDurableSequenceNumber(100)
	assert.Empty(t, released)
}

func TestDurabilityBufferStaleRoundDetection(t *testing.T) {
	b := NewRoundDurabilityBuffer(testLogger(), 10*time.Millisecond)

	b.AddRound(roundWithKeystone(1, 5))
	b.CheckForStaleRounds(time.Now())
	assert.Equal(t, int64(0), b.StaleRoundCount(), "fresh round must not be stale")

	b.CheckForStaleRounds(time.Now().Add(time.Second))
	assert.Equal(t, int64(1), b.StaleRoundCount())
}

func TestAssertRoundDurablePanicsOnViolation(t *testing.T) {
	round := roundWithKeystone(1, 5)
	require.Panics(t, func() { assertRoundDurable(round, 4) },
		"a round released without a durable keystone is an invariant breach")
	require.NotPanics(t, func() { assertRoundDurable(round, 5) })
}

func TestReplayerStreamsEventsThenSignalsDone(t *testing.T) {
	var replayed []*event.Event
	doneSignalled := false

	r := NewReplayer(testLogger(),
		func(e *event.Event) {
			if doneSignalled {
				t.Fatal("event emitted after done-streaming signal")
			}
			replayed = append(replayed, e)
		},
		func() { doneSignalled = true })

	events := []*event.Event{
		event.NewEvent(0, 1, 1),
		event.NewEvent(0, 2, 1),
	}
	r.ReplayEvents(NewSliceIterator(events))

	assert.Len(t, replayed, 2)
	assert.True(t, doneSignalled)
	assert.Equal(t, int64(2), r.ReplayedCount())
}
