package preconsensus

import (
	"log/slog"
	"sync/atomic"

	"github.com/matteriben/hedera-services/event"
)

// Writer is the contract the core consumes from the PCES writer. Outputs
// are latest-durable sequence numbers, emitted whenever the durable
// watermark advances; the watermark is monotonically non-decreasing.
type Writer interface {
	// WriteEvent appends an event to the stream. The second return
	// value reports whether the durable watermark advanced.
	WriteEvent(e *event.Event) (int64, bool)

	// SubmitFlushRequest asks that the stream be durable through the
	// given sequence number.
	SubmitFlushRequest(sequenceNumber int64) (int64, bool)

	// SetMinimumAncientIdentifierToStore prunes the stream below the
	// given ancient identifier.
	SetMinimumAncientIdentifierToStore(identifier int64)

	// UpdateNonAncientEventBoundary advances the writer's view of the
	// ancient boundary.
	UpdateNonAncientEventBoundary(window event.Window)

	// BeginStreamingNewEvents switches the writer from replay mode to
	// live mode. Events written during replay are already durable.
	BeginStreamingNewEvents()

	// RegisterDiscontinuity records a break in the stream at the given
	// round.
	RegisterDiscontinuity(round int64) (int64, bool)
}

// DefaultWriter is the reference in-memory writer. It buffers written
// events and advances its durable watermark when a flush request covers
// them, mirroring how the file-backed writer syncs segments on flush. The
// on-disk format itself lives outside this repository.
type DefaultWriter struct {
	logger *slog.Logger

	// streaming is false during replay, when written events are already
	// durable.
	streaming bool

	// highestWritten is the greatest sequence number written so far.
	highestWritten int64

	// latestDurable is the durable watermark, atomic so live observers
	// can read it while the writer's scheduler runs.
	latestDurable atomic.Int64

	// pendingFlush is the greatest requested-but-unsatisfied flush
	// sequence number.
	pendingFlush int64

	// buffered are events written since the last flush, by sequence.
	buffered map[int64]*event.Event

	minimumAncientIdentifier int64
}

var _ Writer = (*DefaultWriter)(nil)

// NewDefaultWriter creates a writer in replay mode.
func NewDefaultWriter(logger *slog.Logger) *DefaultWriter {
	w := &DefaultWriter{
		logger:         logger,
		highestWritten: -1,
		pendingFlush:   -1,
		buffered:       make(map[int64]*event.Event),
	}
	w.latestDurable.Store(-1)
	return w
}

// WriteEvent appends an event to the stream. During replay the event is
// immediately durable; in live mode it becomes durable on the next
// covering flush. A pending flush request that the event satisfies
// triggers the flush here: this is what lets a flush request submitted
// ahead of the event take effect the moment the event lands.
func (w *DefaultWriter) WriteEvent(e *event.Event) (int64, bool) {
	seq := e.StreamSequenceNumber
	if seq == event.NoStreamSequenceNumber {
		w.logger.Error("unsequenced event reached the writer", "event", e.String())
		return w.latestDurable.Load(), false
	}
	if seq > w.highestWritten {
		w.highestWritten = seq
	}

	if !w.streaming {
		return w.advanceDurable(seq)
	}

	w.buffered[seq] = e
	if w.pendingFlush >= 0 && seq >= w.pendingFlush {
		w.pendingFlush = -1
		return w.flushThrough(w.highestWritten)
	}
	return w.latestDurable.Load(), false
}

// SubmitFlushRequest makes the stream durable through sequenceNumber. A
// request beyond what has been written is remembered and satisfied by the
// write that covers it.
func (w *DefaultWriter) SubmitFlushRequest(sequenceNumber int64) (int64, bool) {
	if sequenceNumber <= w.latestDurable.Load() {
		return w.latestDurable.Load(), false
	}
	if sequenceNumber > w.highestWritten {
		if sequenceNumber > w.pendingFlush {
			w.pendingFlush = sequenceNumber
		}
		return w.latestDurable.Load(), false
	}
	return w.flushThrough(w.highestWritten)
}

// flushThrough simulates a segment sync: everything written becomes
// durable.
func (w *DefaultWriter) flushThrough(seq int64) (int64, bool) {
	for s := range w.buffered {
		if s <= seq {
			delete(w.buffered, s)
		}
	}
	return w.advanceDurable(seq)
}

func (w *DefaultWriter) advanceDurable(seq int64) (int64, bool) {
	if seq <= w.latestDurable.Load() {
		return w.latestDurable.Load(), false
	}
	w.latestDurable.Store(seq)
	return seq, true
}

// SetMinimumAncientIdentifierToStore prunes the stream below the ancient
// identifier. The in-memory writer only records it.
func (w *DefaultWriter) SetMinimumAncientIdentifierToStore(identifier int64) {
	w.minimumAncientIdentifier = identifier
}

// UpdateNonAncientEventBoundary advances the writer's ancient boundary.
func (w *DefaultWriter) UpdateNonAncientEventBoundary(window event.Window) {
	if window.AncientThreshold > w.minimumAncientIdentifier {
		w.minimumAncientIdentifier = window.AncientThreshold
	}
}

// BeginStreamingNewEvents switches to live mode.
func (w *DefaultWriter) BeginStreamingNewEvents() {
	if w.streaming {
		w.logger.Error("BeginStreamingNewEvents called twice")
		return
	}
	w.streaming = true
}

// RegisterDiscontinuity records a stream break, flushing everything
// written so far.
func (w *DefaultWriter) RegisterDiscontinuity(round int64) (int64, bool) {
	w.logger.Info("stream discontinuity registered", "round", round)
	w.pendingFlush = -1
	return w.flushThrough(w.highestWritten)
}

// LatestDurableSequenceNumber returns the durable watermark.
func (w *DefaultWriter) LatestDurableSequenceNumber() int64 {
	return w.latestDurable.Load()
}
