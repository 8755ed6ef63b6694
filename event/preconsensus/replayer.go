package preconsensus

import (
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// EventIterator yields events from the durable preconsensus stream.
type EventIterator interface {
	// Next returns the next event, or false when the stream is
	// exhausted.
	Next() (*event.Event, bool)
}

// SliceIterator iterates a slice of events. Used by tests and by the
// in-memory reference stream.
type SliceIterator struct {
	events []*event.Event
	index  int
}

// NewSliceIterator creates an iterator over events.
func NewSliceIterator(events []*event.Event) *SliceIterator {
	return &SliceIterator{events: events}
}

// Next returns the next event.
func (it *SliceIterator) Next() (*event.Event, bool) {
	if it.index >= len(it.events) {
		return nil, false
	}
	e := it.events[it.index]
	it.index++
	return e, true
}

// Replayer streams the durable preconsensus log back through the intake
// pipeline at startup. When the stream is exhausted it signals the writer
// to begin streaming new events.
type Replayer struct {
	logger *slog.Logger

	// emitEvent pushes one replayed event into the intake pipeline.
	emitEvent func(*event.Event)

	// emitDoneStreaming tells the writer replay is over.
	emitDoneStreaming func()

	replayed int64
}

// NewReplayer creates a replayer. The emit callbacks are bound to wires by
// the platform wiring.
func NewReplayer(logger *slog.Logger, emitEvent func(*event.Event), emitDoneStreaming func()) *Replayer {
	return &Replayer{
		logger:            logger,
		emitEvent:         emitEvent,
		emitDoneStreaming: emitDoneStreaming,
	}
}

// ReplayEvents drains the iterator into the intake pipeline, then signals
// completion.
func (r *Replayer) ReplayEvents(iterator EventIterator) {
	for {
		e, ok := iterator.Next()
		if !ok {
			break
		}
		r.emitEvent(e)
		r.replayed++
	}
	r.logger.Info("preconsensus replay complete", "events", r.replayed)
	r.emitDoneStreaming()
}

// ReplayedCount returns the number of events replayed.
func (r *Replayer) ReplayedCount() int64 { return r.replayed }
