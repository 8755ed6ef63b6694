package intake

import (
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// orphan is an event waiting for one or more parents.
type orphan struct {
	event          *event.Event
	missingParents map[event.Hash]struct{}
}

// OrphanBuffer holds events whose parents have not yet been emitted,
// releasing them in topological order once every parent is emitted or
// ancient. Everything downstream may assume parents precede children.
type OrphanBuffer struct {
	logger *slog.Logger
	window event.Window

	// emitted records hashes of events already released downstream.
	emitted map[event.Hash]struct{}

	// waiting indexes orphans by the parent hash they wait on.
	waiting map[event.Hash][]*orphan

	// held counts orphans currently buffered.
	held int
}

// NewOrphanBuffer creates an orphan buffer.
func NewOrphanBuffer(logger *slog.Logger) *OrphanBuffer {
	return &OrphanBuffer{
		logger:  logger,
		emitted: make(map[event.Hash]struct{}),
		waiting: make(map[event.Hash][]*orphan),
	}
}

// HandleEvent ingests one event and returns every event thereby
// unblocked, in topological order. Ancient events are dropped.
func (b *OrphanBuffer) HandleEvent(e *event.Event) []*event.Event {
	if b.window.IsAncient(e) {
		return nil
	}

	missing := b.missingParents(e)
	if len(missing) > 0 {
		o := &orphan{event: e, missingParents: missing}
		for parentHash := range missing {
			b.waiting[parentHash] = append(b.waiting[parentHash], o)
		}
		b.held++
		return nil
	}

	return b.emit(e)
}

// missingParents returns the hashes of parents that are neither emitted
// nor ancient.
func (b *OrphanBuffer) missingParents(e *event.Event) map[event.Hash]struct{} {
	missing := make(map[event.Hash]struct{})
	for _, parent := range []*event.Descriptor{e.SelfParent, e.OtherParent} {
		if parent == nil {
			continue
		}
		if b.window.IsDescriptorAncient(*parent) {
			continue
		}
		if _, ok := b.emitted[parent.Hash]; ok {
			continue
		}
		missing[parent.Hash] = struct{}{}
	}
	return missing
}

// emit releases an event and, transitively, every orphan it unblocks.
func (b *OrphanBuffer) emit(e *event.Event) []*event.Event {
	released := []*event.Event{e}
	b.emitted[e.Hash] = struct{}{}

	// Walk the release front breadth-first.
	frontier := []event.Hash{e.Hash}
	for len(frontier) > 0 {
		parentHash := frontier[0]
		frontier = frontier[1:]

		waiters := b.waiting[parentHash]
		delete(b.waiting, parentHash)
		for _, o := range waiters {
			delete(o.missingParents, parentHash)
			if len(o.missingParents) > 0 {
				continue
			}
			b.held--
			b.emitted[o.event.Hash] = struct{}{}
			released = append(released, o.event)
			frontier = append(frontier, o.event.Hash)
		}
	}
	return released
}

// SetEventWindow advances the ancient boundary, dropping ancient orphans
// and releasing orphans whose missing parents became ancient. Returns the
// released events in topological order.
func (b *OrphanBuffer) SetEventWindow(w event.Window) []*event.Event {
	b.window = w

	// Collect all held orphans, then replay the non-ancient ones against
	// the new window.
	seen := make(map[event.Hash]bool)
	var held []*orphan
	for _, waiters := range b.waiting {
		for _, o := range waiters {
			if !seen[o.event.Hash] {
				seen[o.event.Hash] = true
				held = append(held, o)
			}
		}
	}
	b.waiting = make(map[event.Hash][]*orphan)
	b.held = 0

	// Emitted hashes of ancient events are not purged here: descriptors
	// of ancient parents no longer consult the emitted set.
	var released []*event.Event
	for _, o := range held {
		if b.window.IsAncient(o.event) {
			continue
		}
		released = append(released, b.HandleEvent(o.event)...)
	}
	return released
}

// Clear drops every held orphan and forgets emitted hashes.
func (b *OrphanBuffer) Clear() {
	b.emitted = make(map[event.Hash]struct{})
	b.waiting = make(map[event.Hash][]*orphan)
	b.held = 0
}

// HeldCount returns the number of buffered orphans.
func (b *OrphanBuffer) HeldCount() int { return b.held }
