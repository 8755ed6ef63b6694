package intake

import (
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// dedupKey identifies an event for deduplication. The signature is part of
// the key: the same event data signed differently must not be collapsed,
// or a malicious variant could shadow the honest one.
type dedupKey struct {
	descriptor event.Descriptor
	signature  string
}

// EventDeduplicator drops events already observed. Observed keys are
// bucketed by ancient indicator so a shifting event window purges exactly
// the entries that can never recur.
type EventDeduplicator struct {
	logger *slog.Logger
	window event.Window

	seen      map[dedupKey]struct{}
	byAncient map[int64][]dedupKey

	duplicates int64
	ancient    int64
}

// NewEventDeduplicator creates a deduplicator.
func NewEventDeduplicator(logger *slog.Logger) *EventDeduplicator {
	return &EventDeduplicator{
		logger:    logger,
		seen:      make(map[dedupKey]struct{}),
		byAncient: make(map[int64][]dedupKey),
	}
}

// HandleEvent passes through first sightings and drops duplicates and
// ancient events. The second return value reports whether the event
// survives.
func (d *EventDeduplicator) HandleEvent(e *event.Event) (*event.Event, bool) {
	if d.window.IsAncient(e) {
		d.ancient++
		return nil, false
	}

	key := dedupKey{descriptor: e.Descriptor(), signature: string(e.Signature)}
	if _, dup := d.seen[key]; dup {
		d.duplicates++
		return nil, false
	}

	d.seen[key] = struct{}{}
	indicator := e.AncientIndicator(d.window.Mode)
	d.byAncient[indicator] = append(d.byAncient[indicator], key)
	return e, true
}

// SetEventWindow advances the ancient boundary and purges keys that are
// now ancient.
func (d *EventDeduplicator) SetEventWindow(w event.Window) {
	d.window = w
	for indicator, keys := range d.byAncient {
		if indicator >= w.AncientThreshold {
			continue
		}
		for _, key := range keys {
			delete(d.seen, key)
		}
		delete(d.byAncient, indicator)
	}
}

// Clear resets all observed keys.
func (d *EventDeduplicator) Clear() {
	d.seen = make(map[dedupKey]struct{})
	d.byAncient = make(map[int64][]dedupKey)
}

// TrackedEvents returns the number of keys currently remembered.
func (d *EventDeduplicator) TrackedEvents() int { return len(d.seen) }

// DuplicateCount returns the number of duplicates dropped so far.
func (d *EventDeduplicator) DuplicateCount() int64 { return d.duplicates }
