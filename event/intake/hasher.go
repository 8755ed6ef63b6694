// Package intake provides the components of the event intake pipeline:
// hashing, validation, deduplication, orphan buffering, and event
// creation. Components are bound to schedulers through the componentwiring
// surface and never reference each other directly.
package intake

import (
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// EventHasher computes event hashes. It runs on a CONCURRENT scheduler:
// hashing is stateless and CPU-heavy, so events are hashed in parallel and
// re-serialized downstream by the post-hash collector.
type EventHasher struct {
	logger *slog.Logger
}

// NewEventHasher creates an event hasher.
func NewEventHasher(logger *slog.Logger) *EventHasher {
	return &EventHasher{logger: logger}
}

// HashEvent computes and records the event's hash.
func (h *EventHasher) HashEvent(e *event.Event) *event.Event {
	e.Hash = e.ComputeHash()
	return e
}

// PostHashCollector re-serializes hashed events behind the concurrent
// hasher. It shares its object counter with the hasher: the counter
// on-ramps when an event enters the hasher and off-ramps here, so
// backpressure spans the pair and a joint flush is one wait on the shared
// counter.
type PostHashCollector struct{}

// NewPostHashCollector creates a post-hash collector.
func NewPostHashCollector() *PostHashCollector {
	return &PostHashCollector{}
}

// CollectEvent passes the event through unchanged.
func (c *PostHashCollector) CollectEvent(e *event.Event) *event.Event {
	return e
}
