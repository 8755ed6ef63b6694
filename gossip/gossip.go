// Package gossip defines the gossip contract consumed by the platform
// core, plus an in-process loopback implementation used by tests and
// single-node deployments. The real network transport lives outside this
// repository; the core only depends on the wires declared here.
package gossip

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/matteriben/hedera-services/event"
	"github.com/matteriben/hedera-services/pkg/buffer"
	"github.com/matteriben/hedera-services/pkg/cache"
)

// Gossip distributes events to peers and receives their events.
// Implementations are driven entirely through wires.
type Gossip interface {
	// Broadcast hands an event to the transport for distribution.
	Broadcast(e *event.Event)

	// SetEventWindow advances the transport's ancient boundary.
	SetEventWindow(w event.Window)

	// Start begins gossiping.
	Start()

	// Stop halts gossiping permanently.
	Stop()

	// Clear resets transport state for a reconnect.
	Clear()
}

// seenCacheSize bounds the duplicate-suppression cache. Sized well above
// the intake pipeline capacity so recent events always hit.
const seenCacheSize = 4096

// outboundCapacity bounds the loopback's outbound queue. Overflow drops
// the oldest: a peer that cannot keep up re-syncs through reconnect, not
// through unbounded buffering.
const outboundCapacity = 1024

// Loopback is an in-process gossip implementation. Broadcast events are
// queued and deduplicated; nothing leaves the process. Tests and
// single-node deployments submit "received" events directly.
type Loopback struct {
	logger *slog.Logger
	peerID string

	// emit pushes a received event toward the intake pipeline. Bound by
	// the platform wiring.
	emit func(*event.Event)

	seen     *cache.LRU[struct{}]
	outbound *buffer.Ring[*event.Event]
	window   event.Window

	// running is read by event submitters on arbitrary goroutines.
	running atomic.Bool
}

var _ Gossip = (*Loopback)(nil)

// NewLoopback creates a loopback transport. The emit callback is bound to
// the gossip event-output wire by the platform wiring.
func NewLoopback(logger *slog.Logger, emit func(*event.Event)) *Loopback {
	return &Loopback{
		logger:   logger,
		peerID:   uuid.NewString(),
		emit:     emit,
		seen:     cache.NewLRU[struct{}](seenCacheSize),
		outbound: buffer.NewRing[*event.Event](outboundCapacity, buffer.DropOldest),
	}
}

// PeerID returns the loopback's synthetic peer identity.
func (g *Loopback) PeerID() string { return g.peerID }

// Broadcast queues an event for distribution, suppressing duplicates and
// ancient events.
func (g *Loopback) Broadcast(e *event.Event) {
	if g.window.IsAncient(e) {
		return
	}
	key := string(e.Hash[:])
	if g.seen.Contains(key) {
		return
	}
	g.seen.Set(key, struct{}{})
	g.outbound.Write(e)
}

// SubmitReceivedEvent injects an event as if it arrived from a peer.
func (g *Loopback) SubmitReceivedEvent(e *event.Event) {
	if !g.running.Load() {
		return
	}
	g.emit(e)
}

// SetEventWindow advances the ancient boundary.
func (g *Loopback) SetEventWindow(w event.Window) {
	g.window = w
}

// Start begins accepting received events.
func (g *Loopback) Start() {
	g.running.Store(true)
	g.logger.Info("gossip started", "peer", g.peerID)
}

// Stop halts gossiping permanently.
func (g *Loopback) Stop() {
	g.running.Store(false)
	g.logger.Info("gossip stopped", "peer", g.peerID)
}

// Clear resets transport state for a reconnect.
func (g *Loopback) Clear() {
	g.seen.Clear()
	g.outbound.Clear()
}

// OutboundCount returns the number of queued outbound events.
func (g *Loopback) OutboundCount() int { return g.outbound.Len() }
