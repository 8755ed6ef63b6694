package preconsensus

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/matteriben/hedera-services/consensus"
	"github.com/matteriben/hedera-services/errors"
)

// pendingRound is a round waiting on keystone durability.
type pendingRound struct {
	round   *consensus.Round
	arrived time.Time
}

// RoundDurabilityBuffer holds consensus rounds until their keystone event
// is durable in the preconsensus stream, then releases them to the round
// handler in arrival order. The durable watermark arrives over an INJECT
// edge from the writer, which breaks the writer→buffer cycle.
type RoundDurabilityBuffer struct {
	logger         *slog.Logger
	staleThreshold time.Duration

	// latestDurable is atomic so live observers (tests, diagnostics)
	// can read the watermark while the buffer's scheduler runs.
	latestDurable atomic.Int64
	pending       []pendingRound

	staleRounds atomic.Int64
}

// NewRoundDurabilityBuffer creates a buffer that flags rounds stuck
// longer than staleThreshold.
func NewRoundDurabilityBuffer(logger *slog.Logger, staleThreshold time.Duration) *RoundDurabilityBuffer {
	if staleThreshold <= 0 {
		staleThreshold = 10 * time.Second
	}
	b := &RoundDurabilityBuffer{
		logger:         logger,
		staleThreshold: staleThreshold,
	}
	b.latestDurable.Store(-1)
	return b
}

// AddRound enqueues a round and releases every round whose keystone is
// already durable.
func (b *RoundDurabilityBuffer) AddRound(round *consensus.Round) []*consensus.Round {
	b.pending = append(b.pending, pendingRound{round: round, arrived: time.Now()})
	return b.releaseDurableRounds()
}

// SetLatestDurableSequenceNumber advances the durable watermark and
// releases newly eligible rounds. The watermark never regresses.
func (b *RoundDurabilityBuffer) SetLatestDurableSequenceNumber(sequenceNumber int64) []*consensus.Round {
	if sequenceNumber > b.latestDurable.Load() {
		b.latestDurable.Store(sequenceNumber)
	}
	return b.releaseDurableRounds()
}

// releaseDurableRounds pops rounds from the front while their keystones
// are durable. Rounds arrive in consensus order and keystone sequence
// numbers are monotonic, so head-of-line blocking is correct, not a
// limitation.
func (b *RoundDurabilityBuffer) releaseDurableRounds() []*consensus.Round {
	var released []*consensus.Round
	for len(b.pending) > 0 {
		head := b.pending[0]
		if head.round.KeystoneSequenceNumber() > b.latestDurable.Load() {
			break
		}
		assertRoundDurable(head.round, b.latestDurable.Load())
		released = append(released, head.round)
		b.pending = b.pending[1:]
	}
	return released
}

// assertRoundDurable panics if a round is about to be released without a
// durable keystone. A breach here means the durability invariant is
// broken and the platform must not continue.
func assertRoundDurable(round *consensus.Round, latestDurable int64) {
	if round.KeystoneSequenceNumber() > latestDurable {
		panic(errors.WrapFatal(
			fmt.Errorf("round %d keystone sequence %d, latest durable %d: %w",
				round.Number, round.KeystoneSequenceNumber(), latestDurable, errors.ErrNotDurable),
			"RoundDurabilityBuffer", "releaseDurableRounds", "durability invariant breached"))
	}
}

// CheckForStaleRounds logs rounds stuck waiting on durability longer than
// the stale threshold. Driven by a heartbeat so stuck rounds surface even
// when no new events arrive.
func (b *RoundDurabilityBuffer) CheckForStaleRounds(now time.Time) {
	for _, p := range b.pending {
		if now.Sub(p.arrived) < b.staleThreshold {
			continue
		}
		b.staleRounds.Add(1)
		b.logger.Error("round stuck waiting for keystone durability",
			"round", p.round.Number,
			"keystoneSequence", p.round.KeystoneSequenceNumber(),
			"latestDurable", b.latestDurable.Load(),
			"waiting", now.Sub(p.arrived).String())
	}
}

// Clear drops all pending rounds for a reconnect.
func (b *RoundDurabilityBuffer) Clear() {
	b.pending = nil
}

// PendingRounds returns the number of rounds waiting on durability.
func (b *RoundDurabilityBuffer) PendingRounds() int { return len(b.pending) }

// LatestDurableSequenceNumber returns the buffer's view of the watermark.
func (b *RoundDurabilityBuffer) LatestDurableSequenceNumber() int64 { return b.latestDurable.Load() }

// StaleRoundCount returns the number of stale-round observations.
func (b *RoundDurabilityBuffer) StaleRoundCount() int64 { return b.staleRounds.Load() }
