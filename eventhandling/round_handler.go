// Package eventhandling applies durable consensus rounds to the platform
// state and prehandles application transactions.
package eventhandling

import (
	"log/slog"
	"sync/atomic"

	"github.com/matteriben/hedera-services/consensus"
	"github.com/matteriben/hedera-services/state"
)

// ConsensusRoundHandler applies consensus rounds to the state, producing a
// new reserved signed state per round. It only ever receives rounds whose
// keystone event is durable: the round durability buffer upstream enforces
// that invariant and panics on a breach.
type ConsensusRoundHandler struct {
	logger *slog.Logger

	// Counters are atomic because health checks and tests read them
	// while the handler's scheduler is live.
	handledRounds atomic.Int64
	lastRound     atomic.Int64
}

// NewConsensusRoundHandler creates a round handler.
func NewConsensusRoundHandler(logger *slog.Logger) *ConsensusRoundHandler {
	h := &ConsensusRoundHandler{logger: logger}
	h.lastRound.Store(-1)
	return h
}

// HandleConsensusRound applies one round and emits the resulting state
// paired with the round. The emitted reservation is owned downstream.
func (h *ConsensusRoundHandler) HandleConsensusRound(round *consensus.Round) state.StateAndRound {
	signedState := state.NewSignedState(round.Number)
	rs := state.NewReservedSignedState(signedState)

	h.handledRounds.Add(1)
	h.lastRound.Store(round.Number)
	h.logger.Debug("consensus round handled",
		"round", round.Number,
		"events", len(round.Events))

	return state.StateAndRound{State: rs, Round: round}
}

// HandledRounds returns the number of rounds applied so far.
func (h *ConsensusRoundHandler) HandledRounds() int64 { return h.handledRounds.Load() }

// LastRound returns the most recently applied round, or -1.
func (h *ConsensusRoundHandler) LastRound() int64 { return h.lastRound.Load() }
