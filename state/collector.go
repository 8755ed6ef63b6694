package state

import (
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// SignatureCollector gathers state signatures arriving before and after
// consensus and matches them to reserved signed states. States that become
// complete are emitted downstream.
type SignatureCollector struct {
	logger    *slog.Logger
	threshold int

	// states holds reserved states by round until they complete or are
	// cleared.
	states map[int64]*ReservedSignedState

	// earlySignatures holds signatures that arrived before their state.
	earlySignatures map[int64][]event.StateSignature
}

// NewSignatureCollector creates a collector that marks states complete at
// the given signature threshold.
func NewSignatureCollector(logger *slog.Logger, threshold int) *SignatureCollector {
	if threshold < 1 {
		threshold = 1
	}
	return &SignatureCollector{
		logger:          logger,
		threshold:       threshold,
		states:          make(map[int64]*ReservedSignedState),
		earlySignatures: make(map[int64][]event.StateSignature),
	}
}

// AddReservedState registers a state awaiting signatures. Signatures that
// arrived early are applied immediately, so the state may complete at
// once.
func (c *SignatureCollector) AddReservedState(rs *ReservedSignedState) []*ReservedSignedState {
	round := rs.Get().Round
	c.states[round] = rs

	var completed []*ReservedSignedState
	if early := c.earlySignatures[round]; len(early) > 0 {
		delete(c.earlySignatures, round)
		for _, sig := range early {
			if done := c.applySignature(sig); done != nil {
				completed = append(completed, done)
			}
		}
	}
	return completed
}

// HandlePreconsensusSignatures processes signatures extracted from events
// before consensus.
func (c *SignatureCollector) HandlePreconsensusSignatures(signatures []event.StateSignature) []*ReservedSignedState {
	return c.handleSignatures(signatures)
}

// HandlePostconsensusSignatures processes signatures extracted from rounds
// after consensus.
func (c *SignatureCollector) HandlePostconsensusSignatures(signatures []event.StateSignature) []*ReservedSignedState {
	return c.handleSignatures(signatures)
}

func (c *SignatureCollector) handleSignatures(signatures []event.StateSignature) []*ReservedSignedState {
	var completed []*ReservedSignedState
	for _, sig := range signatures {
		if done := c.applySignature(sig); done != nil {
			completed = append(completed, done)
		}
	}
	return completed
}

// applySignature routes one signature, buffering it if its state has not
// arrived yet. Returns the state's reservation if it just completed:
// ownership of that reservation moves downstream.
func (c *SignatureCollector) applySignature(sig event.StateSignature) *ReservedSignedState {
	rs, ok := c.states[sig.Round]
	if !ok {
		c.earlySignatures[sig.Round] = append(c.earlySignatures[sig.Round], sig)
		return nil
	}
	if rs.Get().AddSignature(sig.NodeID, sig.Signature, c.threshold) {
		delete(c.states, sig.Round)
		return rs
	}
	return nil
}

// Clear releases every held reservation and drops buffered signatures.
func (c *SignatureCollector) Clear() {
	for round, rs := range c.states {
		rs.Close()
		delete(c.states, round)
	}
	c.earlySignatures = make(map[int64][]event.StateSignature)
}

// HeldStates returns the number of states awaiting signatures.
func (c *SignatureCollector) HeldStates() int {
	return len(c.states)
}
