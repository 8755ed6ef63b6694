package state

import (
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
)

// Hasher computes the hash of newly signed states. It runs on its own
// scheduler because hashing is CPU-bound and must not stall the round
// handler.
type Hasher struct {
	logger *slog.Logger
}

// NewHasher creates a state hasher.
func NewHasher(logger *slog.Logger) *Hasher {
	return &Hasher{logger: logger}
}

// HashState computes and records the state's hash, passing the pair
// through unchanged otherwise.
func (h *Hasher) HashState(sar StateAndRound) StateAndRound {
	state := sar.State.Get()

	hasher := sha256.New()
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], uint64(state.Round))
	hasher.Write(scratch[:])
	for _, e := range sar.Round.Events {
		hasher.Write(e.Hash[:])
	}
	copy(state.Hash[:], hasher.Sum(nil))

	h.logger.Debug("state hashed", "round", state.Round, "hash", state.Hash.String())
	return sar
}
