// Package consensus defines the consensus engine contract and the rounds
// it emits, including the keystone event whose durability gates round
// handling.
package consensus

import (
	"time"

	"github.com/matteriben/hedera-services/event"
)

// Round is a set of events that reached consensus together.
type Round struct {
	// Number is the round number, monotonically increasing.
	Number int64

	// Events are the round's consensus events, in consensus order.
	Events []*event.Event

	// Keystone is the designated event whose preconsensus stream
	// sequence number must be durable before the round may be handled.
	Keystone *event.Event

	// Window is the event window derived from this round.
	Window event.Window

	// ConsensusTimestamp is the round's median timestamp.
	ConsensusTimestamp time.Time
}

// KeystoneSequenceNumber returns the stream sequence number of the round's
// keystone event.
func (r *Round) KeystoneSequenceNumber() int64 {
	return r.Keystone.StreamSequenceNumber
}

// Snapshot captures consensus state distributed at restart and reconnect
// boundaries.
type Snapshot struct {
	Round                  int64
	AncientThreshold       int64
	ConsensusTimestamp     time.Time
	JudgeAncientIndicators []int64
}

// Engine ingests events and emits consensus rounds. Implementations are
// driven entirely through wires; the platform never calls them directly.
type Engine interface {
	// AddEvent feeds one event into the hashgraph. Zero or more rounds
	// may reach consensus as a result.
	AddEvent(*event.Event) []*Round

	// OutOfBandSnapshotUpdate overrides consensus state at restart and
	// reconnect boundaries.
	OutOfBandSnapshotUpdate(*Snapshot)
}
