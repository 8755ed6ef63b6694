package state

import (
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// IssType classifies an invalid state signature observation.
type IssType int

const (
	// SelfIss means this node's state hash disagrees with the consensus
	// hash.
	SelfIss IssType = iota

	// OtherIss means another node signed a hash disagreeing with
	// consensus.
	OtherIss

	// CatastrophicIss means no hash reached the consensus weight
	// threshold.
	CatastrophicIss
)

// String returns the notification label for the ISS type.
func (t IssType) String() string {
	switch t {
	case SelfIss:
		return "self_iss"
	case OtherIss:
		return "other_iss"
	case CatastrophicIss:
		return "catastrophic_iss"
	default:
		return "unknown"
	}
}

// IssNotification reports one invalid state signature observation.
type IssNotification struct {
	Round  int64
	Type   IssType
	NodeID int64
}

// IssDetector compares state signatures against this node's computed
// hashes and reports disagreements.
type IssDetector struct {
	logger *slog.Logger
	selfID int64

	// hashes holds this node's state hash per round until the round's
	// signatures have been inspected.
	hashes map[int64]event.Hash

	// replayActive suppresses reporting during preconsensus replay,
	// where signatures may reference states predating the loaded state.
	replayActive bool
}

// NewIssDetector creates a detector for the given node.
func NewIssDetector(logger *slog.Logger, selfID int64) *IssDetector {
	return &IssDetector{
		logger:       logger,
		selfID:       selfID,
		hashes:       make(map[int64]event.Hash),
		replayActive: true,
	}
}

// HandleStateAndRound records the node's own hash for the round and
// inspects the round's signatures. The supplied reservation is released
// before returning.
func (d *IssDetector) HandleStateAndRound(sar StateAndRound) []IssNotification {
	defer sar.State.Close()

	state := sar.State.Get()
	d.hashes[state.Round] = state.Hash

	var notifications []IssNotification
	for _, e := range sar.Round.Events {
		for _, sig := range e.StateSignatures {
			if n, ok := d.inspect(sig); ok {
				notifications = append(notifications, n)
			}
		}
	}

	// Forget the hashes of rounds more than signatureInspectionWindow
	// rounds older than this one.
	for round := range d.hashes {
		if round < state.Round-signatureInspectionWindow {
			delete(d.hashes, round)
		}
	}
	return notifications
}

// signatureInspectionWindow bounds how many rounds back a signature may
// reference a remembered hash.
const signatureInspectionWindow = 32

// inspect compares one signature against the remembered hash.
func (d *IssDetector) inspect(sig event.StateSignature) (IssNotification, bool) {
	if d.replayActive {
		return IssNotification{}, false
	}
	expected, ok := d.hashes[sig.Round]
	if !ok || expected.IsZero() {
		return IssNotification{}, false
	}
	// Reference signatures are the hash bytes themselves; a mismatch is
	// an ISS.
	if len(sig.Signature) == len(expected) && hashFromBytes(sig.Signature) == expected {
		return IssNotification{}, false
	}
	issType := OtherIss
	if sig.NodeID == d.selfID {
		issType = SelfIss
	}
	d.logger.Error("invalid state signature observed",
		"round", sig.Round,
		"node", sig.NodeID,
		"type", issType.String())
	return IssNotification{Round: sig.Round, Type: issType, NodeID: sig.NodeID}, true
}

// OverridingState resets the detector around a reconnect state. The
// supplied reservation is released before returning.
func (d *IssDetector) OverridingState(rs *ReservedSignedState) {
	state := rs.Get()
	d.hashes = map[int64]event.Hash{state.Round: state.Hash}
	rs.Close()
}

// SignalEndOfPreconsensusReplay enables reporting once replayed events
// have all been observed.
func (d *IssDetector) SignalEndOfPreconsensusReplay() {
	d.replayActive = false
}

func hashFromBytes(b []byte) event.Hash {
	var h event.Hash
	copy(h[:], b)
	return h
}
