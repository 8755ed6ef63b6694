package intake

import (
	"bytes"
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// InternalEventValidator performs structural validation of events arriving
// from gossip or self-creation. Invalid events are dropped, never
// propagated.
type InternalEventValidator struct {
	logger  *slog.Logger
	dropped int64
}

// NewInternalEventValidator creates a validator.
func NewInternalEventValidator(logger *slog.Logger) *InternalEventValidator {
	return &InternalEventValidator{logger: logger}
}

// ValidateEvent checks the event's structure. The second return value
// reports whether the event survives.
func (v *InternalEventValidator) ValidateEvent(e *event.Event) (*event.Event, bool) {
	if reason := v.check(e); reason != "" {
		v.dropped++
		v.logger.Warn("invalid event dropped", "reason", reason, "event", e.String())
		return nil, false
	}
	return e, true
}

func (v *InternalEventValidator) check(e *event.Event) string {
	switch {
	case e == nil:
		return "nil event"
	case e.CreatorID < 0:
		return "negative creator id"
	case e.Generation < event.FirstGeneration:
		return "negative generation"
	case e.BirthRound < 0:
		return "negative birth round"
	case e.Hash.IsZero():
		return "missing hash"
	case len(e.Signature) == 0:
		return "missing signature"
	case e.SelfParent != nil && e.SelfParent.Generation >= e.Generation:
		return "self parent generation not below event generation"
	case e.OtherParent != nil && e.OtherParent.Generation >= e.Generation:
		return "other parent generation not below event generation"
	case e.SelfParent != nil && e.SelfParent.CreatorID != e.CreatorID:
		return "self parent creator mismatch"
	}
	return ""
}

// DroppedCount returns the number of events dropped so far.
func (v *InternalEventValidator) DroppedCount() int64 { return v.dropped }

// AddressBook lists the known nodes and their consensus weights.
type AddressBook struct {
	Weights map[int64]int64
}

// Contains reports whether the node is in the book.
func (ab *AddressBook) Contains(nodeID int64) bool {
	if ab == nil {
		return false
	}
	_, ok := ab.Weights[nodeID]
	return ok
}

// AddressBookUpdate carries the previous and current address books to the
// signature validator.
type AddressBookUpdate struct {
	Previous *AddressBook
	Current  *AddressBook
}

// EventSignatureValidator verifies event signatures against the address
// book. Ancient events are dropped without verification.
type EventSignatureValidator struct {
	logger           *slog.Logger
	book             *AddressBook
	window           event.Window
	ignoreSignatures bool
	dropped          int64
}

// NewEventSignatureValidator creates a validator. ignoreSignatures is a
// testing-only escape hatch for streams with unsigned fixture events.
func NewEventSignatureValidator(logger *slog.Logger, book *AddressBook, ignoreSignatures bool) *EventSignatureValidator {
	return &EventSignatureValidator{
		logger:           logger,
		book:             book,
		ignoreSignatures: ignoreSignatures,
	}
}

// Sign produces the reference signature for a hash and creator. Real
// cryptography lives outside this repository; the reference scheme is
// deterministic and collision-checked the same way.
func Sign(hash event.Hash, creatorID int64) []byte {
	return event.SignBytes(hash, creatorID)
}

// ValidateSignature verifies the event's signature. The second return
// value reports whether the event survives.
func (v *EventSignatureValidator) ValidateSignature(e *event.Event) (*event.Event, bool) {
	if v.window.IsAncient(e) {
		v.dropped++
		return nil, false
	}
	if !v.book.Contains(e.CreatorID) {
		v.dropped++
		v.logger.Warn("event from unknown creator dropped", "creator", e.CreatorID)
		return nil, false
	}
	if !v.ignoreSignatures && !bytes.Equal(e.Signature, Sign(e.Hash, e.CreatorID)) {
		v.dropped++
		v.logger.Warn("event with invalid signature dropped", "event", e.String())
		return nil, false
	}
	return e, true
}

// SetEventWindow updates the ancient boundary.
func (v *EventSignatureValidator) SetEventWindow(w event.Window) {
	v.window = w
}

// UpdateAddressBooks replaces the validator's address book.
func (v *EventSignatureValidator) UpdateAddressBooks(update AddressBookUpdate) {
	v.book = update.Current
}

// DroppedCount returns the number of events dropped so far.
func (v *EventSignatureValidator) DroppedCount() int64 { return v.dropped }
