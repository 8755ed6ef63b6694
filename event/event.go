// Package event defines the platform's event model: gossip events, event
// descriptors, and the event window that classifies events as ancient.
package event

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

// NoStreamSequenceNumber marks an event that has not yet been assigned a
// preconsensus stream sequence number by the sequencer.
const NoStreamSequenceNumber int64 = -1

// FirstGeneration is the generation of an event with no parents.
const FirstGeneration int64 = 0

// Descriptor identifies an event without carrying its payload.
type Descriptor struct {
	Hash       Hash
	CreatorID  int64
	Generation int64
	BirthRound int64
}

// Hash is the digest of an event's hashed data.
type Hash [sha256.Size]byte

// IsZero reports whether the hash has not been computed.
func (h Hash) IsZero() bool { return h == Hash{} }

// String returns an abbreviated hex form for logs.
func (h Hash) String() string { return fmt.Sprintf("%x", h[:6]) }

// StateSignature is a system transaction carrying a node's signature over
// a signed state, extracted from events for the state signature collector.
type StateSignature struct {
	Round     int64
	NodeID    int64
	Signature []byte
}

// Event is a gossip event flowing through the intake pipeline.
type Event struct {
	CreatorID   int64
	Generation  int64
	BirthRound  int64
	SelfParent  *Descriptor
	OtherParent *Descriptor
	TimeCreated time.Time

	Transactions    [][]byte
	StateSignatures []StateSignature

	// Hash is computed by the event hasher; zero until then.
	Hash Hash

	// Signature is set by the creator over the hash.
	Signature []byte

	// StreamSequenceNumber is assigned by the PCES sequencer; it is
	// NoStreamSequenceNumber until then.
	StreamSequenceNumber int64
}

// NewEvent creates an unhashed, unsequenced event.
func NewEvent(creatorID, generation, birthRound int64) *Event {
	return &Event{
		CreatorID:            creatorID,
		Generation:           generation,
		BirthRound:           birthRound,
		TimeCreated:          time.Now(),
		StreamSequenceNumber: NoStreamSequenceNumber,
	}
}

// Descriptor returns the event's descriptor. The hash must already be
// computed.
func (e *Event) Descriptor() Descriptor {
	return Descriptor{
		Hash:       e.Hash,
		CreatorID:  e.CreatorID,
		Generation: e.Generation,
		BirthRound: e.BirthRound,
	}
}

// AncientIndicator returns the value used to classify the event as
// ancient: its generation or its birth round, per the configured mode.
func (e *Event) AncientIndicator(mode AncientMode) int64 {
	if mode == BirthRoundThreshold {
		return e.BirthRound
	}
	return e.Generation
}

// ComputeHash digests the event's hashed data. Parent hashes are folded in
// so the digest covers the event's position in the graph.
func (e *Event) ComputeHash() Hash {
	hasher := sha256.New()

	var scratch [8]byte
	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(scratch[:], uint64(v))
		hasher.Write(scratch[:])
	}

	writeInt(e.CreatorID)
	writeInt(e.Generation)
	writeInt(e.BirthRound)
	writeInt(e.TimeCreated.UnixNano())
	if e.SelfParent != nil {
		hasher.Write(e.SelfParent.Hash[:])
	}
	if e.OtherParent != nil {
		hasher.Write(e.OtherParent.Hash[:])
	}
	for _, tx := range e.Transactions {
		hasher.Write(tx)
	}

	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}

// SignBytes produces the reference signature over an event hash for a
// creator. Real key material lives outside this repository; the reference
// scheme is deterministic so validators can verify it the same way.
func SignBytes(hash Hash, creatorID int64) []byte {
	hasher := sha256.New()
	hasher.Write(hash[:])
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], uint64(creatorID))
	hasher.Write(scratch[:])
	return hasher.Sum(nil)
}

// String renders the event for logs.
func (e *Event) String() string {
	return fmt.Sprintf("event{creator=%d gen=%d br=%d hash=%s seq=%d}",
		e.CreatorID, e.Generation, e.BirthRound, e.Hash, e.StreamSequenceNumber)
}
