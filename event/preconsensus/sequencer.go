// Package preconsensus provides the preconsensus event stream (PCES)
// components: the sequencer that numbers events, the writer that makes
// them durable, and the round durability buffer that gates consensus
// rounds on keystone durability.
package preconsensus

import "github.com/matteriben/hedera-services/event"

// Sequencer assigns stream sequence numbers to events entering the
// preconsensus stream. Numbers are dense and monotonically increasing; an
// event's number orders it in the durable log.
type Sequencer struct {
	next int64
}

// NewSequencer creates a sequencer starting at zero.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// AssignStreamSequenceNumber stamps the event with the next sequence
// number.
func (s *Sequencer) AssignStreamSequenceNumber(e *event.Event) *event.Event {
	e.StreamSequenceNumber = s.next
	s.next++
	return e
}
