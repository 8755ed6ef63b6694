package intake

import (
	"log/slog"

	"github.com/matteriben/hedera-services/event"
)

// SelfEventSigner hashes and signs events created by this node before
// they re-enter the intake pipeline.
type SelfEventSigner struct {
	logger *slog.Logger
}

// NewSelfEventSigner creates a signer.
func NewSelfEventSigner(logger *slog.Logger) *SelfEventSigner {
	return &SelfEventSigner{logger: logger}
}

// SignEvent computes the event's hash and signature.
func (s *SelfEventSigner) SignEvent(e *event.Event) *event.Event {
	e.Hash = e.ComputeHash()
	e.Signature = event.SignBytes(e.Hash, e.CreatorID)
	return e
}
