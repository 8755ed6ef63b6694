package intake

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/matteriben/hedera-services/event"
	"github.com/matteriben/hedera-services/platform/status"
)

// EventCreationManager creates this node's own events. Creation attempts
// are driven by a heartbeat and throttled by a rate limiter; an attempt
// succeeds only when the platform is active and a suitable other-parent is
// available.
type EventCreationManager struct {
	logger  *slog.Logger
	selfID  int64
	limiter *rate.Limiter

	window event.Window
	status status.PlatformStatus

	// selfParent is the descriptor of the last self event.
	selfParent *event.Descriptor

	// otherParents holds recent non-self event descriptors, newest last.
	otherParents []event.Descriptor

	created int64
}

// maxOtherParentCandidates bounds the candidate list.
const maxOtherParentCandidates = 32

// NewEventCreationManager creates a manager for the given node, attempting
// at most attemptRate creations per second.
func NewEventCreationManager(logger *slog.Logger, selfID int64, attemptRate float64) *EventCreationManager {
	if attemptRate <= 0 {
		attemptRate = 1
	}
	return &EventCreationManager{
		logger:  logger,
		selfID:  selfID,
		limiter: rate.NewLimiter(rate.Limit(attemptRate), 1),
		status:  status.Starting,
	}
}

// MaybeCreateEvent attempts to create a self event. The second return
// value reports whether an event was created.
func (m *EventCreationManager) MaybeCreateEvent(_ time.Time) (*event.Event, bool) {
	if m.status != status.Active {
		return nil, false
	}
	if !m.limiter.Allow() {
		return nil, false
	}
	if m.selfParent == nil && len(m.otherParents) == 0 {
		// Nothing to build on yet.
		return nil, false
	}

	generation := event.FirstGeneration
	var otherParent *event.Descriptor
	if m.selfParent != nil && m.selfParent.Generation >= generation {
		generation = m.selfParent.Generation + 1
	}
	if len(m.otherParents) > 0 {
		candidate := m.otherParents[len(m.otherParents)-1]
		otherParent = &candidate
		if candidate.Generation >= generation {
			generation = candidate.Generation + 1
		}
	}

	e := event.NewEvent(m.selfID, generation, m.window.LatestConsensusRound+1)
	e.SelfParent = m.selfParent
	e.OtherParent = otherParent
	m.created++
	return e, true
}

// RegisterEvent records an event as a potential other-parent, or as the
// new self-parent for events this node created.
func (m *EventCreationManager) RegisterEvent(e *event.Event) {
	d := e.Descriptor()
	if e.CreatorID == m.selfID {
		if m.selfParent == nil || d.Generation > m.selfParent.Generation {
			m.selfParent = &d
		}
		return
	}
	if m.window.IsAncient(e) {
		return
	}
	m.otherParents = append(m.otherParents, d)
	if len(m.otherParents) > maxOtherParentCandidates {
		m.otherParents = m.otherParents[1:]
	}
}

// SetEventWindow advances the ancient boundary, discarding candidates that
// became ancient.
func (m *EventCreationManager) SetEventWindow(w event.Window) {
	m.window = w
	kept := m.otherParents[:0]
	for _, d := range m.otherParents {
		if !w.IsDescriptorAncient(d) {
			kept = append(kept, d)
		}
	}
	m.otherParents = kept
}

// UpdatePlatformStatus gates creation: events are only created while the
// platform is active.
func (m *EventCreationManager) UpdatePlatformStatus(s status.PlatformStatus) {
	m.status = s
}

// Clear resets parent tracking for a reconnect.
func (m *EventCreationManager) Clear() {
	m.selfParent = nil
	m.otherParents = nil
}

// CreatedCount returns the number of events created so far.
func (m *EventCreationManager) CreatedCount() int64 { return m.created }
