package state

import (
	"log/slog"
	"time"
)

// GarbageCollector watches registered states for reservation leaks. A
// state whose round has aged past the retention bound but still carries
// reservations is logged and flagged; leaks are reported, never fatal.
type GarbageCollector struct {
	logger          *slog.Logger
	retentionRounds int64

	registered  map[int64]*ReservedSignedState
	latestRound int64
	leaks       int64
}

// NewGarbageCollector creates a collector that flags states still
// reserved retentionRounds rounds after creation.
func NewGarbageCollector(logger *slog.Logger, retentionRounds int64) *GarbageCollector {
	if retentionRounds < 1 {
		retentionRounds = 1
	}
	return &GarbageCollector{
		logger:          logger,
		retentionRounds: retentionRounds,
		registered:      make(map[int64]*ReservedSignedState),
	}
}

// RegisterState takes custody of one reservation on a newly created state.
func (gc *GarbageCollector) RegisterState(sar StateAndRound) {
	round := sar.State.Get().Round
	gc.registered[round] = sar.State
	if round > gc.latestRound {
		gc.latestRound = round
	}
}

// Heartbeat sweeps registered states, releasing this collector's
// reservation on aged-out states and flagging any that remain reserved by
// other holders long past retention.
func (gc *GarbageCollector) Heartbeat(now time.Time) {
	_ = now
	for round, rs := range gc.registered {
		if round+gc.retentionRounds > gc.latestRound {
			continue
		}
		state := rs.Get()
		rs.Close()
		delete(gc.registered, round)

		// After our release every short-lived holder should be done;
		// whatever remains is flagged, not torn down.
		if remaining := state.Reservations(); remaining > 0 {
			gc.leaks++
			gc.logger.Error("possible reservation leak",
				"round", round,
				"outstandingReservations", remaining)
		}
	}
}

// LeakCount returns the number of flagged leaks.
func (gc *GarbageCollector) LeakCount() int64 {
	return gc.leaks
}

// RegisteredStates returns the number of states in custody.
func (gc *GarbageCollector) RegisteredStates() int {
	return len(gc.registered)
}
