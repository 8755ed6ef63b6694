package consensus

import (
	"log/slog"
	"time"

	"github.com/matteriben/hedera-services/event"
)

// DefaultEngine is the reference consensus engine. It is deliberately
// simple — every batch of ingested events becomes a round, with the final
// event as keystone — because the hashgraph algorithm itself lives outside
// this repository. What matters here is the contract: rounds come out in
// order, each carries a keystone event and a derived event window.
type DefaultEngine struct {
	logger *slog.Logger

	eventsPerRound    int
	ancientWindowSize int64
	mode              event.AncientMode

	pending       []*event.Event
	nextRound     int64
	maxGeneration int64
}

var _ Engine = (*DefaultEngine)(nil)

// NewDefaultEngine creates an engine that closes a round every
// eventsPerRound events.
func NewDefaultEngine(logger *slog.Logger, mode event.AncientMode, eventsPerRound int, ancientWindowSize int64) *DefaultEngine {
	if eventsPerRound < 1 {
		eventsPerRound = 1
	}
	if ancientWindowSize < 1 {
		ancientWindowSize = 26
	}
	return &DefaultEngine{
		logger:            logger,
		eventsPerRound:    eventsPerRound,
		ancientWindowSize: ancientWindowSize,
		mode:              mode,
		nextRound:         1,
	}
}

// AddEvent feeds one event into the engine, emitting any rounds that
// reach consensus as a result.
func (e *DefaultEngine) AddEvent(ev *event.Event) []*Round {
	e.pending = append(e.pending, ev)
	if ev.Generation > e.maxGeneration {
		e.maxGeneration = ev.Generation
	}

	if len(e.pending) < e.eventsPerRound {
		return nil
	}

	events := e.pending
	e.pending = nil

	ancientThreshold := e.maxGeneration - e.ancientWindowSize
	if ancientThreshold < event.FirstGeneration {
		ancientThreshold = event.FirstGeneration
	}
	expiredThreshold := e.maxGeneration - 2*e.ancientWindowSize
	if expiredThreshold < event.FirstGeneration {
		expiredThreshold = event.FirstGeneration
	}

	round := &Round{
		Number:   e.nextRound,
		Events:   events,
		Keystone: events[len(events)-1],
		Window: event.Window{
			LatestConsensusRound: e.nextRound,
			AncientThreshold:     ancientThreshold,
			ExpiredThreshold:     expiredThreshold,
			Mode:                 e.mode,
		},
		ConsensusTimestamp: medianTimestamp(events),
	}
	e.nextRound++

	e.logger.Debug("round reached consensus",
		"round", round.Number,
		"events", len(round.Events),
		"keystone", round.Keystone.String())
	return []*Round{round}
}

// OutOfBandSnapshotUpdate overrides consensus state at restart and
// reconnect boundaries. Pending events predate the snapshot and are
// discarded.
func (e *DefaultEngine) OutOfBandSnapshotUpdate(snapshot *Snapshot) {
	e.pending = nil
	e.nextRound = snapshot.Round + 1
	if snapshot.AncientThreshold+e.ancientWindowSize > e.maxGeneration {
		e.maxGeneration = snapshot.AncientThreshold + e.ancientWindowSize
	}
	e.logger.Info("consensus snapshot applied", "round", snapshot.Round)
}

func medianTimestamp(events []*event.Event) time.Time {
	if len(events) == 0 {
		return time.Time{}
	}
	return events[len(events)/2].TimeCreated
}
