package platform

import (
	"log/slog"
	"time"

	"github.com/matteriben/hedera-services/config"
	"github.com/matteriben/hedera-services/consensus"
	"github.com/matteriben/hedera-services/event/intake"
	"github.com/matteriben/hedera-services/event/preconsensus"
	"github.com/matteriben/hedera-services/eventhandling"
	"github.com/matteriben/hedera-services/gossip"
	"github.com/matteriben/hedera-services/platform/status"
	"github.com/matteriben/hedera-services/state"
	"github.com/matteriben/hedera-services/wiring"
)

// Components carries the instances bound to the platform wiring.
// Construction order is irrelevant: wires are built lazily and invoke
// methods on the bound instance only once tasks flow.
type Components struct {
	EventHasher             *intake.EventHasher
	PostHashCollector       *intake.PostHashCollector
	InternalEventValidator  *intake.InternalEventValidator
	EventDeduplicator       *intake.EventDeduplicator
	EventSignatureValidator *intake.EventSignatureValidator
	OrphanBuffer            *intake.OrphanBuffer
	EventCreationManager    *intake.EventCreationManager
	SelfEventSigner         *intake.SelfEventSigner
	PcesSequencer           *preconsensus.Sequencer
	PcesWriter              preconsensus.Writer
	RoundDurabilityBuffer   *preconsensus.RoundDurabilityBuffer
	ConsensusEngine         consensus.Engine
	TransactionPrehandler   *eventhandling.TransactionPrehandler
	ConsensusRoundHandler   *eventhandling.ConsensusRoundHandler
	StateHasher             *state.Hasher
	StateSignatureCollector *state.SignatureCollector
	IssDetector             *state.IssDetector
	StateGarbageCollector   *state.GarbageCollector
	LatestImmutableNexus    *state.Nexus
	LatestCompleteNexus     *state.LatestCompleteStateNexus
	EventWindowManager      *consensus.WindowManager
	StatusStateMachine      *status.StateMachine
	StatusNexus             *status.Nexus
	Gossip                  gossip.Gossip
}

// DefaultComponents builds the reference implementation of every
// component. The gossip transport is a loopback feeding the wiring's
// gossip event source.
func DefaultComponents(logger *slog.Logger, cfg *config.Config, w *Wiring) Components {
	book := &intake.AddressBook{Weights: map[int64]int64{cfg.Node.ID: 1}}

	return Components{
		EventHasher:             intake.NewEventHasher(logger),
		PostHashCollector:       intake.NewPostHashCollector(),
		InternalEventValidator:  intake.NewInternalEventValidator(logger),
		EventDeduplicator:       intake.NewEventDeduplicator(logger),
		EventSignatureValidator: intake.NewEventSignatureValidator(logger, book, cfg.Intake.ForceIgnorePcesSignatures),
		OrphanBuffer:            intake.NewOrphanBuffer(logger),
		EventCreationManager:    intake.NewEventCreationManager(logger, cfg.Node.ID, cfg.Node.CreationRate),
		SelfEventSigner:         intake.NewSelfEventSigner(logger),
		PcesSequencer:           preconsensus.NewSequencer(),
		PcesWriter:              preconsensus.NewDefaultWriter(logger),
		RoundDurabilityBuffer:   preconsensus.NewRoundDurabilityBuffer(logger, 10*time.Second),
		ConsensusEngine:         consensus.NewDefaultEngine(logger, cfg.Mode(), cfg.Node.EventsPerRound, cfg.Node.AncientWindowSize),
		TransactionPrehandler:   eventhandling.NewTransactionPrehandler(logger),
		ConsensusRoundHandler:   eventhandling.NewConsensusRoundHandler(logger),
		StateHasher:             state.NewHasher(logger),
		StateSignatureCollector: state.NewSignatureCollector(logger, cfg.Node.SignatureThreshold),
		IssDetector:             state.NewIssDetector(logger, cfg.Node.ID),
		StateGarbageCollector:   state.NewGarbageCollector(logger, 8),
		LatestImmutableNexus:    state.NewNexus(),
		LatestCompleteNexus:     state.NewLatestCompleteStateNexus(),
		EventWindowManager:      consensus.NewWindowManager(cfg.Mode()),
		StatusStateMachine:      status.NewStateMachine(logger, cfg.Node.ObservationPeriod.Std()),
		StatusNexus:             status.NewNexus(),
		Gossip:                  gossip.NewLoopback(logger, w.GossipEventOutput().Forward),
	}
}

// Bind supplies component instances to every wiring. The PCES replayer is
// constructed here because it emits directly into wiring-owned output
// wires.
func (w *Wiring) Bind(components Components) {
	w.eventHasher.Bind(components.EventHasher)
	w.postHashCollector.Bind(components.PostHashCollector)
	w.internalEventValidator.Bind(components.InternalEventValidator)
	w.eventDeduplicator.Bind(components.EventDeduplicator)
	w.eventSignatureValidator.Bind(components.EventSignatureValidator)
	w.orphanBuffer.Bind(components.OrphanBuffer)
	w.eventCreationManager.Bind(components.EventCreationManager)
	w.selfEventSigner.Bind(components.SelfEventSigner)
	w.pcesSequencer.Bind(components.PcesSequencer)
	w.pcesWriter.Bind(components.PcesWriter)
	w.roundDurabilityBuffer.Bind(components.RoundDurabilityBuffer)
	w.consensusEngine.Bind(components.ConsensusEngine)
	w.transactionPrehandler.Bind(components.TransactionPrehandler)
	w.consensusRoundHandler.Bind(components.ConsensusRoundHandler)
	w.stateHasher.Bind(components.StateHasher)
	w.stateSignatureCollector.Bind(components.StateSignatureCollector)
	w.issDetector.Bind(components.IssDetector)
	w.stateGarbageCollector.Bind(components.StateGarbageCollector)
	w.latestImmutableNexus.Bind(components.LatestImmutableNexus)
	w.latestCompleteNexus.Bind(components.LatestCompleteNexus)
	w.eventWindowManager.Bind(components.EventWindowManager)
	w.statusStateMachine.Bind(components.StatusStateMachine)
	w.statusNexus.Bind(components.StatusNexus)
	w.gossipWiring.Bind(components.Gossip)

	w.pcesReplayer.Bind(preconsensus.NewReplayer(
		w.logger,
		w.replayerEventOutput.Forward,
		func() { w.doneStreamingOutput.Forward(wiring.NoInput{}) },
	))
}
