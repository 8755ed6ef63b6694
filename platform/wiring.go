// Package platform assembles the full component graph: every scheduler,
// wire, transformer, and heartbeat of the event-processing pipeline, plus
// the coordinator that drives the reconnect lifecycle.
package platform

import (
	"log/slog"
	"time"

	"github.com/matteriben/hedera-services/config"
	"github.com/matteriben/hedera-services/consensus"
	"github.com/matteriben/hedera-services/event"
	"github.com/matteriben/hedera-services/event/intake"
	"github.com/matteriben/hedera-services/event/preconsensus"
	"github.com/matteriben/hedera-services/eventhandling"
	"github.com/matteriben/hedera-services/gossip"
	"github.com/matteriben/hedera-services/metric"
	"github.com/matteriben/hedera-services/platform/status"
	"github.com/matteriben/hedera-services/state"
	"github.com/matteriben/hedera-services/wiring"
	"github.com/matteriben/hedera-services/wiring/componentwiring"
	"github.com/matteriben/hedera-services/wiring/counter"
)

// Wiring encapsulates the platform's component graph.
type Wiring struct {
	logger *slog.Logger
	cfg    *config.Config
	model  *wiring.Model

	// hashingCounter spans the event hasher and the post-hash collector
	// so the pair backpressures and flushes as a unit.
	hashingCounter *counter.BackpressureObjectCounter

	eventHasher             *componentwiring.ComponentWiring[*intake.EventHasher, *event.Event]
	postHashCollector       *componentwiring.ComponentWiring[*intake.PostHashCollector, *event.Event]
	internalEventValidator  *componentwiring.ComponentWiring[*intake.InternalEventValidator, *event.Event]
	eventDeduplicator       *componentwiring.ComponentWiring[*intake.EventDeduplicator, *event.Event]
	eventSignatureValidator *componentwiring.ComponentWiring[*intake.EventSignatureValidator, *event.Event]
	orphanBuffer            *componentwiring.ComponentWiring[*intake.OrphanBuffer, []*event.Event]
	pcesSequencer           *componentwiring.ComponentWiring[*preconsensus.Sequencer, *event.Event]
	pcesWriter              *componentwiring.ComponentWiring[preconsensus.Writer, int64]
	roundDurabilityBuffer   *componentwiring.ComponentWiring[*preconsensus.RoundDurabilityBuffer, []*consensus.Round]
	consensusEngine         *componentwiring.ComponentWiring[consensus.Engine, []*consensus.Round]
	eventCreationManager    *componentwiring.ComponentWiring[*intake.EventCreationManager, *event.Event]
	selfEventSigner         *componentwiring.ComponentWiring[*intake.SelfEventSigner, *event.Event]
	transactionPrehandler   *componentwiring.ComponentWiring[*eventhandling.TransactionPrehandler, wiring.NoInput]
	stateSignatureCollector *componentwiring.ComponentWiring[*state.SignatureCollector, []*state.ReservedSignedState]
	consensusRoundHandler   *componentwiring.ComponentWiring[*eventhandling.ConsensusRoundHandler, state.StateAndRound]
	stateHasher             *componentwiring.ComponentWiring[*state.Hasher, state.StateAndRound]
	eventWindowManager      *componentwiring.ComponentWiring[*consensus.WindowManager, event.Window]
	issDetector             *componentwiring.ComponentWiring[*state.IssDetector, []state.IssNotification]
	stateGarbageCollector   *componentwiring.ComponentWiring[*state.GarbageCollector, wiring.NoInput]
	latestImmutableNexus    *componentwiring.ComponentWiring[*state.Nexus, wiring.NoInput]
	latestCompleteNexus     *componentwiring.ComponentWiring[*state.LatestCompleteStateNexus, wiring.NoInput]
	statusStateMachine      *componentwiring.ComponentWiring[*status.StateMachine, status.PlatformStatus]
	statusNexus             *componentwiring.ComponentWiring[*status.Nexus, wiring.NoInput]
	gossipWiring            *componentwiring.ComponentWiring[gossip.Gossip, wiring.NoInput]
	pcesReplayer            *componentwiring.ComponentWiring[*preconsensus.Replayer, wiring.NoInput]

	// Manually driven sources at the edge of the graph.
	gossipEventOutput   *wiring.StandardOutputWire[*event.Event]
	replayerEventOutput *wiring.StandardOutputWire[*event.Event]
	doneStreamingOutput *wiring.StandardOutputWire[wiring.NoInput]

	// Entry point of the intake pipeline.
	pipelineInput *wiring.InputWire[*event.Event]

	// Clear and lifecycle wires prebuilt for the coordinator.
	dedupClear     *wiring.InputWire[wiring.NoInput]
	orphanClear    *wiring.InputWire[wiring.NoInput]
	gossipClear    *wiring.InputWire[wiring.NoInput]
	collectorClear *wiring.InputWire[wiring.NoInput]
	creationClear  *wiring.InputWire[wiring.NoInput]
	bufferClear    *wiring.InputWire[wiring.NoInput]

	gossipStart *wiring.InputWire[wiring.NoInput]
	gossipStop  *wiring.InputWire[wiring.NoInput]

	issOverrideInput *wiring.InputWire[*state.ReservedSignedState]

	updateWindowInput   *wiring.InputWire[event.Window]
	snapshotOverride    *wiring.InputWire[*consensus.Snapshot]
	replayInput         *wiring.InputWire[preconsensus.EventIterator]
	discontinuityInput  *wiring.InputWire[int64]
	minimumAncientInput *wiring.InputWire[int64]
	addressBookInput    *wiring.InputWire[intake.AddressBookUpdate]
	statusActionInput   *wiring.InputWire[status.Action]

	coordinator *Coordinator
}

// NewWiring builds the model and solders the full platform graph. The
// graph is complete but inert until components are bound and the model is
// started.
func NewWiring(logger *slog.Logger, cfg *config.Config, metrics *metric.MetricsRegistry) *Wiring {
	poolSize := wiring.PoolParallelism(cfg.Pool.DefaultPoolMultiplier, cfg.Pool.DefaultPoolConstant)
	logger.Info("default platform pool parallelism", "workers", poolSize)

	builder := wiring.NewModelBuilder(logger).WithDefaultPoolSize(poolSize)
	if metrics != nil {
		builder = builder.WithMetrics(metrics)
	}
	model := builder.Build()

	w := &Wiring{
		logger: logger,
		cfg:    cfg,
		model:  model,
	}

	// This counter spans both the event hasher and the post-hash
	// collector: concurrent schedulers cannot take backpressure from an
	// immediately subsequent scheduler, so the pair shares one counter.
	w.hashingCounter = counter.NewBackpressureObjectCounter(
		"hashingObjectCounter",
		cfg.Intake.EventHasherUnhandledCapacity,
		100*time.Nanosecond)

	w.buildSchedulers()
	w.wire()
	w.buildUnsolderedWires()

	w.coordinator = NewCoordinator(logger, metrics, w)
	return w
}

// buildSchedulers creates every component wiring from the configuration.
func (w *Wiring) buildSchedulers() {
	model, cfg := w.model, w.cfg

	hasherScheduler := wiring.NewSchedulerBuilder[*event.Event](model, "eventHasher").
		WithType(wiring.Concurrent).
		WithOnRamp(w.hashingCounter).
		Build()
	w.eventHasher = componentwiring.NewWithScheduler[*intake.EventHasher]("eventHasher", hasherScheduler)

	collectorScheduler := wiring.NewSchedulerBuilder[*event.Event](model, "postHashCollector").
		WithType(wiring.Sequential).
		WithOffRamp(w.hashingCounter).
		Build()
	w.postHashCollector = componentwiring.NewWithScheduler[*intake.PostHashCollector]("postHashCollector", collectorScheduler)

	w.internalEventValidator = componentwiring.New[*intake.InternalEventValidator, *event.Event](
		model, "internalEventValidator", cfg.SchedulerFor("internalEventValidator"))
	w.eventDeduplicator = componentwiring.New[*intake.EventDeduplicator, *event.Event](
		model, "eventDeduplicator", cfg.SchedulerFor("eventDeduplicator"))
	w.eventSignatureValidator = componentwiring.New[*intake.EventSignatureValidator, *event.Event](
		model, "eventSignatureValidator", cfg.SchedulerFor("eventSignatureValidator"))
	w.orphanBuffer = componentwiring.New[*intake.OrphanBuffer, []*event.Event](
		model, "orphanBuffer", cfg.SchedulerFor("orphanBuffer"))
	w.pcesSequencer = componentwiring.New[*preconsensus.Sequencer, *event.Event](
		model, "pcesSequencer", cfg.SchedulerFor("pcesSequencer"))
	w.pcesWriter = componentwiring.New[preconsensus.Writer, int64](
		model, "pcesWriter", cfg.SchedulerFor("pcesWriter"))
	w.roundDurabilityBuffer = componentwiring.New[*preconsensus.RoundDurabilityBuffer, []*consensus.Round](
		model, "roundDurabilityBuffer", cfg.SchedulerFor("roundDurabilityBuffer"))
	w.consensusEngine = componentwiring.New[consensus.Engine, []*consensus.Round](
		model, "consensusEngine", cfg.SchedulerFor("consensusEngine"))
	w.eventCreationManager = componentwiring.New[*intake.EventCreationManager, *event.Event](
		model, "eventCreationManager", cfg.SchedulerFor("eventCreationManager"))
	w.selfEventSigner = componentwiring.New[*intake.SelfEventSigner, *event.Event](
		model, "selfEventSigner", cfg.SchedulerFor("selfEventSigner"))
	w.transactionPrehandler = componentwiring.New[*eventhandling.TransactionPrehandler, wiring.NoInput](
		model, "transactionPrehandler", cfg.SchedulerFor("transactionPrehandler"))
	w.stateSignatureCollector = componentwiring.New[*state.SignatureCollector, []*state.ReservedSignedState](
		model, "stateSignatureCollector", cfg.SchedulerFor("stateSignatureCollector"))
	w.consensusRoundHandler = componentwiring.New[*eventhandling.ConsensusRoundHandler, state.StateAndRound](
		model, "consensusRoundHandler", cfg.SchedulerFor("consensusRoundHandler"))
	w.stateHasher = componentwiring.New[*state.Hasher, state.StateAndRound](
		model, "stateHasher", cfg.SchedulerFor("stateHasher"))
	w.issDetector = componentwiring.New[*state.IssDetector, []state.IssNotification](
		model, "issDetector", cfg.SchedulerFor("issDetector"))
	w.stateGarbageCollector = componentwiring.New[*state.GarbageCollector, wiring.NoInput](
		model, "stateGarbageCollector", cfg.SchedulerFor("stateGarbageCollector"))
	w.statusStateMachine = componentwiring.New[*status.StateMachine, status.PlatformStatus](
		model, "statusStateMachine", cfg.SchedulerFor("statusStateMachine"))
	w.gossipWiring = componentwiring.New[gossip.Gossip, wiring.NoInput](
		model, "gossip", cfg.SchedulerFor("gossip"))
	w.pcesReplayer = componentwiring.New[*preconsensus.Replayer, wiring.NoInput](
		model, "pcesReplayer", cfg.SchedulerFor("pcesReplayer"))

	w.eventWindowManager = componentwiring.New[*consensus.WindowManager, event.Window](
		model, "eventWindowManager", wiring.SchedulerConfiguration{Type: wiring.DirectThreadsafe})
	w.latestImmutableNexus = componentwiring.New[*state.Nexus, wiring.NoInput](
		model, "latestImmutableStateNexus", wiring.SchedulerConfiguration{Type: wiring.DirectThreadsafe})
	w.latestCompleteNexus = componentwiring.New[*state.LatestCompleteStateNexus, wiring.NoInput](
		model, "latestCompleteStateNexus", wiring.SchedulerConfiguration{Type: wiring.DirectThreadsafe})
	w.statusNexus = componentwiring.New[*status.Nexus, wiring.NoInput](
		model, "statusNexus", wiring.SchedulerConfiguration{Type: wiring.DirectThreadsafe})

	w.gossipEventOutput = wiring.NewStandardOutputWire[*event.Event](model, "gossipEventSource")
	w.replayerEventOutput = wiring.NewStandardOutputWire[*event.Event](model, "pcesReplayerEventSource")
	w.doneStreamingOutput = wiring.NewStandardOutputWire[wiring.NoInput](model, "pcesReplayerDoneStreaming")
}

// wire solders the components together. The order of ordered solders and
// INJECT edges is load-bearing; consult the wiring diagram before
// changing anything here.
func (w *Wiring) wire() {
	w.pipelineInput = componentwiring.GetInputWire(w.eventHasher, "hashEvent",
		func(h *intake.EventHasher, e *event.Event) *event.Event { return h.HashEvent(e) })

	w.gossipEventOutput.SolderTo(w.pipelineInput)
	w.replayerEventOutput.SolderTo(w.pipelineInput)

	w.eventHasher.OutputWire().SolderTo(componentwiring.GetInputWire(w.postHashCollector, "collectEvent",
		func(c *intake.PostHashCollector, e *event.Event) *event.Event { return c.CollectEvent(e) }))

	validateInput := componentwiring.GetOptionalInputWire(w.internalEventValidator, "validateEvent",
		func(v *intake.InternalEventValidator, e *event.Event) (*event.Event, bool) { return v.ValidateEvent(e) })
	w.postHashCollector.OutputWire().SolderTo(validateInput)

	w.internalEventValidator.OutputWire().SolderTo(
		componentwiring.GetOptionalInputWire(w.eventDeduplicator, "handleEvent",
			func(d *intake.EventDeduplicator, e *event.Event) (*event.Event, bool) { return d.HandleEvent(e) }))

	w.eventDeduplicator.OutputWire().SolderTo(
		componentwiring.GetOptionalInputWire(w.eventSignatureValidator, "validateSignature",
			func(v *intake.EventSignatureValidator, e *event.Event) (*event.Event, bool) {
				return v.ValidateSignature(e)
			}))

	w.eventSignatureValidator.OutputWire().SolderTo(
		componentwiring.GetInputWire(w.orphanBuffer, "handleEvent",
			func(b *intake.OrphanBuffer, e *event.Event) []*event.Event { return b.HandleEvent(e) }))

	splitOrphanBufferOutput := componentwiring.SplitOutput(w.orphanBuffer, "events")

	splitOrphanBufferOutput.SolderTo(componentwiring.GetInputWire(w.pcesSequencer, "assignStreamSequenceNumber",
		func(s *preconsensus.Sequencer, e *event.Event) *event.Event { return s.AssignStreamSequenceNumber(e) }))

	w.pcesSequencer.OutputWire().SolderTo(componentwiring.GetOptionalInputWire(w.pcesWriter, "writeEvent",
		func(writer preconsensus.Writer, e *event.Event) (int64, bool) { return writer.WriteEvent(e) }))

	w.pcesSequencer.OutputWire().SolderTo(componentwiring.GetInputWire(w.consensusEngine, "addEvent",
		func(engine consensus.Engine, e *event.Event) []*consensus.Round { return engine.AddEvent(e) }))

	splitOrphanBufferOutput.SolderTo(componentwiring.GetVoidInputWire(w.eventCreationManager, "registerEvent",
		func(m *intake.EventCreationManager, e *event.Event) { m.RegisterEvent(e) }))

	// This must use injection to avoid cyclical backpressure: events
	// leaving the orphan buffer feed gossip, and gossip feeds the intake.
	splitOrphanBufferOutput.SolderTo(componentwiring.GetVoidInputWire(w.gossipWiring, "eventInput",
		func(g gossip.Gossip, e *event.Event) { g.Broadcast(e) }), wiring.SolderInject)

	w.model.BuildHeartbeatWire(w.cfg.Heartbeats.EventCreationPeriod.Std()).SolderTo(
		componentwiring.GetOptionalInputWire(w.eventCreationManager, "maybeCreateEvent",
			func(m *intake.EventCreationManager, _ wiring.NoInput) (*event.Event, bool) {
				return m.MaybeCreateEvent(time.Now())
			}))

	w.statusActionInput = componentwiring.GetOptionalInputWire(w.statusStateMachine, "submitStatusAction",
		func(m *status.StateMachine, action status.Action) (status.PlatformStatus, bool) {
			return m.SubmitStatusAction(action)
		})
	w.model.BuildHeartbeatWire(w.cfg.Heartbeats.StatusStateMachinePeriod.Std()).SolderTo(
		componentwiring.GetOptionalInputWire(w.statusStateMachine, "heartbeat",
			func(m *status.StateMachine, _ wiring.NoInput) (status.PlatformStatus, bool) {
				return m.Heartbeat(time.Now())
			}), wiring.SolderOffer)

	w.eventCreationManager.OutputWire().SolderTo(componentwiring.GetInputWire(w.selfEventSigner, "signEvent",
		func(s *intake.SelfEventSigner, e *event.Event) *event.Event { return s.SignEvent(e) }))

	// Self events re-enter the pipeline they originated from; injection
	// breaks the cycle.
	w.selfEventSigner.OutputWire().SolderTo(validateInput, wiring.SolderInject)

	splitOrphanBufferOutput.SolderTo(componentwiring.GetVoidInputWire(w.transactionPrehandler,
		"prehandleApplicationTransactions",
		func(p *eventhandling.TransactionPrehandler, e *event.Event) { p.PrehandleApplicationTransactions(e) }))

	// Extract state signatures from preconsensus events for the
	// signature collector.
	preconsensusSigTransformer := wiring.NewTransformer(w.model,
		"extractPreconsensusSignatureTransactions", "preconsensus events",
		func(e *event.Event) []event.StateSignature { return e.StateSignatures })
	splitOrphanBufferOutput.SolderTo(preconsensusSigTransformer.InputWire())
	preconsensusSigTransformer.OutputWire().SolderTo(
		componentwiring.GetInputWire(w.stateSignatureCollector, "handlePreconsensusSignatures",
			func(c *state.SignatureCollector, sigs []event.StateSignature) []*state.ReservedSignedState {
				return c.HandlePreconsensusSignatures(sigs)
			}))

	w.wireEventWindow()
	w.wirePcesReplayer()
	w.wireConsensusRounds()
	w.wireStatePipeline()
	w.wireStatus()
}

// wireEventWindow fans the latest event window out to every component
// that needs it. All edges into the intake use injection: window updates
// originate downstream of the components they feed.
func (w *Wiring) wireEventWindow() {
	windowOutput := w.eventWindowManager.OutputWire()

	windowOutput.SolderTo(componentwiring.GetVoidInputWire(w.eventDeduplicator, "setEventWindow",
		func(d *intake.EventDeduplicator, window event.Window) { d.SetEventWindow(window) }), wiring.SolderInject)
	windowOutput.SolderTo(componentwiring.GetVoidInputWire(w.eventSignatureValidator, "setEventWindow",
		func(v *intake.EventSignatureValidator, window event.Window) { v.SetEventWindow(window) }), wiring.SolderInject)
	windowOutput.SolderTo(componentwiring.GetInputWire(w.orphanBuffer, "setEventWindow",
		func(b *intake.OrphanBuffer, window event.Window) []*event.Event { return b.SetEventWindow(window) }),
		wiring.SolderInject)
	windowOutput.SolderTo(componentwiring.GetVoidInputWire(w.gossipWiring, "eventWindow",
		func(g gossip.Gossip, window event.Window) { g.SetEventWindow(window) }), wiring.SolderInject)
	windowOutput.SolderTo(componentwiring.GetVoidInputWire(w.pcesWriter, "updateNonAncientEventBoundary",
		func(writer preconsensus.Writer, window event.Window) { writer.UpdateNonAncientEventBoundary(window) }),
		wiring.SolderInject)
	windowOutput.SolderTo(componentwiring.GetVoidInputWire(w.eventCreationManager, "setEventWindow",
		func(m *intake.EventCreationManager, window event.Window) { m.SetEventWindow(window) }), wiring.SolderInject)
	windowOutput.SolderTo(componentwiring.GetVoidInputWire(w.latestCompleteNexus, "updateEventWindow",
		func(n *state.LatestCompleteStateNexus, window event.Window) { n.UpdateEventWindow(window) }))
}

// wirePcesReplayer connects the replayer's outputs to the intake and the
// writer, and routes the end-of-replay signal.
func (w *Wiring) wirePcesReplayer() {
	w.replayInput = componentwiring.GetVoidInputWire(w.pcesReplayer, "replayPces",
		func(r *preconsensus.Replayer, iterator preconsensus.EventIterator) { r.ReplayEvents(iterator) })

	w.doneStreamingOutput.SolderTo(componentwiring.GetVoidInputWire(w.pcesWriter, "beginStreamingNewEvents",
		func(writer preconsensus.Writer, _ wiring.NoInput) { writer.BeginStreamingNewEvents() }))
	w.doneStreamingOutput.SolderTo(componentwiring.GetVoidInputWire(w.issDetector, "signalEndOfPreconsensusReplay",
		func(d *state.IssDetector, _ wiring.NoInput) { d.SignalEndOfPreconsensusReplay() }))

	doneReplayingTransformer := wiring.NewTransformer(w.model, "doneReplayingStatusAction", "done streaming",
		func(_ wiring.NoInput) status.Action {
			return status.Action{Kind: status.ActionDoneReplaying, Time: time.Now()}
		})
	w.doneStreamingOutput.SolderTo(doneReplayingTransformer.InputWire())
	doneReplayingTransformer.OutputWire().SolderTo(w.statusActionInput)
}

// wireConsensusRounds routes consensus rounds through the keystone flush
// protocol into the round durability buffer and on to the round handler.
func (w *Wiring) wireConsensusRounds() {
	consensusRoundOutput := componentwiring.SplitOutput(w.consensusEngine, "rounds")

	// The transformer that extracts the keystone sequence number is
	// soldered with specified ordering relative to the wire carrying
	// rounds to the durability buffer.
	keystoneSequenceTransformer := wiring.NewTransformer(w.model,
		"getKeystoneEventSequenceNumber", "rounds",
		func(round *consensus.Round) int64 { return round.KeystoneSequenceNumber() })
	keystoneSequenceTransformer.OutputWire().SolderTo(
		componentwiring.GetOptionalInputWire(w.pcesWriter, "submitFlushRequest",
			func(writer preconsensus.Writer, sequenceNumber int64) (int64, bool) {
				return writer.SubmitFlushRequest(sequenceNumber)
			}))

	// The flush request for a round's keystone must reach the PCES
	// writer before the round reaches the durability buffer. Otherwise a
	// full round-handler queue can block the buffer while the writer
	// never learns it must flush, and the keystone is *never* durable.
	consensusRoundOutput.OrderedSolderTo([]*wiring.InputWire[*consensus.Round]{
		keystoneSequenceTransformer.InputWire(),
		componentwiring.GetInputWire(w.roundDurabilityBuffer, "addRound",
			func(b *preconsensus.RoundDurabilityBuffer, round *consensus.Round) []*consensus.Round {
				return b.AddRound(round)
			}),
	})

	consensusRoundOutput.SolderTo(componentwiring.GetInputWire(w.eventWindowManager, "extractEventWindow",
		func(m *consensus.WindowManager, round *consensus.Round) event.Window {
			return m.ExtractEventWindow(round)
		}))

	splitDurabilityOutput := componentwiring.SplitOutput(w.roundDurabilityBuffer, "durable rounds")
	splitDurabilityOutput.SolderTo(componentwiring.GetInputWire(w.consensusRoundHandler, "handleConsensusRound",
		func(h *eventhandling.ConsensusRoundHandler, round *consensus.Round) state.StateAndRound {
			return h.HandleConsensusRound(round)
		}))

	// The durability notice feeds back from the writer to the buffer;
	// injection breaks the cycle.
	w.pcesWriter.OutputWire().SolderTo(
		componentwiring.GetInputWire(w.roundDurabilityBuffer, "setLatestDurableSequenceNumber",
			func(b *preconsensus.RoundDurabilityBuffer, sequenceNumber int64) []*consensus.Round {
				return b.SetLatestDurableSequenceNumber(sequenceNumber)
			}), wiring.SolderInject)

	w.model.BuildHeartbeatWire(w.cfg.Heartbeats.RoundDurabilityBufferPeriod.Std()).SolderTo(
		componentwiring.GetVoidInputWire(w.roundDurabilityBuffer, "checkForStaleRounds",
			func(b *preconsensus.RoundDurabilityBuffer, _ wiring.NoInput) { b.CheckForStaleRounds(time.Now()) }))
}

// wireStatePipeline routes new states through hashing, signature
// collection, and ISS detection, with reservations balanced at every
// fan-out.
func (w *Wiring) wireStatePipeline() {
	// Each round-handler output fans out to three sinks; the reserver
	// takes the extra reservations before any sink can release.
	newStateOutput := wiring.BuildAdvancedTransformer(
		w.consensusRoundHandler.OutputWire(), "newStateReserver", state.NewStateAndRoundReserver())

	newStateOutput.SolderTo(componentwiring.GetVoidInputWire(w.latestImmutableNexus, "setState",
		func(n *state.Nexus, sar state.StateAndRound) { n.SetState(sar.State) }))
	newStateOutput.SolderTo(componentwiring.GetInputWire(w.stateHasher, "hashState",
		func(h *state.Hasher, sar state.StateAndRound) state.StateAndRound { return h.HashState(sar) }))
	newStateOutput.SolderTo(componentwiring.GetVoidInputWire(w.stateGarbageCollector, "registerState",
		func(gc *state.GarbageCollector, sar state.StateAndRound) { gc.RegisterState(sar) }))

	w.model.BuildHeartbeatWire(w.cfg.Heartbeats.StateGarbageCollectorPeriod.Std()).SolderTo(
		componentwiring.GetVoidInputWire(w.stateGarbageCollector, "heartbeat",
			func(gc *state.GarbageCollector, _ wiring.NoInput) { gc.Heartbeat(time.Now()) }), wiring.SolderOffer)

	// Hashed states fan out to the collector (twice: signatures from the
	// round, and the state itself) and the ISS detector.
	hashedStateOutput := wiring.BuildAdvancedTransformer(
		w.stateHasher.OutputWire(), "hashedStateReserver", state.NewStateAndRoundReserver())

	// The signature extraction releases its reservation: only the
	// round's payload travels on.
	postconsensusSigTransformer := wiring.NewTransformer(w.model,
		"extractConsensusSignatureTransactions", "hashed states",
		func(sar state.StateAndRound) []event.StateSignature {
			defer sar.State.Close()
			var signatures []event.StateSignature
			for _, e := range sar.Round.Events {
				signatures = append(signatures, e.StateSignatures...)
			}
			return signatures
		})
	hashedStateOutput.SolderTo(postconsensusSigTransformer.InputWire())
	postconsensusSigTransformer.OutputWire().SolderTo(
		componentwiring.GetInputWire(w.stateSignatureCollector, "handlePostconsensusSignatures",
			func(c *state.SignatureCollector, sigs []event.StateSignature) []*state.ReservedSignedState {
				return c.HandlePostconsensusSignatures(sigs)
			}))

	hashedStateOutput.SolderTo(componentwiring.GetInputWire(w.stateSignatureCollector, "addReservedState",
		func(c *state.SignatureCollector, sar state.StateAndRound) []*state.ReservedSignedState {
			return c.AddReservedState(sar.State)
		}))

	hashedStateOutput.SolderTo(componentwiring.GetInputWire(w.issDetector, "handleStateAndRound",
		func(d *state.IssDetector, sar state.StateAndRound) []state.IssNotification {
			return d.HandleStateAndRound(sar)
		}))

	// Completed states flow through the completeness filter to the
	// latest-complete nexus. The filter releases what it drops.
	splitCollectorOutput := componentwiring.SplitOutput(w.stateSignatureCollector, "reserved states")
	completeStates := splitCollectorOutput.BuildFilter("completeStateFilter", "states",
		func(rs *state.ReservedSignedState) bool {
			if rs.Get().IsComplete() {
				return true
			}
			rs.Close()
			return false
		})
	completeStates.SolderTo(componentwiring.GetVoidInputWire(w.latestCompleteNexus, "setStateIfNewer",
		func(n *state.LatestCompleteStateNexus, rs *state.ReservedSignedState) { n.SetStateIfNewer(rs) }))
}

// wireStatus routes status transitions to the nexus and the components
// that modulate their behavior by status.
func (w *Wiring) wireStatus() {
	w.statusStateMachine.OutputWire().SolderTo(componentwiring.GetVoidInputWire(w.statusNexus, "setCurrentStatus",
		func(n *status.Nexus, s status.PlatformStatus) { n.SetCurrentStatus(s) }))
	w.statusStateMachine.OutputWire().SolderTo(
		componentwiring.GetVoidInputWire(w.eventCreationManager, "updatePlatformStatus",
			func(m *intake.EventCreationManager, s status.PlatformStatus) { m.UpdatePlatformStatus(s) }))

	// Catastrophic and self ISS observations force the node out of
	// active participation.
	splitIssOutput := componentwiring.SplitOutput(w.issDetector, "iss notifications")
	issActionTransformer := wiring.NewTransformer(w.model, "issStatusAction", "iss notifications",
		func(n state.IssNotification) status.Action {
			return status.Action{Kind: status.ActionFallenBehind, Time: time.Now()}
		})
	splitIssOutput.SolderTo(issActionTransformer.InputWire())
	issActionTransformer.OutputWire().SolderTo(w.statusActionInput)
}

// buildUnsolderedWires forces construction of wires that are not soldered
// but are used later in the lifecycle, so bind-time validation sees them.
func (w *Wiring) buildUnsolderedWires() {
	w.dedupClear = componentwiring.GetVoidInputWire(w.eventDeduplicator, "clear",
		func(d *intake.EventDeduplicator, _ wiring.NoInput) { d.Clear() })
	w.orphanClear = componentwiring.GetVoidInputWire(w.orphanBuffer, "clear",
		func(b *intake.OrphanBuffer, _ wiring.NoInput) { b.Clear() })
	w.gossipClear = componentwiring.GetVoidInputWire(w.gossipWiring, "clear",
		func(g gossip.Gossip, _ wiring.NoInput) { g.Clear() })
	w.collectorClear = componentwiring.GetVoidInputWire(w.stateSignatureCollector, "clear",
		func(c *state.SignatureCollector, _ wiring.NoInput) { c.Clear() })
	w.creationClear = componentwiring.GetVoidInputWire(w.eventCreationManager, "clear",
		func(m *intake.EventCreationManager, _ wiring.NoInput) { m.Clear() })
	w.bufferClear = componentwiring.GetVoidInputWire(w.roundDurabilityBuffer, "clear",
		func(b *preconsensus.RoundDurabilityBuffer, _ wiring.NoInput) { b.Clear() })

	w.gossipStart = componentwiring.GetVoidInputWire(w.gossipWiring, "start",
		func(g gossip.Gossip, _ wiring.NoInput) { g.Start() })
	w.gossipStop = componentwiring.GetVoidInputWire(w.gossipWiring, "stop",
		func(g gossip.Gossip, _ wiring.NoInput) { g.Stop() })

	w.updateWindowInput = componentwiring.GetInputWire(w.eventWindowManager, "updateEventWindow",
		func(m *consensus.WindowManager, window event.Window) event.Window { return m.UpdateEventWindow(window) })
	w.snapshotOverride = componentwiring.GetVoidInputWire(w.consensusEngine, "outOfBandSnapshotUpdate",
		func(engine consensus.Engine, snapshot *consensus.Snapshot) { engine.OutOfBandSnapshotUpdate(snapshot) })
	w.discontinuityInput = componentwiring.GetOptionalInputWire(w.pcesWriter, "registerDiscontinuity",
		func(writer preconsensus.Writer, round int64) (int64, bool) { return writer.RegisterDiscontinuity(round) })
	w.minimumAncientInput = componentwiring.GetVoidInputWire(w.pcesWriter, "setMinimumAncientIdentifierToStore",
		func(writer preconsensus.Writer, identifier int64) { writer.SetMinimumAncientIdentifierToStore(identifier) })
	w.addressBookInput = componentwiring.GetVoidInputWire(w.eventSignatureValidator, "updateAddressBooks",
		func(v *intake.EventSignatureValidator, update intake.AddressBookUpdate) { v.UpdateAddressBooks(update) })

	w.issOverrideInput = componentwiring.GetVoidInputWire(w.issDetector, "overridingState",
		func(d *state.IssDetector, rs *state.ReservedSignedState) { d.OverridingState(rs) })
}
