package platform

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteriben/hedera-services/config"
	"github.com/matteriben/hedera-services/event"
	"github.com/matteriben/hedera-services/event/preconsensus"
	"github.com/matteriben/hedera-services/gossip"
	"github.com/matteriben/hedera-services/metric"
	"github.com/matteriben/hedera-services/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Node.EventsPerRound = 2
	cfg.Node.SignatureThreshold = 1
	cfg.Diagnostics.Enabled = false
	cfg.Heartbeats.RoundDurabilityBufferPeriod = config.Duration(50 * time.Millisecond)
	cfg.Heartbeats.StateGarbageCollectorPeriod = config.Duration(50 * time.Millisecond)
	// Keep the node observing so heartbeat-driven self-event creation
	// does not race the deterministic event chains these tests submit.
	cfg.Node.ObservationPeriod = config.Duration(time.Hour)
	return cfg
}

// platformHarness bundles a running platform for tests.
type platformHarness struct {
	wiring     *Wiring
	components Components
	loopback   *gossip.Loopback
}

func startPlatform(t *testing.T) *platformHarness {
	t.Helper()
	logger := testLogger()
	cfg := testConfig()

	w := NewWiring(logger, cfg, metric.NewMetricsRegistry())
	components := DefaultComponents(logger, cfg, w)
	w.Bind(components)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	// An empty replay switches the PCES writer into live mode, so
	// durability genuinely depends on flush requests.
	w.ReplayPces(preconsensus.NewSliceIterator(nil))
	w.StartGossip()
	w.FlushIntakePipeline()

	return &platformHarness{
		wiring:     w,
		components: components,
		loopback:   components.Gossip.(*gossip.Loopback),
	}
}

// eventChain builds n signed events from creator 0, each the self-child
// of the previous.
func eventChain(n int) []*event.Event {
	events := make([]*event.Event, 0, n)
	var parent *event.Descriptor
	for i := 0; i < n; i++ {
		e := event.NewEvent(0, int64(i+1), 1)
		e.SelfParent = parent
		e.Hash = e.ComputeHash()
		e.Signature = event.SignBytes(e.Hash, e.CreatorID)
		d := e.Descriptor()
		parent = &d
		events = append(events, e)
	}
	return events
}

func TestEventsFlowToHandledRounds(t *testing.T) {
	h := startPlatform(t)

	for _, e := range eventChain(4) {
		h.loopback.SubmitReceivedEvent(e)
	}

	// Four events, two per round: two rounds must be handled, and only
	// after their keystones were flushed by the PCES writer.
	require.Eventually(t, func() bool {
		return h.components.ConsensusRoundHandler.HandledRounds() >= 2
	}, 5*time.Second, 5*time.Millisecond)

	writer := h.components.PcesWriter.(*preconsensus.DefaultWriter)
	buffer := h.components.RoundDurabilityBuffer
	assert.GreaterOrEqual(t, writer.LatestDurableSequenceNumber(), int64(3),
		"all four events must be durable once both rounds were handled")
	assert.GreaterOrEqual(t, buffer.LatestDurableSequenceNumber(), int64(3))

	// The round handler's states reached the immutable-state nexus.
	require.Eventually(t, func() bool {
		return h.components.LatestImmutableNexus.Round() >= 2
	}, 5*time.Second, 5*time.Millisecond)
}

func TestDurabilityGateHoldsRounds(t *testing.T) {
	h := startPlatform(t)

	events := eventChain(2)
	h.loopback.SubmitReceivedEvent(events[0])
	h.loopback.SubmitReceivedEvent(events[1])

	require.Eventually(t, func() bool {
		return h.components.ConsensusRoundHandler.HandledRounds() >= 1
	}, 5*time.Second, 5*time.Millisecond)

	// At the moment a round is handled, its keystone must be durable.
	handler := h.components.ConsensusRoundHandler
	buffer := h.components.RoundDurabilityBuffer
	assert.GreaterOrEqual(t, buffer.LatestDurableSequenceNumber(), int64(1))
	assert.Equal(t, int64(1), handler.LastRound())
}

func TestClearLeavesNoPendingWork(t *testing.T) {
	h := startPlatform(t)

	for _, e := range eventChain(6) {
		h.loopback.SubmitReceivedEvent(e)
	}
	require.Eventually(t, func() bool {
		return h.components.ConsensusRoundHandler.HandledRounds() >= 3
	}, 5*time.Second, 5*time.Millisecond)

	h.wiring.Clear()

	assert.Equal(t, 0, h.components.EventDeduplicator.TrackedEvents())
	assert.Equal(t, 0, h.components.OrphanBuffer.HeldCount())
	assert.Equal(t, 0, h.components.StateSignatureCollector.HeldStates())
	assert.Equal(t, 0, h.components.RoundDurabilityBuffer.PendingRounds())
	assert.Equal(t, 0, h.loopback.OutboundCount())
	assert.Equal(t, int64(0), h.wiring.IntakeQueueSize())
}

func TestClearIsIdempotent(t *testing.T) {
	h := startPlatform(t)

	for _, e := range eventChain(4) {
		h.loopback.SubmitReceivedEvent(e)
	}
	require.Eventually(t, func() bool {
		return h.components.ConsensusRoundHandler.HandledRounds() >= 2
	}, 5*time.Second, 5*time.Millisecond)

	h.wiring.Clear()
	handledAfterFirst := h.components.ConsensusRoundHandler.HandledRounds()

	// A second clear with no interleaved submissions changes nothing.
	h.wiring.Clear()
	assert.Equal(t, handledAfterFirst, h.components.ConsensusRoundHandler.HandledRounds())
	assert.Equal(t, 0, h.components.EventDeduplicator.TrackedEvents())
	assert.Equal(t, 0, h.components.RoundDurabilityBuffer.PendingRounds())
}

func TestClearThenResumeProcessing(t *testing.T) {
	h := startPlatform(t)

	events := eventChain(8)
	for _, e := range events[:4] {
		h.loopback.SubmitReceivedEvent(e)
	}
	require.Eventually(t, func() bool {
		return h.components.ConsensusRoundHandler.HandledRounds() >= 2
	}, 5*time.Second, 5*time.Millisecond)

	h.wiring.Clear()

	// After clear, the pipeline accepts and processes new events. The
	// deduplicator and orphan buffer were cleared, so the full chain can
	// be resubmitted from its root and flows again.
	for _, e := range events {
		h.loopback.SubmitReceivedEvent(e)
	}
	require.Eventually(t, func() bool {
		return h.components.ConsensusRoundHandler.HandledRounds() >= 6
	}, 5*time.Second, 5*time.Millisecond)
}

func TestFlushIntakePipelineIdempotent(t *testing.T) {
	h := startPlatform(t)

	for _, e := range eventChain(2) {
		h.loopback.SubmitReceivedEvent(e)
	}
	h.wiring.FlushIntakePipeline()
	size := h.wiring.IntakeQueueSize()
	h.wiring.FlushIntakePipeline()
	assert.Equal(t, size, h.wiring.IntakeQueueSize())
	assert.Equal(t, int64(0), size)
}

func TestWiringDiagramDescribesPlatform(t *testing.T) {
	h := startPlatform(t)

	diagram := h.wiring.GenerateWiringDiagram()
	assert.Contains(t, diagram, "flowchart TD")
	assert.Contains(t, diagram, "eventHasher")
	assert.Contains(t, diagram, "consensusEngine")
	assert.Contains(t, diagram, "roundDurabilityBuffer")
	assert.Contains(t, diagram, "INJECT")
	assert.Contains(t, diagram, "ordered")
}

func TestLoadInitialStateValidation(t *testing.T) {
	h := startPlatform(t)

	unhashed := state.NewReservedSignedState(state.NewSignedState(9))
	err := h.wiring.LoadInitialState(unhashed)
	require.Error(t, err, "an unhashed initial state must be rejected")
	unhashed.Close()

	hashed := state.NewReservedSignedState(state.NewSignedState(9))
	hashed.Get().Hash = event.Hash{1, 2, 3}
	require.NoError(t, h.wiring.LoadInitialState(hashed))
}

func TestUpdateEventWindowReachesComponents(t *testing.T) {
	h := startPlatform(t)

	window := event.Window{
		LatestConsensusRound: 40,
		AncientThreshold:     30,
		ExpiredThreshold:     20,
		Mode:                 event.GenerationThreshold,
	}
	h.wiring.UpdateEventWindow(window)

	assert.Equal(t, window, h.components.EventWindowManager.Latest())

	// Intake components observe the window: an ancient event is dropped
	// without entering the orphan buffer.
	ancient := eventChain(1)[0]
	h.loopback.SubmitReceivedEvent(ancient)
	h.wiring.FlushIntakePipeline()
	assert.Equal(t, 0, h.components.OrphanBuffer.HeldCount())
	assert.Equal(t, 0, h.components.EventDeduplicator.TrackedEvents())
}
