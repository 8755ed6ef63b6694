package platform

import (
	"log/slog"

	"github.com/matteriben/hedera-services/metric"
	"github.com/matteriben/hedera-services/wiring"
)

// Coordinator drives the clearing of the platform wiring. The live graph
// contains cycles (consensus engine → event creation → validators →
// consensus engine, event window feedback, durability feedback), so the
// pipeline can only be drained by squelching the cycle participants
// first.
type Coordinator struct {
	logger  *slog.Logger
	metrics *metric.MetricsRegistry
	wiring  *Wiring
}

// NewCoordinator creates a coordinator over the given wiring.
func NewCoordinator(logger *slog.Logger, metrics *metric.MetricsRegistry, w *Wiring) *Coordinator {
	return &Coordinator{
		logger:  logger,
		metrics: metrics,
		wiring:  w,
	}
}

// FlushIntakePipeline flushes every component prior to the consensus
// engine. After it returns there is no remaining work in the intake
// pipeline, provided no new events are injected and the orphan buffer
// releases nothing further.
//
// The order of the lines within this function matters. Do not alter it
// without consulting the wiring diagram.
func (c *Coordinator) FlushIntakePipeline() {
	w := c.wiring

	// The event hasher and the post-hash collector cannot be flushed
	// independently: they share one object counter. Waiting until the
	// shared counter is empty is the joint flush of the pair.
	w.hashingCounter.WaitUntilEmpty()

	w.internalEventValidator.Flush()
	w.eventDeduplicator.Flush()
	w.eventSignatureValidator.Flush()
	w.orphanBuffer.Flush()
	w.gossipWiring.Flush()
	w.consensusEngine.Flush()
	w.transactionPrehandler.Flush()
	w.eventCreationManager.Flush()

	if c.metrics != nil {
		c.metrics.CoreMetrics().IntakeFlushes.Inc()
	}
}

// Clear safely drains and resets the pipeline for a reconnect. After it
// returns, no work sits in any wiring queue and every component that
// holds reconnect-sensitive state has been reset.
//
// The order of the phases, and of the lines within them, matters. Do not
// alter it without consulting the wiring diagram.
func (c *Coordinator) Clear() {
	w := c.wiring

	// Phase 1: squelch.
	// Break the cycles. Flush each squelched component in case a task
	// was already executing when squelch was activated: squelch only
	// affects tasks that have not started.
	w.consensusEngine.StartSquelching()
	w.consensusEngine.Flush()
	w.eventCreationManager.StartSquelching()
	w.eventCreationManager.Flush()

	// Squelching the round handler is not strictly required to stop
	// dataflow, but it stops the handler wasting time on rounds that are
	// about to be discarded.
	w.consensusRoundHandler.StartSquelching()
	w.consensusRoundHandler.Flush()

	// Phase 2: flush.
	// With the cycles broken, drain everything out of the system.
	c.FlushIntakePipeline()
	w.stateHasher.Flush()
	w.stateSignatureCollector.Flush()
	w.roundDurabilityBuffer.Flush()
	w.consensusRoundHandler.Flush()

	// Phase 3: stop squelching.
	// Everything is flushed; normal operation may resume.
	w.consensusEngine.StopSquelching()
	w.eventCreationManager.StopSquelching()
	w.consensusRoundHandler.StopSquelching()

	// Phase 4: clear.
	// Data is no longer moving. Reset the internal structures that must
	// not survive a reconnect.
	w.dedupClear.Inject(wiring.NoInput{})
	w.orphanClear.Inject(wiring.NoInput{})
	w.gossipClear.Inject(wiring.NoInput{})
	w.collectorClear.Inject(wiring.NoInput{})
	w.creationClear.Inject(wiring.NoInput{})
	w.bufferClear.Inject(wiring.NoInput{})

	// The injected clears run asynchronously on their schedulers; wait
	// for them so the system is quiescent when this returns.
	w.eventDeduplicator.Flush()
	w.orphanBuffer.Flush()
	w.gossipWiring.Flush()
	w.stateSignatureCollector.Flush()
	w.eventCreationManager.Flush()
	w.roundDurabilityBuffer.Flush()

	if c.metrics != nil {
		c.metrics.CoreMetrics().PipelineClears.Inc()
	}
	c.logger.Info("platform wiring cleared")
}
