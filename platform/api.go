package platform

import (
	"fmt"

	"github.com/matteriben/hedera-services/consensus"
	"github.com/matteriben/hedera-services/errors"
	"github.com/matteriben/hedera-services/event"
	"github.com/matteriben/hedera-services/event/intake"
	"github.com/matteriben/hedera-services/event/preconsensus"
	"github.com/matteriben/hedera-services/platform/status"
	"github.com/matteriben/hedera-services/state"
	"github.com/matteriben/hedera-services/wiring"
)

// Model returns the underlying wiring model.
func (w *Wiring) Model() *wiring.Model { return w.model }

// Coordinator returns the lifecycle coordinator.
func (w *Wiring) Coordinator() *Coordinator { return w.coordinator }

// Start validates the graph and starts the model.
func (w *Wiring) Start() error {
	return w.model.Start()
}

// Stop stops the model; in-flight tasks finish, queued tasks are
// discarded.
func (w *Wiring) Stop() {
	w.model.Stop()
}

// Clear drives the coordinator's four-phase clear.
func (w *Wiring) Clear() {
	w.coordinator.Clear()
}

// FlushIntakePipeline flushes the intake pipeline.
func (w *Wiring) FlushIntakePipeline() {
	w.coordinator.FlushIntakePipeline()
}

// GossipEventOutput is the wire into which the gossip transport emits
// events received from peers.
func (w *Wiring) GossipEventOutput() *wiring.StandardOutputWire[*event.Event] {
	return w.gossipEventOutput
}

// StartGossip begins gossiping.
func (w *Wiring) StartGossip() {
	w.gossipStart.Inject(wiring.NoInput{})
}

// StopGossip halts gossiping permanently.
func (w *Wiring) StopGossip() {
	w.gossipStop.Inject(wiring.NoInput{})
}

// ReplayPces streams the durable preconsensus log back through the intake
// pipeline.
func (w *Wiring) ReplayPces(iterator preconsensus.EventIterator) {
	w.replayInput.Put(iterator)
}

// UpdateEventWindow injects a new event window into every component that
// needs it, then flushes gossip so asynchronous observers have fully
// ingested the window before the caller continues.
func (w *Wiring) UpdateEventWindow(window event.Window) {
	w.updateWindowInput.Inject(window)
	w.gossipWiring.Flush()
}

// ConsensusSnapshotOverride injects a consensus snapshot at restart and
// reconnect boundaries.
func (w *Wiring) ConsensusSnapshotOverride(snapshot *consensus.Snapshot) {
	w.snapshotOverride.Inject(snapshot)
}

// RegisterPcesDiscontinuity records a break in the preconsensus stream.
func (w *Wiring) RegisterPcesDiscontinuity(round int64) {
	w.discontinuityInput.Put(round)
}

// SetMinimumAncientIdentifierToStore prunes the preconsensus stream.
func (w *Wiring) SetMinimumAncientIdentifierToStore(identifier int64) {
	w.minimumAncientInput.Inject(identifier)
}

// UpdateAddressBooks replaces the signature validator's address book.
func (w *Wiring) UpdateAddressBooks(update intake.AddressBookUpdate) {
	w.addressBookInput.Put(update)
}

// SubmitStatusAction feeds one action to the status state machine.
func (w *Wiring) SubmitStatusAction(action status.Action) {
	w.statusActionInput.Put(action)
}

// LoadInitialState primes the ISS detector with the state loaded at
// startup or reconnect. The wiring takes ownership of the reservation.
// When validateInitialState is configured, a state whose hash was never
// computed is rejected before it can poison hash comparisons.
func (w *Wiring) LoadInitialState(rs *state.ReservedSignedState) error {
	if w.cfg.Intake.ValidateInitialState && rs.Get().Hash.IsZero() {
		return errors.WrapInvalid(
			fmt.Errorf("state for round %d has no hash", rs.Get().Round),
			"Wiring", "LoadInitialState", "initial state validation")
	}
	w.issOverrideInput.Put(rs)
	return nil
}

// IntakeQueueSize reports the number of unprocessed tasks at the front of
// the intake pipeline, for backpressure on gossip and event creation.
// Tasks accumulate in the post-hash collector because of how the
// concurrent hasher takes backpressure, so that scheduler's count is the
// meaningful figure.
func (w *Wiring) IntakeQueueSize() int64 {
	return w.postHashCollector.Scheduler().UnprocessedTaskCount()
}

// GenerateWiringDiagram renders the platform graph as mermaid text.
func (w *Wiring) GenerateWiringDiagram() string {
	return w.model.GenerateWiringDiagram()
}

// SchedulerStats snapshots every registered scheduler, sorted by name.
func (w *Wiring) SchedulerStats() []wiring.SchedulerStats {
	return w.model.SchedulerStats()
}
