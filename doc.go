// Package hederaservices is the root of the platform's component wiring and
// scheduling framework, together with the event-processing components that
// are attached to it.
//
// # Architecture
//
// The repository composes four layers, leaves first:
//
//	┌─────────────────────────────────────┐
//	│        Platform Coordinator         │  reconnect lifecycle:
//	│   (squelch, flush, clear phases)    │  drain and reset safely
//	└─────────────────────────────────────┘
//	           ↓ drives
//	┌─────────────────────────────────────┐
//	│          Wiring Model               │  typed wires, solder types,
//	│ (schedulers, transformers, solder)  │  transformers, heartbeats
//	└─────────────────────────────────────┘
//	           ↓ schedules via
//	┌─────────────────────────────────────┐
//	│        Task Schedulers              │  SEQUENTIAL, CONCURRENT,
//	│  (per-component execution policy)   │  DIRECT, NO_OP variants
//	└─────────────────────────────────────┘
//	           ↓ meter work with
//	┌─────────────────────────────────────┐
//	│        Object Counters              │  in-flight task counts,
//	│   (backpressure, joint flushes)     │  capacity parking
//	└─────────────────────────────────────┘
//
// Domain components (event hasher, deduplicator, validators, orphan buffer,
// consensus engine, PCES writer, round durability buffer, round handler,
// state hasher, ISS detector) are plugged into the model as typed handlers
// via the componentwiring binding surface. Components never reference each
// other directly; all dataflow runs over soldered wires.
//
// Package layout:
//
//   - wiring: the dataflow model (schedulers, wires, transformers)
//   - wiring/counter: object counters with optional backpressure
//   - wiring/componentwiring: typed component binding surface
//   - platform: full platform graph construction and the coordinator
//   - event, event/intake, event/preconsensus: event pipeline components
//   - consensus, state, gossip: consensus-side components and contracts
//   - config, errors, metric, diagnostics: ambient infrastructure
package hederaservices
