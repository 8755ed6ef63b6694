// Package wiring provides the component wiring model: task schedulers with
// configurable execution policies, typed wires soldered into a dataflow
// graph, transformers, splitters, filters, heartbeat sources, and the
// model-level validation that keeps the graph deadlock-free.
//
// # Model
//
// A Model owns every scheduler, the shared concurrent pool, and all
// heartbeat sources. Schedulers are created through SchedulerBuilder and
// expose typed input wires (entry points bound to handlers) and one typed
// output wire (the handler's return value). Output wires are soldered to
// input wires; each solder edge is default (blocks on a full target),
// INJECT (bypasses capacity), or OFFER (non-blocking, drops on full).
//
// # Backpressure
//
// Every scheduler meters in-flight work through an object counter. When a
// scheduler is built with a capacity, submissions over default edges park
// until the counter drops below capacity. INJECT edges force the counter
// up regardless; they are the only legal way to close a cycle through
// queueing schedulers, and Model.Start rejects graphs that close a cycle
// through a SEQUENTIAL or CONCURRENT scheduler any other way.
//
// # Ordering
//
// SEQUENTIAL schedulers run one task at a time in submission order.
// OrderedSolderTo guarantees per-item delivery order across a list of
// sinks: for every value emitted, the first sink receives it before the
// second is offered it, and so on.
package wiring
