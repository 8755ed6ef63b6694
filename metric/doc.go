// Package metric provides Prometheus-based metrics collection for platform
// monitoring and observability.
//
// The package offers a centralized metrics registry managing both core
// platform metrics (component status, event pipeline counters, coordinator
// operations) and service-specific metrics registered by individual
// subsystems, most notably the per-scheduler gauges published by the wiring
// model.
//
// # Architecture
//
//  1. Core Metrics: platform-level metrics automatically registered (Metrics type)
//  2. Service Registry: extensible registration for service-specific metrics
//     (MetricsRegistrar interface)
//
// The HTTP surface that exposes the registry lives in the diagnostics
// package; this package stays transport-free.
//
// # Metrics Documentation
//
// GenerateDocumentation renders a sorted inventory of the name, type, and
// help text of every metric currently gatherable from the registry. The platform emits it at startup so
// the operator-facing documentation can never drift from the code.
package metric
