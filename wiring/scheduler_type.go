package wiring

import "fmt"

// SchedulerType selects the execution policy of a task scheduler.
type SchedulerType int

const (
	// Sequential schedulers run one task at a time, in FIFO submission
	// order, on a dedicated goroutine. The default for stateful stages.
	Sequential SchedulerType = iota

	// Concurrent schedulers run tasks in parallel on the model's shared
	// pool with no ordering guarantees. For stateless CPU-heavy stages.
	Concurrent

	// Direct schedulers run tasks immediately on the submitting
	// goroutine with no synchronization. Near-free adapters.
	Direct

	// DirectThreadsafe schedulers run tasks on the submitting goroutine,
	// serialized by an internal lock so concurrent callers are safe.
	DirectThreadsafe

	// NoOp schedulers silently drop all tasks without invoking handlers.
	NoOp
)

// String returns the canonical configuration name of the scheduler type.
func (t SchedulerType) String() string {
	switch t {
	case Sequential:
		return "sequential"
	case Concurrent:
		return "concurrent"
	case Direct:
		return "direct"
	case DirectThreadsafe:
		return "direct_threadsafe"
	case NoOp:
		return "no_op"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseSchedulerType converts a configuration string into a SchedulerType.
func ParseSchedulerType(s string) (SchedulerType, error) {
	switch s {
	case "sequential":
		return Sequential, nil
	case "concurrent":
		return Concurrent, nil
	case "direct":
		return Direct, nil
	case "direct_threadsafe":
		return DirectThreadsafe, nil
	case "no_op":
		return NoOp, nil
	default:
		return 0, fmt.Errorf("unknown scheduler type %q", s)
	}
}

// usesQueue reports whether the type holds submitted tasks in a queue. Only
// queueing schedulers can deadlock under cyclic backpressure, and only they
// support flushing and squelching.
func (t SchedulerType) usesQueue() bool {
	return t == Sequential || t == Concurrent
}

// SchedulerConfiguration carries the per-component scheduler settings
// recognized by the configuration layer.
type SchedulerConfiguration struct {
	// Type is the execution policy.
	Type SchedulerType

	// UnhandledTaskCapacity caps the number of unhandled tasks before
	// default-edge submitters park. Zero means unbounded.
	UnhandledTaskCapacity int64

	// Flushable enables Flush on the scheduler.
	Flushable bool

	// Squelchable enables StartSquelching on the scheduler.
	Squelchable bool
}

// NoOpConfiguration is the configuration used for disabled publishers.
var NoOpConfiguration = SchedulerConfiguration{Type: NoOp}
