// Package counter provides object counters that track in-flight tasks for
// schedulers, with optional capacity-based backpressure.
//
// A counter may be shared by more than one scheduler. Sharing the counter
// makes the pair flushable as a unit: waiting until the shared counter is
// empty is equivalent to flushing both schedulers together.
package counter

import (
	"context"
	"time"
)

// ObjectCounter tracks a non-negative number of in-flight objects.
//
// Every on-ramp must be matched by exactly one off-ramp. Implementations
// must never let the count go negative.
type ObjectCounter interface {
	// OnRamp increments the count, parking until capacity permits.
	OnRamp()

	// InterruptableOnRamp increments the count, parking until capacity
	// permits or ctx is cancelled. Returns ctx.Err() on cancellation
	// without having incremented.
	InterruptableOnRamp(ctx context.Context) error

	// AttemptOnRamp increments the count only if it can do so without
	// parking. Reports whether the increment happened.
	AttemptOnRamp() bool

	// ForceOnRamp increments the count regardless of capacity.
	ForceOnRamp()

	// OffRamp decrements the count.
	OffRamp()

	// Count returns a snapshot of the current count.
	Count() int64

	// WaitUntilEmpty blocks until the count has reached zero at least
	// once since the call was made.
	WaitUntilEmpty()
}

// defaultParkInterval bounds how long WaitUntilEmpty and a capacity-parked
// on-ramp sleep between checks.
const defaultParkInterval = 100 * time.Microsecond
