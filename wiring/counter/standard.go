package counter

import (
	"context"
	"sync/atomic"
	"time"
)

// StandardObjectCounter counts in-flight objects without applying any
// backpressure. All on-ramp flavors always succeed immediately.
type StandardObjectCounter struct {
	name  string
	count atomic.Int64
}

var _ ObjectCounter = (*StandardObjectCounter)(nil)

// NewStandardObjectCounter creates a counter with no capacity limit.
func NewStandardObjectCounter(name string) *StandardObjectCounter {
	return &StandardObjectCounter{name: name}
}

// Name returns the counter's name.
func (c *StandardObjectCounter) Name() string { return c.name }

// OnRamp increments the count.
func (c *StandardObjectCounter) OnRamp() {
	c.count.Add(1)
}

// InterruptableOnRamp increments the count. It never parks, so ctx is only
// consulted before the increment.
func (c *StandardObjectCounter) InterruptableOnRamp(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.count.Add(1)
	return nil
}

// AttemptOnRamp increments the count. Always succeeds.
func (c *StandardObjectCounter) AttemptOnRamp() bool {
	c.count.Add(1)
	return true
}

// ForceOnRamp increments the count.
func (c *StandardObjectCounter) ForceOnRamp() {
	c.count.Add(1)
}

// OffRamp decrements the count.
func (c *StandardObjectCounter) OffRamp() {
	if c.count.Add(-1) < 0 {
		panic("counter " + c.name + ": off-ramp without matching on-ramp")
	}
}

// Count returns a snapshot of the current count.
func (c *StandardObjectCounter) Count() int64 {
	return c.count.Load()
}

// WaitUntilEmpty blocks until the count reaches zero.
func (c *StandardObjectCounter) WaitUntilEmpty() {
	for c.count.Load() > 0 {
		time.Sleep(defaultParkInterval)
	}
}
