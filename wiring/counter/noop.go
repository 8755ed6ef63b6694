package counter

import "context"

// NoOpObjectCounter is a counter that does nothing. Used by DIRECT
// schedulers, which neither queue tasks nor apply backpressure.
type NoOpObjectCounter struct{}

var _ ObjectCounter = NoOpObjectCounter{}

// NewNoOpObjectCounter returns the no-op counter.
func NewNoOpObjectCounter() NoOpObjectCounter { return NoOpObjectCounter{} }

// OnRamp does nothing.
func (NoOpObjectCounter) OnRamp() {}

// InterruptableOnRamp does nothing.
func (NoOpObjectCounter) InterruptableOnRamp(context.Context) error { return nil }

// AttemptOnRamp does nothing and always succeeds.
func (NoOpObjectCounter) AttemptOnRamp() bool { return true }

// ForceOnRamp does nothing.
func (NoOpObjectCounter) ForceOnRamp() {}

// OffRamp does nothing.
func (NoOpObjectCounter) OffRamp() {}

// Count always returns zero.
func (NoOpObjectCounter) Count() int64 { return 0 }

// WaitUntilEmpty returns immediately.
func (NoOpObjectCounter) WaitUntilEmpty() {}
