package wiring

// Transformer is a named 1→1 pure map interposed between two wires. It
// runs on a DIRECT scheduler, so transformation happens on the emitting
// goroutine.
type Transformer[A any, B any] struct {
	in        *InputWire[A]
	scheduler *TaskScheduler[B]
}

// NewTransformer creates a transformer applying fn to every value.
func NewTransformer[A any, B any](model *Model, name, inputName string, fn func(A) B) *Transformer[A, B] {
	scheduler := NewSchedulerBuilder[B](model, name).
		WithType(Direct).
		Build()
	in := NewInputWire[A](scheduler, inputName)
	Bind(in, fn)
	return &Transformer[A, B]{in: in, scheduler: scheduler}
}

// InputWire returns the transformer's input.
func (t *Transformer[A, B]) InputWire() *InputWire[A] { return t.in }

// OutputWire returns the transformer's output.
func (t *Transformer[A, B]) OutputWire() *OutputWire[B] { return t.scheduler.output }

// BuildSplitter turns an output wire of slices into an output wire of
// individual elements, preserving element order.
func BuildSplitter[T any](o *OutputWire[[]T], name, inputName string) *OutputWire[T] {
	scheduler := NewSchedulerBuilder[T](o.model, name).
		WithType(Direct).
		Build()
	in := NewInputWire[[]T](scheduler, inputName)
	in.BindConsumer(func(values []T) {
		for _, v := range values {
			scheduler.output.forward(v)
		}
	})
	o.SolderTo(in)
	return scheduler.output
}

// AdvancedTransformation gives a transformer control over reservable
// values at fan-out time.
type AdvancedTransformation[T any] interface {
	// Transform is invoked once per additional sink and should take a
	// new reservation on the value before it is forwarded.
	Transform(T) T

	// Dispose is invoked when no sink is soldered, so the value's
	// reservation can be released instead of leaking.
	Dispose(T)
}

// BuildAdvancedTransformer interposes a reservation-aware stage: for a
// value fanned out to n sinks, Transform is called n−1 times before any
// delivery, so each downstream can release exactly once.
func BuildAdvancedTransformer[T any](o *OutputWire[T], name string, transformation AdvancedTransformation[T]) *OutputWire[T] {
	scheduler := NewSchedulerBuilder[T](o.model, name).
		WithType(Direct).
		Build()
	in := NewInputWire[T](scheduler, name+"_input")
	out := scheduler.output
	in.BindConsumer(func(value T) {
		sinks := out.destinations
		if len(sinks) == 0 {
			transformation.Dispose(value)
			return
		}
		// Take the extra reservations before any downstream can release.
		extras := make([]T, 0, len(sinks)-1)
		for i := 0; i < len(sinks)-1; i++ {
			extras = append(extras, transformation.Transform(value))
		}
		for i, sink := range sinks {
			if i < len(extras) {
				sink.deliver(extras[i])
			} else {
				sink.deliver(value)
			}
		}
	})
	o.SolderTo(in)
	return out
}
