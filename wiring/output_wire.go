package wiring

import "fmt"

// SolderType selects the delivery behavior of a soldered edge.
type SolderType int

const (
	// SolderDefault blocks the emitter while the target is at capacity.
	SolderDefault SolderType = iota

	// SolderInject bypasses the target's capacity. Required to break
	// structural cycles; queue growth is unbounded.
	SolderInject

	// SolderOffer drops the value if the target is at capacity. Used for
	// heartbeats where a missed tick is acceptable.
	SolderOffer
)

// String returns the edge label used in wiring diagrams.
func (t SolderType) String() string {
	switch t {
	case SolderDefault:
		return "default"
	case SolderInject:
		return "inject"
	case SolderOffer:
		return "offer"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// destination is one soldered downstream of an output wire.
type destination[T any] struct {
	deliver func(T) bool
	target  *schedulerCore
}

// OutputWire is a typed exit point of a scheduler or transformer. Every
// value emitted is delivered to every soldered downstream, in solder
// order, before the emitting task retires.
type OutputWire[T any] struct {
	model        *Model
	source       *schedulerCore
	name         string
	destinations []destination[T]
}

func newOutputWire[T any](model *Model, source *schedulerCore, name string) *OutputWire[T] {
	return &OutputWire[T]{
		model:  model,
		source: source,
		name:   name,
	}
}

// Name returns the wire's name.
func (o *OutputWire[T]) Name() string { return o.name }

// SolderTo connects this output to an input wire. The optional solder
// type defaults to a blocking edge. Soldering after the model has started
// panics: edges are never rewired.
func (o *OutputWire[T]) SolderTo(in *InputWire[T], solderType ...SolderType) {
	mode := SolderDefault
	if len(solderType) > 0 {
		mode = solderType[0]
	}
	o.model.registerEdge(o.source, in.core, mode, false)
	o.destinations = append(o.destinations, destination[T]{
		target: in.core,
		deliver: func(v T) bool {
			return in.deliver(v, mode)
		},
	})
}

// OrderedSolderTo connects this output to a list of sinks with a
// guaranteed per-item ordering: for every emitted value, the first sink
// receives it before the second is offered it, and so on. All edges are
// default (blocking) edges.
func (o *OutputWire[T]) OrderedSolderTo(ins []*InputWire[T]) {
	if len(ins) < 2 {
		panic(fmt.Sprintf("output wire %q: ordered solder needs at least two sinks", o.name))
	}
	for _, in := range ins {
		in := in
		o.model.registerEdge(o.source, in.core, SolderDefault, true)
		o.destinations = append(o.destinations, destination[T]{
			target: in.core,
			deliver: func(v T) bool {
				return in.deliver(v, SolderDefault)
			},
		})
	}
}

// forward delivers a value to every soldered downstream in solder order.
func (o *OutputWire[T]) forward(value T) {
	for _, d := range o.destinations {
		d.deliver(value)
	}
}

// BuildFilter interposes a predicate between this wire and its consumers.
// Values failing the predicate are dropped; a predicate dropping a
// reservable value must release the reservation it received.
func (o *OutputWire[T]) BuildFilter(name, inputName string, predicate func(T) bool) *OutputWire[T] {
	scheduler := NewSchedulerBuilder[T](o.model, name).
		WithType(Direct).
		Build()
	in := NewInputWire[T](scheduler, inputName)
	in.BindConsumer(func(v T) {
		if predicate(v) {
			scheduler.output.forward(v)
		}
	})
	o.SolderTo(in)
	return scheduler.output
}
