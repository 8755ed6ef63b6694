// Package componentwiring provides the typed binding surface between domain
// components and the wiring model.
//
// A ComponentWiring owns one scheduler for one component. Input wires are
// declared against the component's interface methods and built lazily on
// first reference; the component instance itself is supplied later via
// Bind. Construction order is therefore irrelevant: the whole graph can be
// soldered together before any component exists.
//
// Components must not reference each other directly. Every interaction
// flows over soldered wires, and no component may be a process-wide
// singleton: the model instance is always passed explicitly.
package componentwiring

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/matteriben/hedera-services/wiring"
)

// ComponentWiring couples a component of type C to a scheduler whose
// output wire carries OUT.
type ComponentWiring[C any, OUT any] struct {
	name      string
	scheduler *wiring.TaskScheduler[OUT]

	mu     sync.Mutex
	inputs map[string]any

	instance C
	bound    atomic.Bool
}

// New creates the wiring for one component, building its scheduler from
// the supplied configuration.
func New[C any, OUT any](model *wiring.Model, name string, cfg wiring.SchedulerConfiguration) *ComponentWiring[C, OUT] {
	scheduler := wiring.NewSchedulerBuilder[OUT](model, name).
		Configure(cfg).
		Build()
	return &ComponentWiring[C, OUT]{
		name:      name,
		scheduler: scheduler,
		inputs:    make(map[string]any),
	}
}

// NewWithScheduler wraps a prebuilt scheduler, for schedulers that need
// builder options beyond SchedulerConfiguration (shared counters,
// hyperlinks).
func NewWithScheduler[C any, OUT any](name string, scheduler *wiring.TaskScheduler[OUT]) *ComponentWiring[C, OUT] {
	return &ComponentWiring[C, OUT]{
		name:      name,
		scheduler: scheduler,
		inputs:    make(map[string]any),
	}
}

// Name returns the component's name.
func (cw *ComponentWiring[C, OUT]) Name() string { return cw.name }

// Scheduler returns the component's scheduler.
func (cw *ComponentWiring[C, OUT]) Scheduler() *wiring.TaskScheduler[OUT] { return cw.scheduler }

// OutputWire returns the wire carrying the component's primary output.
func (cw *ComponentWiring[C, OUT]) OutputWire() *wiring.OutputWire[OUT] {
	return cw.scheduler.OutputWire()
}

// Bind supplies the component instance. All input wires, including those
// built after Bind, invoke methods on this instance. Binding twice panics.
func (cw *ComponentWiring[C, OUT]) Bind(instance C) {
	if cw.bound.Load() {
		panic(fmt.Sprintf("component %q bound twice", cw.name))
	}
	cw.instance = instance
	cw.bound.Store(true)
}

// get returns the bound instance, panicking if the component was never
// bound. Reaching this without a bind is a startup-order bug.
func (cw *ComponentWiring[C, OUT]) get() C {
	if !cw.bound.Load() {
		panic(fmt.Sprintf("component %q received a task before Bind", cw.name))
	}
	return cw.instance
}

// Flush blocks until all tasks submitted to the component before the call
// have been handled.
func (cw *ComponentWiring[C, OUT]) Flush() { cw.scheduler.Flush() }

// StartSquelching discards future tasks without invoking the component.
func (cw *ComponentWiring[C, OUT]) StartSquelching() { cw.scheduler.StartSquelching() }

// StopSquelching restores normal operation.
func (cw *ComponentWiring[C, OUT]) StopSquelching() { cw.scheduler.StopSquelching() }

// GetInputWire returns the input wire named name, creating it on first
// reference. The handler maps an input value through the bound component
// to the component's output type; the result is forwarded downstream.
func GetInputWire[C any, IN any, OUT any](
	cw *ComponentWiring[C, OUT],
	name string,
	handler func(C, IN) OUT,
) *wiring.InputWire[IN] {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if existing, ok := cw.inputs[name]; ok {
		return existing.(*wiring.InputWire[IN])
	}

	in := wiring.NewInputWire[IN](cw.scheduler, name)
	wiring.Bind(in, func(v IN) OUT {
		return handler(cw.get(), v)
	})
	cw.inputs[name] = in
	return in
}

// GetVoidInputWire returns an input wire whose handler produces no
// output.
func GetVoidInputWire[C any, IN any, OUT any](
	cw *ComponentWiring[C, OUT],
	name string,
	handler func(C, IN),
) *wiring.InputWire[IN] {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if existing, ok := cw.inputs[name]; ok {
		return existing.(*wiring.InputWire[IN])
	}

	in := wiring.NewInputWire[IN](cw.scheduler, name)
	in.BindConsumer(func(v IN) {
		handler(cw.get(), v)
	})
	cw.inputs[name] = in
	return in
}

// GetOptionalInputWire returns an input wire whose handler forwards its
// result only when the second return value is true. Used by components
// that emit sporadically.
func GetOptionalInputWire[C any, IN any, OUT any](
	cw *ComponentWiring[C, OUT],
	name string,
	handler func(C, IN) (OUT, bool),
) *wiring.InputWire[IN] {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if existing, ok := cw.inputs[name]; ok {
		return existing.(*wiring.InputWire[IN])
	}

	in := wiring.NewInputWire[IN](cw.scheduler, name)
	wiring.BindOptional(in, func(v IN) (OUT, bool) {
		return handler(cw.get(), v)
	})
	cw.inputs[name] = in
	return in
}

// SplitOutput splits a component whose output is a slice into an output
// wire of individual elements, preserving element order.
func SplitOutput[C any, E any](cw *ComponentWiring[C, []E], name string) *wiring.OutputWire[E] {
	return wiring.BuildSplitter(cw.scheduler.OutputWire(), cw.name+"Splitter", name)
}
