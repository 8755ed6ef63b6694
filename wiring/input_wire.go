package wiring

import (
	"fmt"
	"sync/atomic"
)

// InputWire is a typed entry point into a scheduler. Exactly one handler
// is bound to each wire; values delivered to the wire reach the handler
// under the scheduler's execution policy.
type InputWire[IN any] struct {
	core    *schedulerCore
	name    string
	out     any // *OutputWire[OUT] of the owning scheduler, erased
	handler func(IN)
	bound   *atomic.Bool
}

// NewInputWire creates an input wire on the given scheduler. The wire must
// be bound to a handler before the model starts.
func NewInputWire[IN any, OUT any](scheduler *TaskScheduler[OUT], name string) *InputWire[IN] {
	w := &InputWire[IN]{
		core: scheduler.core,
		name: name,
		out:  scheduler.output,
	}
	w.bound = scheduler.core.registerInput(name)
	return w
}

// Name returns the wire's name.
func (w *InputWire[IN]) Name() string { return w.name }

// BindConsumer binds a handler with no output. Values reaching the wire
// are consumed; nothing is forwarded downstream.
func (w *InputWire[IN]) BindConsumer(handler func(IN)) *InputWire[IN] {
	w.setHandler(func(v IN) { handler(v) })
	return w
}

// Bind binds a handler whose return value is forwarded on the scheduler's
// output wire. Panics if the wire's scheduler does not carry OUT.
func Bind[IN any, OUT any](w *InputWire[IN], handler func(IN) OUT) *InputWire[IN] {
	out, ok := w.out.(*OutputWire[OUT])
	if !ok {
		panic(fmt.Sprintf("input wire %q: handler output type does not match scheduler %q output wire",
			w.name, w.core.name))
	}
	w.setHandler(func(v IN) { out.forward(handler(v)) })
	return w
}

// BindOptional binds a handler that forwards its return value only when
// the second result is true. Used by components that emit sporadically.
func BindOptional[IN any, OUT any](w *InputWire[IN], handler func(IN) (OUT, bool)) *InputWire[IN] {
	out, ok := w.out.(*OutputWire[OUT])
	if !ok {
		panic(fmt.Sprintf("input wire %q: handler output type does not match scheduler %q output wire",
			w.name, w.core.name))
	}
	w.setHandler(func(v IN) {
		if result, emit := handler(v); emit {
			out.forward(result)
		}
	})
	return w
}

func (w *InputWire[IN]) setHandler(handler func(IN)) {
	if w.bound.Load() {
		panic(fmt.Sprintf("input wire %q of scheduler %q bound twice", w.name, w.core.name))
	}
	w.handler = handler
	w.bound.Store(true)
}

// Put delivers a value over a default edge: if the scheduler is at
// capacity the caller parks until space frees or the model stops.
func (w *InputWire[IN]) Put(value IN) {
	w.deliver(value, SolderDefault)
}

// Inject delivers a value bypassing capacity. INJECT edges guarantee
// progress at the cost of unbounded queue growth.
func (w *InputWire[IN]) Inject(value IN) {
	w.deliver(value, SolderInject)
}

// Offer attempts a non-blocking delivery, reporting whether the value was
// accepted. A full scheduler drops the value.
func (w *InputWire[IN]) Offer(value IN) bool {
	return w.deliver(value, SolderOffer)
}

// deliver routes a value to the scheduler per the edge mode.
func (w *InputWire[IN]) deliver(value IN, mode SolderType) bool {
	core := w.core

	switch core.stype {
	case NoOp:
		return true
	case Direct, DirectThreadsafe:
		core.runDirect(func() { w.invoke(value) })
		return true
	}

	switch mode {
	case SolderInject:
		core.onRamp.ForceOnRamp()
	case SolderOffer:
		if !core.onRamp.AttemptOnRamp() {
			return false
		}
	default:
		if err := core.onRamp.InterruptableOnRamp(core.model.ctx); err != nil {
			// Model stopping; the task is discarded.
			return false
		}
	}

	core.submit(func() {
		core.execute(func() { w.invoke(value) })
		core.offRamp.OffRamp()
	})
	return true
}

// invoke runs the bound handler.
func (w *InputWire[IN]) invoke(value IN) {
	if w.handler == nil {
		panic(fmt.Sprintf("input wire %q of scheduler %q has no handler", w.name, w.core.name))
	}
	w.handler(value)
}
