package wiring

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matteriben/hedera-services/metric"
	"github.com/matteriben/hedera-services/wiring/counter"
)

// inputRecord tracks an input wire for bind-time validation.
type inputRecord struct {
	name  string
	bound *atomic.Bool
}

// schedulerCore is the untyped heart of a task scheduler: counters, queue,
// squelch state, and statistics. The typed TaskScheduler wraps it.
type schedulerCore struct {
	model     *Model
	name      string
	stype     SchedulerType
	hyperlink string
	heartbeat bool

	onRamp  counter.ObjectCounter
	offRamp counter.ObjectCounter

	capacity    int64
	flushable   bool
	squelchable bool
	squelching  atomic.Bool

	queue    *taskQueue // sequential only
	queueWG  sync.WaitGroup
	directMu sync.Mutex // direct_threadsafe only

	inputs []inputRecord

	tasksHandled  atomic.Int64
	handlerErrors atomic.Int64
	squelched     atomic.Int64
}

// start launches the dedicated goroutine of a sequential scheduler.
func (c *schedulerCore) start() {
	if c.stype != Sequential {
		return
	}
	c.queue = newTaskQueue()
	c.queueWG.Add(1)
	go func() {
		defer c.queueWG.Done()
		for {
			task, ok := c.queue.pop()
			if !ok {
				return
			}
			task()
		}
	}()
}

func (c *schedulerCore) stop() {
	if c.queue != nil {
		c.queue.close()
		c.queueWG.Wait()
	}
}

// submit routes a task to the scheduler's executor. The counter has
// already been on-ramped by the caller.
func (c *schedulerCore) submit(task func()) {
	switch c.stype {
	case Sequential:
		c.queue.push(task)
	case Concurrent:
		c.model.pool.submit(task)
	default:
		panic(fmt.Sprintf("scheduler %q of type %s cannot queue tasks", c.name, c.stype))
	}
}

// runDirect executes a task on the calling goroutine, serialized for
// DIRECT_THREADSAFE schedulers.
func (c *schedulerCore) runDirect(task func()) {
	if c.stype == DirectThreadsafe {
		c.directMu.Lock()
		defer c.directMu.Unlock()
	}
	task()
}

// execute runs a handler with panic isolation. A squelched scheduler skips
// the handler; squelching affects only tasks that have not yet started.
func (c *schedulerCore) execute(handler func()) {
	if c.squelching.Load() {
		c.squelched.Add(1)
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			c.handlerErrors.Add(1)
			c.model.uncaught(c.name, recovered)
		}
	}()
	handler()
	c.tasksHandled.Add(1)
}

// unprocessedTaskCount reports tasks on-ramped but not yet off-ramped.
// When the on-ramp side is external (a shared counter), that counter's
// count is the meaningful figure; a no-op on-ramp defers to the off-ramp
// side, which covers the post-hash-collector arrangement.
func (c *schedulerCore) unprocessedTaskCount() int64 {
	if _, isNoOp := c.onRamp.(counter.NoOpObjectCounter); !isNoOp {
		return c.onRamp.Count()
	}
	return c.offRamp.Count()
}

func (c *schedulerCore) flush() {
	if !c.flushable {
		panic(fmt.Sprintf("scheduler %q is not flushable", c.name))
	}
	c.offRamp.WaitUntilEmpty()
}

func (c *schedulerCore) startSquelching() {
	if !c.squelchable {
		panic(fmt.Sprintf("scheduler %q is not squelchable", c.name))
	}
	c.squelching.Store(true)
}

func (c *schedulerCore) stopSquelching() {
	c.squelching.Store(false)
}

func (c *schedulerCore) registerInput(name string) *atomic.Bool {
	bound := &atomic.Bool{}
	c.inputs = append(c.inputs, inputRecord{name: name, bound: bound})
	return bound
}

// registerMetrics publishes per-scheduler gauges and counters.
func (c *schedulerCore) registerMetrics(registry *metric.MetricsRegistry) {
	service := "wiring"
	prefix := fmt.Sprintf("scheduler_%s", c.name)

	_ = registry.RegisterCollector(service, prefix+"_unprocessed_tasks",
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: prefix + "_unprocessed_tasks",
			Help: fmt.Sprintf("Tasks on-ramped but not yet handled by scheduler %s", c.name),
		}, func() float64 { return float64(c.unprocessedTaskCount()) }))

	_ = registry.RegisterCollector(service, prefix+"_tasks_handled_total",
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: prefix + "_tasks_handled_total",
			Help: fmt.Sprintf("Tasks handled by scheduler %s", c.name),
		}, func() float64 { return float64(c.tasksHandled.Load()) }))

	_ = registry.RegisterCollector(service, prefix+"_handler_errors_total",
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: prefix + "_handler_errors_total",
			Help: fmt.Sprintf("Handler panics recovered in scheduler %s", c.name),
		}, func() float64 { return float64(c.handlerErrors.Load()) }))
}

// TaskScheduler is a unit of execution for a named component. It accepts
// typed tasks on input wires and emits handler return values on its output
// wire.
type TaskScheduler[OUT any] struct {
	core   *schedulerCore
	output *OutputWire[OUT]
}

// Name returns the scheduler's name.
func (s *TaskScheduler[OUT]) Name() string { return s.core.name }

// Type returns the scheduler's execution policy.
func (s *TaskScheduler[OUT]) Type() SchedulerType { return s.core.stype }

// OutputWire returns the wire carrying handler return values.
func (s *TaskScheduler[OUT]) OutputWire() *OutputWire[OUT] { return s.output }

// UnprocessedTaskCount reports tasks submitted but not yet handled.
func (s *TaskScheduler[OUT]) UnprocessedTaskCount() int64 {
	return s.core.unprocessedTaskCount()
}

// Flush blocks until every task submitted before the call has been
// handled. Panics if the scheduler was not built flushable.
func (s *TaskScheduler[OUT]) Flush() { s.core.flush() }

// StartSquelching makes the scheduler discard future tasks without
// invoking handlers. Tasks already executing run to completion. Panics if
// the scheduler was not built squelchable.
func (s *TaskScheduler[OUT]) StartSquelching() { s.core.startSquelching() }

// StopSquelching restores normal handler invocation.
func (s *TaskScheduler[OUT]) StopSquelching() { s.core.stopSquelching() }

// SchedulerBuilder assembles a TaskScheduler.
type SchedulerBuilder[OUT any] struct {
	model       *Model
	name        string
	stype       SchedulerType
	capacity    int64
	flushable   bool
	squelchable bool
	hyperlink   string
	externalOn  counter.ObjectCounter
	externalOff counter.ObjectCounter
}

// NewSchedulerBuilder starts building a sequential scheduler with the
// given unique name.
func NewSchedulerBuilder[OUT any](model *Model, name string) *SchedulerBuilder[OUT] {
	return &SchedulerBuilder[OUT]{
		model: model,
		name:  name,
		stype: Sequential,
	}
}

// WithType sets the execution policy.
func (b *SchedulerBuilder[OUT]) WithType(t SchedulerType) *SchedulerBuilder[OUT] {
	b.stype = t
	return b
}

// WithUnhandledTaskCapacity bounds unhandled tasks; default-edge
// submitters park at the bound.
func (b *SchedulerBuilder[OUT]) WithUnhandledTaskCapacity(capacity int64) *SchedulerBuilder[OUT] {
	b.capacity = capacity
	return b
}

// WithFlushingEnabled permits Flush on the built scheduler.
func (b *SchedulerBuilder[OUT]) WithFlushingEnabled(enabled bool) *SchedulerBuilder[OUT] {
	b.flushable = enabled
	return b
}

// WithSquelchingEnabled permits StartSquelching on the built scheduler.
func (b *SchedulerBuilder[OUT]) WithSquelchingEnabled(enabled bool) *SchedulerBuilder[OUT] {
	b.squelchable = enabled
	return b
}

// WithHyperlink attaches a documentation link shown in the wiring diagram.
func (b *SchedulerBuilder[OUT]) WithHyperlink(url string) *SchedulerBuilder[OUT] {
	b.hyperlink = url
	return b
}

// WithOnRamp substitutes an external counter for the on-ramp side. Used to
// span one counter across two tightly coupled schedulers.
func (b *SchedulerBuilder[OUT]) WithOnRamp(c counter.ObjectCounter) *SchedulerBuilder[OUT] {
	b.externalOn = c
	return b
}

// WithOffRamp substitutes an external counter for the off-ramp side.
func (b *SchedulerBuilder[OUT]) WithOffRamp(c counter.ObjectCounter) *SchedulerBuilder[OUT] {
	b.externalOff = c
	return b
}

// Configure applies a SchedulerConfiguration in one call.
func (b *SchedulerBuilder[OUT]) Configure(cfg SchedulerConfiguration) *SchedulerBuilder[OUT] {
	b.stype = cfg.Type
	b.capacity = cfg.UnhandledTaskCapacity
	b.flushable = cfg.Flushable
	b.squelchable = cfg.Squelchable
	return b
}

// Build validates the configuration, registers the scheduler with the
// model, and starts its executor.
func (b *SchedulerBuilder[OUT]) Build() *TaskScheduler[OUT] {
	if !b.stype.usesQueue() {
		if b.flushable {
			panic(fmt.Sprintf("scheduler %q: %s schedulers hold no queue and cannot flush", b.name, b.stype))
		}
		if b.squelchable {
			panic(fmt.Sprintf("scheduler %q: %s schedulers cannot squelch", b.name, b.stype))
		}
		if b.capacity > 0 {
			panic(fmt.Sprintf("scheduler %q: %s schedulers cannot apply capacity", b.name, b.stype))
		}
	}

	core := &schedulerCore{
		model:       b.model,
		name:        b.name,
		stype:       b.stype,
		hyperlink:   b.hyperlink,
		capacity:    b.capacity,
		flushable:   b.flushable,
		squelchable: b.squelchable,
	}
	core.onRamp, core.offRamp = b.buildCounters()

	b.model.registerScheduler(core)
	core.start()

	scheduler := &TaskScheduler[OUT]{core: core}
	scheduler.output = newOutputWire[OUT](b.model, core, b.name)
	return scheduler
}

// buildCounters selects the counter pair for the scheduler. Queueing
// schedulers default to one shared standard or backpressure counter on
// both sides; external counters override a side individually.
func (b *SchedulerBuilder[OUT]) buildCounters() (counter.ObjectCounter, counter.ObjectCounter) {
	if !b.stype.usesQueue() {
		return counter.NewNoOpObjectCounter(), counter.NewNoOpObjectCounter()
	}
	if b.externalOn != nil || b.externalOff != nil {
		onRamp := b.externalOn
		offRamp := b.externalOff
		if onRamp == nil {
			onRamp = counter.ObjectCounter(counter.NewNoOpObjectCounter())
		}
		if offRamp == nil {
			offRamp = counter.ObjectCounter(counter.NewNoOpObjectCounter())
		}
		return onRamp, offRamp
	}
	if b.capacity > 0 {
		c := counter.NewBackpressureObjectCounter(b.name, b.capacity, 0)
		return c, c
	}
	c := counter.NewStandardObjectCounter(b.name)
	return c, c
}
