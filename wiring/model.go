package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matteriben/hedera-services/errors"
	"github.com/matteriben/hedera-services/metric"
)

// UncaughtErrorHandler receives panics recovered from task handlers. The
// task is considered complete either way.
type UncaughtErrorHandler func(schedulerName string, recovered any)

// Model is the registry of schedulers, wires, and heartbeat sources. It
// owns the shared concurrent pool and the lifecycle of the whole graph.
type Model struct {
	logger  *slog.Logger
	metrics *metric.MetricsRegistry
	pool    *taskPool

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	schedulers []*schedulerCore
	names      map[string]struct{}
	heartbeats []*heartbeat
	edges      []solderEdge

	started  atomic.Bool
	stopped  atomic.Bool
	uncaught UncaughtErrorHandler
}

// solderEdge records one soldered connection for validation and diagrams.
type solderEdge struct {
	source  *schedulerCore
	target  *schedulerCore
	mode    SolderType
	ordered bool
}

// ModelBuilder configures and builds a Model.
type ModelBuilder struct {
	logger   *slog.Logger
	poolSize int
	metrics  *metric.MetricsRegistry
	uncaught UncaughtErrorHandler
}

// NewModelBuilder creates a builder with a pool sized to the host by
// default.
func NewModelBuilder(logger *slog.Logger) *ModelBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelBuilder{
		logger:   logger,
		poolSize: PoolParallelism(1, 0),
	}
}

// WithDefaultPoolSize overrides the shared pool parallelism.
func (b *ModelBuilder) WithDefaultPoolSize(workers int) *ModelBuilder {
	b.poolSize = workers
	return b
}

// WithMetrics registers per-scheduler metrics with the given registry.
func (b *ModelBuilder) WithMetrics(registry *metric.MetricsRegistry) *ModelBuilder {
	b.metrics = registry
	return b
}

// WithUncaughtErrorHandler installs a handler for panics recovered from
// task handlers. The default re-panics errors classified as fatal and logs
// the rest.
func (b *ModelBuilder) WithUncaughtErrorHandler(handler UncaughtErrorHandler) *ModelBuilder {
	b.uncaught = handler
	return b
}

// Build creates the model. The shared pool starts immediately so that
// schedulers built afterwards can process tasks before Start.
func (b *ModelBuilder) Build() *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		logger: b.logger,
		pool:   newTaskPool(b.poolSize),
		ctx:    ctx,
		cancel: cancel,
		names:  make(map[string]struct{}),
	}
	m.metrics = b.metrics
	if b.uncaught != nil {
		m.uncaught = b.uncaught
	} else {
		m.uncaught = func(schedulerName string, recovered any) {
			if err, ok := recovered.(error); ok && errors.IsFatal(err) {
				// Invariant breaches must not be swallowed.
				panic(recovered)
			}
			m.logger.Error("uncaught error in task handler",
				"scheduler", schedulerName,
				"error", fmt.Sprint(recovered))
		}
	}
	return m
}

// Start validates the graph and starts heartbeat sources. Build errors
// (cycles through non-INJECT edges, unbound input wires) abort startup.
func (m *Model) Start() error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Model", "Start", "model already started")
	}

	if err := m.checkForUnboundInputWires(); err != nil {
		return err
	}
	if err := m.checkForCyclicalBackpressure(); err != nil {
		return err
	}

	m.mu.Lock()
	heartbeats := append([]*heartbeat(nil), m.heartbeats...)
	m.mu.Unlock()

	group, ctx := errgroup.WithContext(m.ctx)
	for _, hb := range heartbeats {
		hb := hb
		group.Go(func() error {
			hb.run(ctx)
			return nil
		})
	}
	go func() {
		// Heartbeats only return when the model stops.
		_ = group.Wait()
	}()

	m.logger.Info("wiring model started",
		"schedulers", len(m.schedulers),
		"heartbeats", len(heartbeats),
		"poolWorkers", m.pool.workers)
	return nil
}

// Stop cancels heartbeats and parked submitters, lets in-flight tasks
// finish, and discards queued tasks.
func (m *Model) Stop() {
	if !m.stopped.CompareAndSwap(false, true) {
		return
	}
	m.cancel()

	m.mu.Lock()
	schedulers := append([]*schedulerCore(nil), m.schedulers...)
	m.mu.Unlock()

	for _, core := range schedulers {
		core.stop()
	}
	m.pool.shutdown()
	m.logger.Info("wiring model stopped")
}

// registerScheduler records a scheduler core, enforcing unique names.
func (m *Model) registerScheduler(core *schedulerCore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.names[core.name]; exists {
		panic(fmt.Sprintf("scheduler %q registered twice", core.name))
	}
	m.names[core.name] = struct{}{}
	m.schedulers = append(m.schedulers, core)

	if m.metrics != nil {
		core.registerMetrics(m.metrics)
	}
}

// registerEdge records a soldered connection.
func (m *Model) registerEdge(source, target *schedulerCore, mode SolderType, ordered bool) {
	if m.started.Load() {
		panic(fmt.Sprintf("cannot solder %q to %q after the model has started", source.name, target.name))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, solderEdge{source: source, target: target, mode: mode, ordered: ordered})
}

// checkForUnboundInputWires verifies that every input wire of every
// non-NO_OP scheduler has a handler.
func (m *Model) checkForUnboundInputWires() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, core := range m.schedulers {
		if core.stype == NoOp {
			continue
		}
		for _, input := range core.inputs {
			if !input.bound.Load() {
				return errors.WrapFatal(
					fmt.Errorf("input wire %q of scheduler %q has no handler", input.name, core.name),
					"Model", "Start", "unbound input wire")
			}
		}
	}
	return nil
}

// checkForCyclicalBackpressure rejects graphs where a cycle of non-INJECT
// edges passes through a queueing (SEQUENTIAL or CONCURRENT) scheduler.
// Such a cycle can deadlock under backpressure. Cycles that cross an
// INJECT edge, or that run entirely through DIRECT schedulers, are
// permitted.
func (m *Model) checkForCyclicalBackpressure() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	adjacency := make(map[*schedulerCore][]*schedulerCore)
	for _, edge := range m.edges {
		if edge.mode == SolderInject {
			continue
		}
		adjacency[edge.source] = append(adjacency[edge.source], edge.target)
	}

	// Tarjan's strongly connected components. Every cycle lives inside
	// one SCC; an SCC containing a queueing scheduler therefore has a
	// cycle through a queue. Cycles entirely through DIRECT schedulers
	// hold no queue and cannot deadlock.
	index := make(map[*schedulerCore]int)
	lowlink := make(map[*schedulerCore]int)
	onStack := make(map[*schedulerCore]bool)
	var stack []*schedulerCore
	nextIndex := 0
	var sccErr error

	var strongconnect func(core *schedulerCore)
	strongconnect = func(core *schedulerCore) {
		index[core] = nextIndex
		lowlink[core] = nextIndex
		nextIndex++
		stack = append(stack, core)
		onStack[core] = true

		for _, next := range adjacency[core] {
			if _, seen := index[next]; !seen {
				strongconnect(next)
				if lowlink[next] < lowlink[core] {
					lowlink[core] = lowlink[next]
				}
			} else if onStack[next] && index[next] < lowlink[core] {
				lowlink[core] = index[next]
			}
		}

		if lowlink[core] != index[core] {
			return
		}
		// core roots an SCC; pop it.
		var component []*schedulerCore
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == core {
				break
			}
		}

		cyclic := len(component) > 1
		if !cyclic {
			for _, next := range adjacency[component[0]] {
				if next == component[0] {
					cyclic = true
					break
				}
			}
		}
		if !cyclic || sccErr != nil {
			return
		}
		names := make([]string, 0, len(component))
		queueing := false
		for _, c := range component {
			names = append(names, c.name)
			if c.stype.usesQueue() {
				queueing = true
			}
		}
		if queueing {
			sccErr = errors.WrapFatal(
				fmt.Errorf("cyclical backpressure through %v; use an INJECT solder to break the cycle", names),
				"Model", "Start", "cycle through non-INJECT edge")
		}
	}

	for _, core := range m.schedulers {
		if _, seen := index[core]; !seen {
			strongconnect(core)
		}
	}
	return sccErr
}

// BuildHeartbeatWire creates a heartbeat source that emits NoInput at the
// given period once the model starts.
func (m *Model) BuildHeartbeatWire(period time.Duration) *OutputWire[NoInput] {
	if period <= 0 {
		panic("heartbeat period must be positive")
	}
	m.mu.Lock()
	hb := newHeartbeat(m, period, len(m.heartbeats))
	m.heartbeats = append(m.heartbeats, hb)
	m.mu.Unlock()
	return hb.out
}

// heartbeat emits NoInput on its output wire at a fixed period. Missed
// ticks are skipped, never batched.
type heartbeat struct {
	period time.Duration
	out    *OutputWire[NoInput]
}

func newHeartbeat(m *Model, period time.Duration, index int) *heartbeat {
	source := &schedulerCore{
		model:     m,
		name:      fmt.Sprintf("heartbeat-%d-%s", index, period),
		stype:     Direct,
		heartbeat: true,
	}
	return &heartbeat{
		period: period,
		out:    newOutputWire[NoInput](m, source, source.name),
	}
}

func (hb *heartbeat) run(ctx context.Context) {
	ticker := time.NewTicker(hb.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hb.out.forward(NoInput{})
		}
	}
}

// NoInput is the value carried by wires whose handlers take no meaningful
// argument: heartbeats, clear commands, and other triggers.
type NoInput struct{}
