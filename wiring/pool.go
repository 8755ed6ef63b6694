package wiring

import (
	"runtime"
	"sync"
)

// taskPool is the model's shared pool for CONCURRENT schedulers. Workers
// drain a single unbounded queue; backpressure is applied upstream by the
// schedulers' object counters, so submission never blocks.
type taskPool struct {
	workers int
	queue   *taskQueue
	wg      sync.WaitGroup
}

// PoolParallelism computes the shared pool size from the configured
// multiplier and constant: max(1, multiplier*cores + constant).
func PoolParallelism(multiplier float64, constant int) int {
	parallelism := int(multiplier*float64(runtime.NumCPU())) + constant
	if parallelism < 1 {
		parallelism = 1
	}
	return parallelism
}

func newTaskPool(workers int) *taskPool {
	if workers < 1 {
		workers = 1
	}
	p := &taskPool{
		workers: workers,
		queue:   newTaskQueue(),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *taskPool) submit(task func()) {
	p.queue.push(task)
}

func (p *taskPool) worker() {
	defer p.wg.Done()
	for {
		task, ok := p.queue.pop()
		if !ok {
			return
		}
		task()
	}
}

// shutdown discards queued tasks and waits for in-flight tasks to finish.
func (p *taskPool) shutdown() {
	p.queue.close()
	p.wg.Wait()
}
