// Package sched implements the stride ready queue and the processor loop
// that dispatches into task context. The ready queue is a plain
// mutex-guarded slice scanned for the minimum-stride task on every Pop,
// rather than a generic container/heap: the ready set is small enough
// that a linear scan is simpler and just as fast as maintaining heap
// invariants.
package sched

import (
	"sync"

	"github.com/achilleasa/riscv-sv39-kernel/task"
)

/// ReadyQueue is a min-stride queue over ready tasks.
type ReadyQueue struct {
	mu    sync.Mutex
	tasks []*task.TCB
}

/// NewReadyQueue returns an empty ready queue.
func NewReadyQueue() *ReadyQueue { return &ReadyQueue{} }

/// Push appends t to the back of the queue.
func (q *ReadyQueue) Push(t *task.TCB) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
}

/// Pop removes and returns the task with the smallest stride, breaking
/// ties by FIFO (earliest-pushed wins), or ok=false if the queue is empty.
func (q *ReadyQueue) Pop() (t *task.TCB, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	best := 0
	bestStride := q.tasks[0].Stride()
	for i := 1; i < len(q.tasks); i++ {
		if s := q.tasks[i].Stride(); s < bestStride {
			best, bestStride = i, s
		}
	}
	t = q.tasks[best]
	q.tasks = append(q.tasks[:best], q.tasks[best+1:]...)
	return t, true
}

/// Len reports the number of ready tasks currently queued.
func (q *ReadyQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
