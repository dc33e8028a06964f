package sched

import (
	"sync"

	"github.com/achilleasa/riscv-sv39-kernel/sbi"
	"github.com/achilleasa/riscv-sv39-kernel/task"
	"github.com/achilleasa/riscv-sv39-kernel/ticks"
	"github.com/achilleasa/riscv-sv39-kernel/trapctx"
)

/// switchFn is the indirection through which Processor invokes the raw
/// context-switch primitive; tests replace it with a recording stub so the
/// scheduling logic can be exercised without ever actually swapping a
/// callee-saved register set.
var switchFn = trapctx.Switch

/// Processor owns the single hart's idle context and the currently
/// running task: a plain package-level field guarded by mu, since this
/// kernel has exactly one scheduling context, not one per OS thread.
type Processor struct {
	mu       sync.Mutex
	idleCtx  trapctx.TaskContext
	current  *task.TCB
	ready    *ReadyQueue
	initTask *task.TCB
}

/// NewProcessor returns a Processor bound to rq, reaping orphaned children
/// into init on exit.
func NewProcessor(rq *ReadyQueue, init *task.TCB) *Processor {
	return &Processor{ready: rq, initTask: init}
}

func (p *Processor) setCurrent(t *task.TCB) {
	p.mu.Lock()
	p.current = t
	p.mu.Unlock()
}

/// Current returns the task presently switched in, or nil if the
/// processor is idle.
func (p *Processor) Current() *task.TCB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

/// ReadyQueue exposes the ready queue a newly created task (fork, spawn,
/// the init process) must be pushed onto before it can ever be dispatched.
func (p *Processor) ReadyQueue() *ReadyQueue { return p.ready }

/// AdoptForTest installs t as the processor's current task directly,
/// without invoking the real context-switch primitive -- for other
/// packages' tests (e.g. scall's syscall-handler tests) that need
/// Current() to report a task but have no interest in exercising
/// RunOnce's dispatch sequence itself.
func (p *Processor) AdoptForTest(t *task.TCB) { p.setCurrent(t) }

/// RunOnce fetches the next ready task, dispatches it, and returns once
/// control comes back to the idle context.
/// It reports false if the ready queue was empty, letting Run's caller
/// decide whether to keep spinning or wait for an interrupt.
func (p *Processor) RunOnce() bool {
	next, ok := p.ready.Pop()
	if !ok {
		return false
	}

	next.Lock()
	next.SetStatus(task.Running)
	next.Advance()
	nextCtx := next.TaskCtx()
	next.Unlock()

	p.setCurrent(next)
	sbi.SetTimer(ticks.NextTrigger())

	switchFn(&p.idleCtx, nextCtx)
	return true
}

/// Run drives RunOnce forever, the processor's idle loop.
func (p *Processor) Run() {
	for {
		p.RunOnce()
	}
}

/// SuspendCurrentAndRunNext marks the running task Ready, requeues it, and
/// switches back to the idle context. Callers (the syscall/trap layer) must
/// already have released any inner lock they hold on the current task.
func (p *Processor) SuspendCurrentAndRunNext() {
	cur := p.Current()
	if cur == nil {
		return
	}

	cur.Lock()
	cur.SetStatus(task.Ready)
	ctx := cur.TaskCtx()
	cur.Unlock()

	p.ready.Push(cur)
	p.setCurrent(nil)
	switchFn(ctx, &p.idleCtx)
}

/// ExitCurrentAndRunNext tears down the running task via task.Exit and
/// switches back to idle through a throwaway context slot -- the exiting
/// task is never resumed, so its saved registers are discarded.
func (p *Processor) ExitCurrentAndRunNext(code int) {
	cur := p.Current()
	if cur == nil {
		return
	}

	task.Exit(cur, code, p.initTask)
	p.setCurrent(nil)

	var discard trapctx.TaskContext
	switchFn(&discard, &p.idleCtx)
}
