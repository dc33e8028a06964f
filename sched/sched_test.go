package sched

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/frame"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/memset"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
	"github.com/achilleasa/riscv-sv39-kernel/task"
	"github.com/achilleasa/riscv-sv39-kernel/trapctx"
)

const (
	trapHandlerStub uint64 = 0xdead0000
	trapReturnStub  uint64 = 0xdead1000
)

func setup(t *testing.T) {
	t.Helper()
	const numFrames = 512
	physmem.Init(memlayout.PageSize * numFrames)
	a := frame.New(0, numFrames, physmem.Zero)
	frame.Init(a)

	trampoline, ok := frame.Alloc()
	if !ok {
		t.Fatal("alloc failed for trampoline page")
	}
	memset.SetTrampolineFrame(trampoline.Ppn)
	task.KernelSpace = memset.NewBare()
}

func newTestTask(t *testing.T) *task.TCB {
	t.Helper()
	ms := memset.NewBare()
	trapCtxVA := addr.VirtAddr(memlayout.TrapContext)
	if err := ms.InsertFramedArea(trapCtxVA, trapCtxVA+addr.VirtAddr(memlayout.PageSize),
		pagetable.FlagR|pagetable.FlagW); err != nil {
		t.Fatalf("insert trap context area: %v", err)
	}
	pte, ok := ms.PageTable.Translate(trapCtxVA.Floor())
	if !ok {
		t.Fatal("trap context not mapped")
	}
	tsk := task.New(ms, pte.PPN(), 0x1000, 0x2000, trapHandlerStub, trapReturnStub)
	task.Register(tsk)
	return tsk
}

// recordingSwitch stands in for trapctx.Switch during tests: it never
// touches real registers, just records which context pointers it was
// asked to move between.
func recordingSwitch(calls *[][2]*trapctx.TaskContext) func(from, to *trapctx.TaskContext) {
	return func(from, to *trapctx.TaskContext) {
		*calls = append(*calls, [2]*trapctx.TaskContext{from, to})
	}
}

func TestReadyQueuePopsMinStrideWithFIFOTieBreak(t *testing.T) {
	setup(t)
	a := newTestTask(t)
	b := newTestTask(t)
	c := newTestTask(t)

	a.Lock()
	a.SetPriority(16)
	a.Advance() // stride = 4096
	a.Unlock()
	b.Lock()
	b.SetPriority(16)
	b.Advance()
	b.Advance() // stride = 8192
	b.Unlock()
	// c.Stride() stays 0, the lowest.

	rq := NewReadyQueue()
	rq.Push(a)
	rq.Push(b)
	rq.Push(c)

	first, ok := rq.Pop()
	if !ok || first != c {
		t.Fatalf("first pop = %v, want the zero-stride task", first)
	}
	second, ok := rq.Pop()
	if !ok || second != a {
		t.Fatalf("second pop = %v, want the lower-stride remaining task", second)
	}
	third, ok := rq.Pop()
	if !ok || third != b {
		t.Fatalf("third pop = %v, want the highest-stride task last", third)
	}
	if _, ok := rq.Pop(); ok {
		t.Fatal("pop on empty queue must report ok=false")
	}
}

func TestRunOnceDispatchesAndAdvancesStride(t *testing.T) {
	setup(t)
	tsk := newTestTask(t)
	rq := NewReadyQueue()
	rq.Push(tsk)

	var calls [][2]*trapctx.TaskContext
	orig := switchFn
	switchFn = recordingSwitch(&calls)
	defer func() { switchFn = orig }()

	p := NewProcessor(rq, tsk)
	if ok := p.RunOnce(); !ok {
		t.Fatal("RunOnce on a non-empty queue must return true")
	}

	if len(calls) != 1 {
		t.Fatalf("switchFn called %d times, want 1", len(calls))
	}
	if calls[0][1] != tsk.TaskCtx() {
		t.Fatal("RunOnce must switch into the dispatched task's context")
	}
	if tsk.Status() != task.Running {
		t.Fatalf("status = %v, want Running", tsk.Status())
	}
	if tsk.Stride() != task.BigStride/task.DefaultPriority {
		t.Fatalf("stride = %d, want %d", tsk.Stride(), task.BigStride/task.DefaultPriority)
	}
	if p.Current() != tsk {
		t.Fatal("Current() must report the dispatched task")
	}
}

func TestRunOnceOnEmptyQueueReturnsFalse(t *testing.T) {
	setup(t)
	rq := NewReadyQueue()
	p := NewProcessor(rq, nil)

	if p.RunOnce() {
		t.Fatal("RunOnce on an empty queue must return false")
	}
}

func TestSuspendCurrentRequeuesAsReady(t *testing.T) {
	setup(t)
	tsk := newTestTask(t)
	rq := NewReadyQueue()
	rq.Push(tsk)

	var calls [][2]*trapctx.TaskContext
	orig := switchFn
	switchFn = recordingSwitch(&calls)
	defer func() { switchFn = orig }()

	p := NewProcessor(rq, tsk)
	p.RunOnce()

	p.SuspendCurrentAndRunNext()

	if tsk.Status() != task.Ready {
		t.Fatalf("status after suspend = %v, want Ready", tsk.Status())
	}
	if p.Current() != nil {
		t.Fatal("Current() must be nil once suspended back to idle")
	}
	if rq.Len() != 1 {
		t.Fatalf("ready queue len = %d, want 1 (requeued task)", rq.Len())
	}
}

func TestExitCurrentMarksZombieAndClearsCurrent(t *testing.T) {
	setup(t)
	init := newTestTask(t)
	child := task.Fork(init, trapHandlerStub, trapReturnStub)
	rq := NewReadyQueue()
	rq.Push(child)

	var calls [][2]*trapctx.TaskContext
	orig := switchFn
	switchFn = recordingSwitch(&calls)
	defer func() { switchFn = orig }()

	p := NewProcessor(rq, init)
	p.RunOnce()

	p.ExitCurrentAndRunNext(3)

	if child.Status() != task.Zombie {
		t.Fatalf("status after exit = %v, want Zombie", child.Status())
	}
	if child.ExitCode() != 3 {
		t.Fatalf("exit code = %d, want 3", child.ExitCode())
	}
	if p.Current() != nil {
		t.Fatal("Current() must be nil once the task has exited")
	}
}
