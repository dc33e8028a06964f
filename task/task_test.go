package task

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/frame"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/memset"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
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

	KernelSpace = memset.NewBare()
}

// userMemSet builds a minimal user address space with just a
// TRAP_CONTEXT page mapped, enough to construct a TCB without going
// through a real ELF image.
func userMemSet(t *testing.T) *memset.MemorySet {
	t.Helper()
	ms := memset.NewBare()
	trapCtxVA := addr.VirtAddr(memlayout.TrapContext)
	if err := ms.InsertFramedArea(trapCtxVA, trapCtxVA+addr.VirtAddr(memlayout.PageSize),
		pagetable.FlagR|pagetable.FlagW); err != nil {
		t.Fatalf("insert trap context area: %v", err)
	}
	return ms
}

func newTestTask(t *testing.T) *TCB {
	t.Helper()
	ms := userMemSet(t)
	pte, ok := ms.PageTable.Translate(addr.VirtAddr(memlayout.TrapContext).Floor())
	if !ok {
		t.Fatal("trap context not mapped")
	}
	tsk := New(ms, pte.PPN(), 0x1000, 0x2000, trapHandlerStub, trapReturnStub)
	Register(tsk)
	return tsk
}

func TestNewTaskIsReadyWithDefaultPriority(t *testing.T) {
	setup(t)
	tsk := newTestTask(t)

	if tsk.Status() != Ready {
		t.Fatalf("status = %v, want Ready", tsk.Status())
	}
	if tsk.Priority() != DefaultPriority {
		t.Fatalf("priority = %d, want %d", tsk.Priority(), DefaultPriority)
	}
	if Lookup(tsk.Pid.PID()) != tsk {
		t.Fatal("New task must self-register for pid lookup")
	}
}

func TestForkCopiesMemoryAndPatchesKernelSP(t *testing.T) {
	setup(t)
	parent := newTestTask(t)

	child := Fork(parent, trapHandlerStub, trapReturnStub)

	if child.Pid.PID() == parent.Pid.PID() {
		t.Fatal("child must get a fresh pid")
	}
	if child.Status() != Ready {
		t.Fatalf("child status = %v, want Ready", child.Status())
	}
	if got := len(parent.Children()); got != 1 || parent.Children()[0] != child {
		t.Fatalf("parent.Children() = %v, want [child]", parent.Children())
	}
	if child.Parent() != parent {
		t.Fatal("child.Parent() must be parent")
	}

	_, ksTop := memlayout.KernelStackFor(child.Pid.PID())
	if got := TrapContextView(child).KernelSP; got != ksTop {
		t.Fatalf("child kernel_sp = %#x, want %#x", got, ksTop)
	}
}

func TestWaitFiltersByPidAndRequiresZombie(t *testing.T) {
	setup(t)
	parent := newTestTask(t)
	child := Fork(parent, trapHandlerStub, trapReturnStub)

	if _, _, found, anyMatch := Wait(parent, child.Pid.PID()); found || !anyMatch {
		t.Fatal("running child must not be reaped yet, but must count as a match")
	}

	Exit(child, 7, parent)

	pid, code, found, anyMatch := Wait(parent, child.Pid.PID())
	if !found || !anyMatch {
		t.Fatal("zombie child must be reaped")
	}
	if pid != child.Pid.PID() || code != 7 {
		t.Fatalf("got pid=%d code=%d, want pid=%d code=7", pid, code, child.Pid.PID())
	}
	if len(parent.Children()) != 0 {
		t.Fatal("reaped child must be removed from parent's children")
	}
	if Lookup(pid) != nil {
		t.Fatal("reaped child must be unregistered")
	}
}

func TestWaitWithNoMatchingChild(t *testing.T) {
	setup(t)
	parent := newTestTask(t)

	if _, _, found, anyMatch := Wait(parent, 999999); found || anyMatch {
		t.Fatal("waiting on a nonexistent pid must report no match")
	}
}

func TestExitReparentsChildrenToInit(t *testing.T) {
	setup(t)
	init := newTestTask(t)
	parent := Fork(init, trapHandlerStub, trapReturnStub)
	grandchild := Fork(parent, trapHandlerStub, trapReturnStub)

	Exit(parent, 0, init)

	if grandchild.Parent() != init {
		t.Fatal("grandchild must be reparented to init")
	}
	found := false
	for _, c := range init.Children() {
		if c == grandchild {
			found = true
		}
	}
	if !found {
		t.Fatal("init.Children() must include the reparented grandchild")
	}
}

func TestExitOnInitPanics(t *testing.T) {
	setup(t)
	init := newTestTask(t)

	defer func() {
		if recover() == nil {
			t.Fatal("Exit on init must panic")
		}
	}()
	Exit(init, 0, init)
}

func TestSetPriorityRejectsBelowTwo(t *testing.T) {
	setup(t)
	tsk := newTestTask(t)

	if err := tsk.SetPriority(1); err == 0 {
		t.Fatal("priority below 2 must be rejected")
	}
	if err := tsk.SetPriority(5); err != 0 {
		t.Fatalf("valid priority rejected: %v", err)
	}
	if tsk.Priority() != 5 {
		t.Fatalf("priority = %d, want 5", tsk.Priority())
	}
}

func TestAdvanceAppliesStrideStep(t *testing.T) {
	setup(t)
	tsk := newTestTask(t)
	tsk.SetPriority(BigStride)

	tsk.Advance()

	if tsk.Stride() != 1 {
		t.Fatalf("stride = %d, want 1", tsk.Stride())
	}
}

func TestMailboxPushPop(t *testing.T) {
	m := NewMailbox()

	if err := m.Push([]byte("hello")); err != 0 {
		t.Fatalf("push: %v", err)
	}
	buf := make([]byte, 16)
	n, ok := m.Pop(buf)
	if !ok || string(buf[:n]) != "hello" {
		t.Fatalf("pop = %q, ok=%v, want %q, true", buf[:n], ok, "hello")
	}
	if _, ok := m.Pop(buf); ok {
		t.Fatal("pop on empty mailbox must report ok=false")
	}
}

func TestMailboxPushRejectsOversizedMessage(t *testing.T) {
	m := NewMailbox()
	big := make([]byte, 257)

	if err := m.Push(big); err == 0 {
		t.Fatal("oversized message must be rejected")
	}
}

func TestMailboxPushRejectsWhenFull(t *testing.T) {
	m := NewMailbox()
	for i := 0; i < 16; i++ {
		if err := m.Push([]byte{byte(i)}); err != 0 {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := m.Push([]byte{0xff}); err == 0 {
		t.Fatal("17th push must be rejected as full")
	}
}
