// Package task implements the process control block and the fork/exec/
// wait/exit family of task-lifecycle operations. The
// locking discipline -- one mutex per PCB guarding only the mutable
// "inner" fields, immutable fields left bare -- is grounded on the
// teacher's own accnt.Accnt_t/hashtable pattern of embedding a bare
// sync.Mutex directly in the struct it guards rather than a separate
// lock object.
package task

import (
	"sync"
	"unsafe"

	"github.com/achilleasa/riscv-sv39-kernel/accnt"
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/console"
	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/fd"
	"github.com/achilleasa/riscv-sv39-kernel/kstack"
	"github.com/achilleasa/riscv-sv39-kernel/limits"
	"github.com/achilleasa/riscv-sv39-kernel/memset"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
	"github.com/achilleasa/riscv-sv39-kernel/pid"
	"github.com/achilleasa/riscv-sv39-kernel/trapctx"
)

// installStdio wires fd 0/1/2 to the shared console device, the
// conventional stdin/stdout/stderr every freshly built task inherits
//.
func installStdio(t *fd.Table) {
	for i := 0; i < 3; i++ {
		perms := fd.FD_READ | fd.FD_WRITE
		t.Install(&fd.Fd_t{Fops: console.Shared, Perms: perms})
	}
}

func trapContextAt(ppn addr.PhysPageNum) *trapctx.TrapContext {
	return (*trapctx.TrapContext)(unsafe.Pointer(&physmem.Bytes(ppn)[0]))
}

/// Status is a task's scheduling state.
type Status int

const (
	Ready Status = iota
	Running
	Zombie
)

/// DefaultPriority is a freshly created task's priority absent an
/// explicit sys_set_priority call.
const DefaultPriority = 16

/// BigStride is the stride scheduler's fixed numerator.
const BigStride = 65536

/// inner holds the mutable PCB fields guarded by TCB.mu.
type inner struct {
	taskCtx    *trapctx.TaskContext
	status     Status
	priority   int
	stride     int
	memorySet  *memset.MemorySet
	trapCtxPPN addr.PhysPageNum
	baseSize   int
	parent     *TCB // conceptually a weak back-ref; Go's GC tolerates the cycle, see DESIGN.md
	children   []*TCB
	exitCode   int
	fdTable    *fd.Table
}

/// TCB is a task control block.
/// Pid and KernelStack are set once at construction and never mutated;
/// every other field lives behind mu.
type TCB struct {
	Pid         pid.Handle
	KernelStack kstack.Handle
	Accnt       *accnt.Accnt_t
	Mailbox     *Mailbox

	mu sync.Mutex
	in inner
}

/// KernelSpace is the single kernel-wide identity-mapped address space
/// kernel stacks are carved out of. Boot glue installs it once.
var KernelSpace *memset.MemorySet

/// New constructs a PCB around a freshly built user memory set and wires
/// its kernel stack into KernelSpace.
func New(ms *memset.MemorySet, trapCtxPPN addr.PhysPageNum, entry, userSP addr.VirtAddr, trapHandler uint64, trapReturn uint64) *TCB {
	pidHandle := pid.Alloc()
	ksHandle, ksTop := kstack.Alloc(KernelSpace, pidHandle.PID())

	tc := trapctx.GotoTrapReturn(ksTop, trapReturn)

	t := &TCB{
		Pid:         pidHandle,
		KernelStack: ksHandle,
		Accnt:       &accnt.Accnt_t{},
		Mailbox:     NewMailbox(),
	}
	t.in = inner{
		taskCtx:    &tc,
		status:     Ready,
		priority:   DefaultPriority,
		stride:     0,
		memorySet:  ms,
		trapCtxPPN: trapCtxPPN,
		fdTable:    fd.NewTable(limits.NOFILE),
	}
	installStdio(t.in.fdTable)

	trapCtx := trapctx.AppInitContext(entry, userSP, ms.PageTable.Token(), ksTop, trapHandler)
	*TrapContextView(t) = trapCtx
	return t
}

/// Lock/Unlock expose the PCB's own mutex for callers (scheduler,
/// syscalls) that need to read/modify several inner fields atomically
///.
func (t *TCB) Lock() { t.mu.Lock() }
func (t *TCB) Unlock() { t.mu.Unlock() }

func (t *TCB) Status() Status { return t.in.status }
func (t *TCB) SetStatus(s Status) { t.in.status = s }
func (t *TCB) Priority() int { return t.in.priority }
func (t *TCB) Stride() int { return t.in.stride }
func (t *TCB) MemorySet() *memset.MemorySet { return t.in.memorySet }
func (t *TCB) TaskCtx() *trapctx.TaskContext { return t.in.taskCtx }
func (t *TCB) FDTable() *fd.Table { return t.in.fdTable }
func (t *TCB) ExitCode() int { return t.in.exitCode }
func (t *TCB) Parent() *TCB { return t.in.parent }
func (t *TCB) Children() []*TCB { return t.in.children }

/// SetPriority validates and installs a new priority.
func (t *TCB) SetPriority(p int) defs.Err_t {
	if p < 2 {
		return -defs.EINVAL
	}
	t.in.priority = p
	return 0
}

/// Advance applies one stride-scheduler step after this task has been
/// dispatched.
func (t *TCB) Advance() {
	t.in.stride += BigStride / t.in.priority
}

/// TrapContextView returns a pointer into physical memory at the task's
/// cached TRAP_CONTEXT page, letting callers read or overwrite the saved
/// user-mode registers directly.
func TrapContextView(t *TCB) *trapctx.TrapContext {
	return trapContextAt(t.in.trapCtxPPN)
}
