// Package kmain is the boot glue that turns the packages above it into a
// running kernel: it builds physical memory and the frame/pid allocators,
// constructs the kernel and init address spaces, wires the syscall table,
// and implements the trap dispatch decision tree: the C-level trap
// handler decodes scause and either resumes the task, re-arms the timer,
// or dispatches a syscall. The literal entry/return assembly lives in
// package trampoline; this package is the dispatch decision itself.
package kmain

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/frame"
	"github.com/achilleasa/riscv-sv39-kernel/klog"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/memset"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
	"github.com/achilleasa/riscv-sv39-kernel/pid"
	"github.com/achilleasa/riscv-sv39-kernel/profdev"
	"github.com/achilleasa/riscv-sv39-kernel/scall"
	"github.com/achilleasa/riscv-sv39-kernel/sched"
	"github.com/achilleasa/riscv-sv39-kernel/sbi"
	"github.com/achilleasa/riscv-sv39-kernel/task"
	"github.com/achilleasa/riscv-sv39-kernel/ticks"
	"github.com/achilleasa/riscv-sv39-kernel/trampoline"
	"github.com/achilleasa/riscv-sv39-kernel/trapctx"
)

// Config gathers everything boot glue needs from the platform: the
// linker-provided section boundaries, the size of physical
// memory the platform reports, and the embedded application bundle.
type Config struct {
	Sections    memset.KernelSections
	MemorySize  int
	KernelEnd   addr.PhysAddr
	Apps        scall.AppLookup
	InitAppName string
}

// Kernel bundles the long-lived objects Boot constructs: the processor
// driving the scheduling loop, the syscall dispatch table, the init task,
// and the /dev/prof device.
type Kernel struct {
	Proc     *sched.Processor
	Syscalls *scall.Table
	Init     *task.TCB
	Prof     *profdev.Device
}

// Boot brings up the kernel: physical memory, the frame/pid allocators,
// the kernel and init address spaces, and the processor's ready queue. It
// logs the boot banner ("[kernel] Hello, world!") and returns a Kernel
// ready for Run.
func Boot(cfg Config) *Kernel {
	physmem.Init(cfg.MemorySize)

	alloc := frame.NewDefault(cfg.KernelEnd, physmem.Zero)
	frame.Init(alloc)

	trampolineFrame, ok := frame.Alloc()
	if !ok {
		panic("kmain: no frame available for the trampoline page")
	}
	memset.SetTrampolineFrame(trampolineFrame.Ppn)

	pid.Init(pid.New(0))

	kernelSpace, err := memset.NewKernelSpace(cfg.Sections)
	if err != nil {
		panic(err)
	}
	task.KernelSpace = kernelSpace

	trapHandler := trampoline.Addr(trampoline.UserTrapVector)
	trapReturn := trampoline.Addr(trampoline.UserReturn)

	initName := cfg.InitAppName
	if initName == "" {
		initName = "initproc"
	}
	initData, ok := cfg.Apps.Lookup(initName)
	if !ok {
		panic("kmain: embedded application bundle has no " + initName)
	}
	initTask := buildTask(initData, trapHandler, trapReturn)
	task.Register(initTask)

	rq := sched.NewReadyQueue()
	rq.Push(initTask)
	proc := sched.NewProcessor(rq, initTask)

	syscalls := scall.New(proc, cfg.Apps, trapHandler, trapReturn)
	prof := profdev.New()

	klog.Infof("[kernel] Hello, world!")

	return &Kernel{Proc: proc, Syscalls: syscalls, Init: initTask, Prof: prof}
}

// buildTask constructs a freshly loaded task's PCB straight from an ELF
// image, the same from_elf-then-new_task sequence task.Fork/task.Spawn
// perform for every task after the first.
func buildTask(elfData []byte, trapHandler, trapReturn uint64) *task.TCB {
	ms, userSP, entry, err := memset.FromELF(elfData)
	if err != nil {
		panic(err)
	}
	trapCtxVA := addr.VirtAddr(memlayout.TrapContext)
	pte, ok := ms.PageTable.Translate(trapCtxVA.Floor())
	if !ok {
		panic("kmain: task has no TRAP_CONTEXT mapping")
	}
	return task.New(ms, pte.PPN(), entry, userSP, trapHandler, trapReturn)
}

// Run enters the processor's idle loop: dispatch the next ready task,
// resume when it traps back, repeat forever. It never returns on real hardware; tests instead drive
// k.Proc.RunOnce directly.
func (k *Kernel) Run() {
	k.Proc.Run()
}

// TrapHandler decodes scause and dispatches accordingly:
//
// - a supervisor timer interrupt advances the tick counter, re-arms the
// next trigger, and yields the current task;
// - a user ecall advances sepc past the ecall instruction and dispatches
// the syscall named in a7 with arguments a0..a2, storing the signed
// result back into a0;
// - a load/store/illegal-instruction fault from user mode logs and exits
// the current task with code -2, mirroring the original's "kill the
// offending process rather than the kernel" policy;
// - anything else is a kernel invariant violation and panics.
//
// cx is the trapping task's TrapContext, already restored into the
// caller's view of physical memory by the trampoline's save sequence.
func (k *Kernel) TrapHandler(cx *trapctx.TrapContext, scause Scause) {
	switch {
	case scause.IsInterrupt() && scause.Code() == InterruptSupervisorTimer:
		ticks.Advance()
		sbi.SetTimer(ticks.NextTrigger())
		if cur := k.Proc.Current(); cur != nil {
			k.Prof.Record(cur.Pid.PID(), cx.Sepc)
		}
		k.Proc.SuspendCurrentAndRunNext()

	case !scause.IsInterrupt() && scause.Code() == ExceptionUserEnvCall:
		cx.Sepc += 4
		id := cx.X[17]
		a0, a1, a2 := cx.X[10], cx.X[11], cx.X[12]
		cx.X[10] = uint64(k.Syscalls.Dispatch(id, a0, a1, a2))

	case !scause.IsInterrupt() && isUserFault(scause.Code()):
		klog.Warnf("[kernel] fatal fault in task: scause=%#x sepc=%#x", uint64(scause), cx.Sepc)
		k.Proc.ExitCurrentAndRunNext(-2)

	default:
		panic("kmain: unhandled trap from kernel mode")
	}
}

func isUserFault(code uint64) bool {
	switch code {
	case ExceptionInstructionAddressMisaligned,
		ExceptionIllegalInstruction,
		ExceptionLoadAddressMisaligned,
		ExceptionLoadAccessFault,
		ExceptionStoreAMOAddressMisaligned,
		ExceptionStoreAMOAccessFault,
		ExceptionInstructionPageFault,
		ExceptionLoadPageFault,
		ExceptionStoreAMOPageFault:
		return true
	default:
		return false
	}
}

// HandleKernelTrap is reached only if a trap vectors in while already
// running in supervisor mode -- a kernel invariant violation. There is no safe
// resumption point, so this logs and halts rather than panicking through
// Go's own runtime (which has no console to print a stack trace to on bare
// metal).
func (k *Kernel) HandleKernelTrap(scause Scause, sepc uint64) {
	klog.Errorf("[kernel] trap from supervisor mode: scause=%#x sepc=%#x", uint64(scause), sepc)
	panic("kmain: trap while executing kernel code")
}
