// Package scall implements the system-call dispatch table: one function
// per syscall id, a big switch over a numeric id, each translating its
// user-pointer arguments through the caller's page table before touching
// them, and yielding cooperatively rather than blocking a kernel thread.
package scall

import (
	"github.com/achilleasa/riscv-sv39-kernel/klog"
	"github.com/achilleasa/riscv-sv39-kernel/sched"
	"github.com/achilleasa/riscv-sv39-kernel/task"
)

// Syscall ids.
const (
	SysClose       = 57
	SysPipe        = 59
	SysRead        = 63
	SysWrite       = 64
	SysExit        = 93
	SysYield       = 124
	SysSetPriority = 140
	SysGetTime     = 169
	SysGetPid      = 172
	SysMunmap      = 215
	SysFork        = 220
	SysExec        = 221
	SysMmap        = 222
	SysWaitpid     = 260
	SysSpawn       = 400
	SysMailRead    = 401
	SysMailWrite   = 402
)

/// AppLookup resolves an application name to its ELF image bytes -- this
/// package only ever calls it by name, never inspects the embedded
/// application bundle's internals.
type AppLookup interface {
	Lookup(name string) ([]byte, bool)
}

/// Table binds the syscall layer to the processor it yields through and
/// the trap entry points every newly built task needs.
type Table struct {
	Proc        *sched.Processor
	Apps        AppLookup
	TrapHandler uint64
	TrapReturn  uint64
}

/// New returns a Table bound to proc, resolving app images through apps,
/// with newly constructed tasks' trap contexts pointed at trapHandler/
/// trapReturn (the two fixed kernel entry points boot glue resolves once
/// at startup).
func New(proc *sched.Processor, apps AppLookup, trapHandler, trapReturn uint64) *Table {
	return &Table{Proc: proc, Apps: apps, TrapHandler: trapHandler, TrapReturn: trapReturn}
}

/// Dispatch routes one ecall trap to its handler. An unknown id is a
/// kernel invariant violation: it panics rather than returning an error,
/// since no correctly built user binary should ever request it.
func (t *Table) Dispatch(id uint64, a0, a1, a2 uint64) int64 {
	switch id {
	case SysClose:
		return t.sysClose(int(a0))
	case SysPipe:
		return t.sysPipe(a0)
	case SysRead:
		return t.sysRead(int(a0), a1, int(a2))
	case SysWrite:
		return t.sysWrite(int(a0), a1, int(a2))
	case SysExit:
		return t.sysExit(int(a0))
	case SysYield:
		return t.sysYield()
	case SysSetPriority:
		return t.sysSetPriority(int(a0))
	case SysGetTime:
		return t.sysGetTime(a0)
	case SysGetPid:
		return t.sysGetPid()
	case SysMunmap:
		return t.sysMunmap(a0, a1)
	case SysFork:
		return t.sysFork()
	case SysExec:
		return t.sysExec(a0)
	case SysMmap:
		return t.sysMmap(a0, a1, a2)
	case SysWaitpid:
		return t.sysWaitpid(int(int64(a0)), a1)
	case SysSpawn:
		return t.sysSpawn(a0)
	case SysMailRead:
		return t.sysMailRead(int(int64(a0)), a1, int(a2))
	case SysMailWrite:
		return t.sysMailWrite(int(a0), a1, int(a2))
	default:
		panic("scall: unknown syscall id")
	}
}

func (t *Table) current() *task.TCB {
	cur := t.Proc.Current()
	if cur == nil {
		panic("scall: dispatch with no current task")
	}
	return cur
}

func warnBadPointer(syscallName string, pid int) {
	klog.Warnf("scall: %s: bad user pointer (pid=%d)", syscallName, pid)
}
