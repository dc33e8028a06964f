package scall

import (
	"github.com/achilleasa/riscv-sv39-kernel/klog"
	"github.com/achilleasa/riscv-sv39-kernel/task"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

/// sysExit terminates the current task. Control leaves through
/// ExitCurrentAndRunNext's switch into the idle context; the return value
/// below is never observed by a correctly built caller.
func (t *Table) sysExit(code int) int64 {
	t.Proc.ExitCurrentAndRunNext(code)
	return 0
}

/// sysYield suspends the current task and dispatches the next ready one,
/// resuming with a 0 return value once rescheduled.
func (t *Table) sysYield() int64 {
	t.Proc.SuspendCurrentAndRunNext()
	return 0
}

/// sysGetPid returns the current task's pid.
func (t *Table) sysGetPid() int64 {
	return int64(t.current().Pid.PID())
}

/// sysSetPriority validates and installs a new priority for the current
/// task.
func (t *Table) sysSetPriority(p int) int64 {
	cur := t.current()
	if err := cur.SetPriority(p); err != 0 {
		return int64(err)
	}
	return int64(p)
}

/// sysFork clones the current task into a new Ready child, returning the
/// child's pid to the parent and 0 to the child. The child's x[10] (its
/// syscall return slot) is overwritten directly in its saved trap
/// context before it ever joins the ready queue, since the child never
/// executes this Dispatch call itself -- it resumes straight into user
/// mode via trap_return.
func (t *Table) sysFork() int64 {
	parent := t.current()
	child := task.Fork(parent, t.TrapHandler, t.TrapReturn)
	task.TrapContextView(child).X[10] = 0
	t.Proc.ReadyQueue().Push(child)
	return int64(child.Pid.PID())
}

/// sysExec replaces the current task's address space with the named
/// application's.
func (t *Table) sysExec(pathPtr uint64) int64 {
	cur := t.current()
	token := cur.MemorySet().PageTable.Token()
	path, ok := uio.TranslatedStr(token, asVA(pathPtr))
	if !ok {
		warnBadPointer("exec", cur.Pid.PID())
		return -1
	}
	data, ok := t.Apps.Lookup(path)
	if !ok {
		klog.Warnf("scall: exec: no such app %q", path)
		return -1
	}
	if err := task.ParseAndExec(cur, data, t.TrapHandler); err != nil {
		klog.Warnf("scall: exec: %v", err)
		return -1
	}
	return 0
}

/// sysSpawn is fork+exec without copying the parent's address space
/// : it builds the child directly from the
/// named app's ELF image rather than from_existed_user(parent).
func (t *Table) sysSpawn(pathPtr uint64) int64 {
	parent := t.current()
	token := parent.MemorySet().PageTable.Token()
	path, ok := uio.TranslatedStr(token, asVA(pathPtr))
	if !ok {
		warnBadPointer("spawn", parent.Pid.PID())
		return -1
	}
	data, ok := t.Apps.Lookup(path)
	if !ok {
		klog.Warnf("scall: spawn: no such app %q", path)
		return -1
	}
	child, err := task.Spawn(parent, data, t.TrapHandler, t.TrapReturn)
	if err != nil {
		klog.Warnf("scall: spawn: %v", err)
		return -1
	}
	t.Proc.ReadyQueue().Push(child)
	return int64(child.Pid.PID())
}

/// sysWaitpid reaps a zombie child matching pidFilter (-1 for any),
/// writing its exit code through codePtr.
func (t *Table) sysWaitpid(pidFilter int, codePtr uint64) int64 {
	cur := t.current()
	childPID, exitCode, found, anyMatch := task.Wait(cur, pidFilter)
	if !anyMatch {
		return -1
	}
	if !found {
		return -2
	}
	token := cur.MemorySet().PageTable.Token()
	window, ok := uio.TranslatedRefMut(token, asVA(codePtr), 4)
	if !ok {
		warnBadPointer("waitpid", cur.Pid.PID())
		return -1
	}
	putU32(window, uint32(int32(exitCode)))
	return int64(childPID)
}
