package task

import (
	"github.com/achilleasa/riscv-sv39-kernel/accnt"
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/elfloader"
	"github.com/achilleasa/riscv-sv39-kernel/kstack"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/memset"
	"github.com/achilleasa/riscv-sv39-kernel/pid"
	"github.com/achilleasa/riscv-sv39-kernel/trapctx"
)

/// Fork clones parent into a new Ready child. trapHandler/trapReturn are the two fixed kernel entry
/// points every TrapContext/TaskContext needs; boot glue resolves them
/// once and threads them through every task-creating call.
func Fork(parent *TCB, trapHandler, trapReturn uint64) *TCB {
	parent.Lock()
	childMS := memset.FromExistedUser(parent.in.memorySet)
	parentFDs, _ := parent.in.fdTable.Clone()
	parent.Unlock()

	trapCtxVA := addr.VirtAddr(memlayout.TrapContext)
	pte, ok := childMS.PageTable.Translate(trapCtxVA.Floor())
	if !ok {
		panic("task: fork: child has no TRAP_CONTEXT mapping")
	}

	pidHandle := pid.Alloc()
	ksHandle, ksTop := kstack.Alloc(KernelSpace, pidHandle.PID())
	taskCtx := trapctx.GotoTrapReturn(ksTop, trapReturn)

	child := &TCB{
		Pid:         pidHandle,
		KernelStack: ksHandle,
		Accnt:       &accnt.Accnt_t{},
		Mailbox:     NewMailbox(),
	}
	child.in = inner{
		taskCtx:    &taskCtx,
		status:     Ready,
		priority:   DefaultPriority,
		stride:     0,
		memorySet:  childMS,
		trapCtxPPN: pte.PPN(),
		fdTable:    parentFDs,
		parent:     parent,
	}

	// Everything else in the child's trap context is already a
	// byte-for-byte copy of the parent's (memset.FromExistedUser copies
	// every page); patch only kernel_sp to the new kernel stack's top
	//.
	TrapContextView(child).KernelSP = uint64(ksTop)

	parent.Lock()
	parent.in.children = append(parent.in.children, child)
	parent.Unlock()

	Register(child)
	return child
}

/// Exec replaces t's memory set in place from a fresh ELF image, keeping
/// pid, kernel stack, fd table, parent and children.
func Exec(t *TCB, elfData []byte, trapHandler uint64) error {
	ms, userSP, entry, err := memset.FromELF(elfData)
	if err != nil {
		return err
	}

	t.Lock()
	defer t.Unlock()

	old := t.in.memorySet
	t.in.memorySet = ms

	trapCtxVA := addr.VirtAddr(memlayout.TrapContext)
	pte, ok := ms.PageTable.Translate(trapCtxVA.Floor())
	if !ok {
		panic("task: exec: no TRAP_CONTEXT mapping in fresh memory set")
	}
	t.in.trapCtxPPN = pte.PPN()

	ksTop := kstack.Top(t.Pid.PID())
	*trapContextAt(pte.PPN()) = trapctx.AppInitContext(entry, userSP, ms.PageTable.Token(), ksTop, trapHandler)

	old.RecycleDataPages()
	old.Drop()
	return nil
}

/// ParseAndExec validates the ELF image before committing to Exec, used
/// by sys_exec/sys_spawn so a malformed binary leaves the caller's
/// current memory set untouched.
func ParseAndExec(t *TCB, elfData []byte, trapHandler uint64) error {
	if _, err := elfloader.Parse(elfData); err != nil {
		return err
	}
	return Exec(t, elfData, trapHandler)
}

/// Spawn builds a brand new child task directly from elfData: a
/// fork-plus-exec shortcut (sys_spawn, id 400) that never copies the
/// parent's address space. Unlike
/// Fork, the child's memory set comes straight from memset.FromELF
/// rather than a deep copy of the parent's; the fd table is still cloned,
/// matching ordinary fork/exec's fd-table inheritance.
func Spawn(parent *TCB, elfData []byte, trapHandler, trapReturn uint64) (*TCB, error) {
	ms, userSP, entry, err := memset.FromELF(elfData)
	if err != nil {
		return nil, err
	}

	parent.Lock()
	parentFDs, _ := parent.in.fdTable.Clone()
	parent.Unlock()

	trapCtxVA := addr.VirtAddr(memlayout.TrapContext)
	pte, ok := ms.PageTable.Translate(trapCtxVA.Floor())
	if !ok {
		panic("task: spawn: child has no TRAP_CONTEXT mapping")
	}

	pidHandle := pid.Alloc()
	ksHandle, ksTop := kstack.Alloc(KernelSpace, pidHandle.PID())
	taskCtx := trapctx.GotoTrapReturn(ksTop, trapReturn)

	child := &TCB{
		Pid:         pidHandle,
		KernelStack: ksHandle,
		Accnt:       &accnt.Accnt_t{},
		Mailbox:     NewMailbox(),
	}
	child.in = inner{
		taskCtx:    &taskCtx,
		status:     Ready,
		priority:   DefaultPriority,
		stride:     0,
		memorySet:  ms,
		trapCtxPPN: pte.PPN(),
		fdTable:    parentFDs,
		parent:     parent,
	}
	*trapContextAt(pte.PPN()) = trapctx.AppInitContext(entry, userSP, ms.PageTable.Token(), ksTop, trapHandler)

	parent.Lock()
	parent.in.children = append(parent.in.children, child)
	parent.Unlock()

	Register(child)
	return child, nil
}

/// Wait implements waitpid's filtering/reaping logic. It does not itself write through
/// the user pointer -- callers (the syscall layer) own user-memory
/// translation.
func Wait(parent *TCB, pidFilter int) (childPID int, exitCode int, found bool, anyMatch bool) {
	parent.Lock()
	defer parent.Unlock()

	idx := -1
	for i, c := range parent.in.children {
		if pidFilter == -1 || c.Pid.PID() == pidFilter {
			anyMatch = true
			c.Lock()
			isZombie := c.in.status == Zombie
			c.Unlock()
			if isZombie {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return 0, 0, false, anyMatch
	}

	child := parent.in.children[idx]
	parent.in.children = append(parent.in.children[:idx], parent.in.children[idx+1:]...)

	child.Lock()
	exitCode = child.in.exitCode
	childPID = child.Pid.PID()
	child.Unlock()

	Unregister(child)
	child.KernelStack.Release(KernelSpace)
	child.Pid.Release()

	return childPID, exitCode, true, anyMatch
}

/// Exit marks t a Zombie, records code, reparents its children to init,
/// and frees its user memory immediately. init must never call Exit on itself.
func Exit(t *TCB, code int, init *TCB) {
	if t == init {
		panic("task: init process exited")
	}

	t.Lock()
	t.in.status = Zombie
	t.in.exitCode = code
	children := t.in.children
	t.in.children = nil
	t.in.fdTable.CloseAll()
	t.in.memorySet.RecycleDataPages()
	t.Unlock()

	if len(children) > 0 {
		init.Lock()
		for _, c := range children {
			c.Lock()
			c.in.parent = init
			c.Unlock()
			init.in.children = append(init.in.children, c)
		}
		init.Unlock()
	}
}
