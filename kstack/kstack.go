// Package kstack places each task's kernel stack as a guarded framed
// region inside the kernel address space, one stack-sized+one-guard-page
// slot per pid below the trampoline.
package kstack

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/memset"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
)

/// Handle is an owning reference to a task's kernel stack region within
/// the kernel MemorySet.
type Handle struct {
	pid int
}

/// PID returns the owning task's pid.
func (h Handle) PID() int { return h.pid }

/// Alloc inserts the framed kernel-stack region for pid into ks and
/// returns a Handle plus the stack's top address ").
func Alloc(ks *memset.MemorySet, pid int) (Handle, addr.VirtAddr) {
	top, bottom := memlayout.KernelStackFor(pid)
	if err := ks.InsertFramedArea(addr.VirtAddr(bottom), addr.VirtAddr(top),
		pagetable.FlagR|pagetable.FlagW); err != nil {
		panic(err)
	}
	return Handle{pid: pid}, addr.VirtAddr(top)
}

/// Release removes pid's kernel-stack region from ks, freeing its frames
///.
func (h Handle) Release(ks *memset.MemorySet) {
	_, bottom := memlayout.KernelStackFor(h.pid)
	if err := ks.RemoveAreaWithStartVPN(addr.VirtAddr(bottom).Floor()); err != nil {
		panic(err)
	}
}

/// Top returns the virtual address one past the top of pid's kernel
/// stack, the initial stack pointer a freshly built TaskContext resumes
/// into.
func Top(pid int) addr.VirtAddr {
	top, _ := memlayout.KernelStackFor(pid)
	return addr.VirtAddr(top)
}
