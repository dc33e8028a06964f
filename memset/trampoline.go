package memset

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
)

// trampolinePPN is the single kernel-wide physical page holding the
// trampoline's save/restore code. It is supplied once by boot glue
// (which knows the linker's strampoline symbol) and is never allocated
// or freed by this package — every MemorySet references it, none owns it.
var trampolinePPN addr.PhysPageNum
var trampolineSet bool

/// SetTrampolineFrame installs the kernel-wide trampoline physical page.
/// Must be called exactly once before any MemorySet is constructed.
func SetTrampolineFrame(ppn addr.PhysPageNum) {
	trampolinePPN = ppn
	trampolineSet = true
}

// mapTrampoline installs the shared trampoline mapping at the top VPN of
// every address space. It is deliberately not recorded as a MapArea: it
// shares one physical page across every address space and must survive
// independent of any area's frame-ownership bookkeeping.
func mapTrampoline(pt *pagetable.PageTable) {
	if !trampolineSet {
		panic("memset: trampoline frame not installed")
	}
	vpn := addr.VirtAddr(memlayout.Trampoline).Floor()
	pt.Map(vpn, trampolinePPN, pagetable.FlagR|pagetable.FlagX)
}
