package memset

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
)

/// KernelSections describes the linker-provided boundaries the kernel
/// address space identity-maps:.text,.rodata,.data+.bss, and the free
/// physical span handed to the frame allocator "). Boot glue fills this in from the linker script
/// the same way mem.go's direct-map setup reads __einittext/__eearlybss.
type KernelSections struct {
	TextStart, TextEnd addr.VirtAddr
	RodataStart, RodataEnd addr.VirtAddr
	DataStart, DataEnd addr.VirtAddr
	FreeStart, FreeEnd addr.VirtAddr
}

/// NewKernelSpace builds the single identity-mapped kernel MemorySet: one
/// Identical area per section, with.text executable+readable,.rodata
/// readable only,.data+.bss and the free span readable+writable
///.
func NewKernelSpace(sec KernelSections) (*MemorySet, error) {
	ms := NewBare()

	if err := ms.Push(NewArea(sec.TextStart, sec.TextEnd, Identical,
		pagetable.FlagR|pagetable.FlagX), nil, 0); err != nil {
		return nil, err
	}
	if err := ms.Push(NewArea(sec.RodataStart, sec.RodataEnd, Identical,
		pagetable.FlagR), nil, 0); err != nil {
		return nil, err
	}
	if err := ms.Push(NewArea(sec.DataStart, sec.DataEnd, Identical,
		pagetable.FlagR|pagetable.FlagW), nil, 0); err != nil {
		return nil, err
	}
	if err := ms.Push(NewArea(sec.FreeStart, sec.FreeEnd, Identical,
		pagetable.FlagR|pagetable.FlagW), nil, 0); err != nil {
		return nil, err
	}

	return ms, nil
}
