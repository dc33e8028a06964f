// Package physmem gives the kernel byte- and PTE-addressable views of
// physical memory. Rather than an x86-style recursive-mapping direct
// map, this kernel's physical memory is simply identity mapped while
// running in supervisor mode, so a single backing byte array indexed by
// physical address suffices.
package physmem

import (
	"unsafe"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
)

var ram []byte

/// Init allocates the backing store for [0, size). Real hardware needs no
/// such call (supervisor mode already sees all of physical RAM); tests and
/// the bring-up path call this once before anything touches physmem.
func Init(size int) {
	ram = make([]byte, size)
}

/// Bytes returns a page-sized byte view of the frame at ppn.
func Bytes(ppn addr.PhysPageNum) *[memlayout.PageSize]byte {
	off := uintptr(ppn) << memlayout.PageShift
	checkBounds(off)
	return (*[memlayout.PageSize]byte)(unsafe.Pointer(&ram[off]))
}

/// PTEs returns the frame at ppn as an array of 512 64-bit page-table
/// entries, used when a frame backs an intermediate or leaf page table.
func PTEs(ppn addr.PhysPageNum) *[512]uint64 {
	off := uintptr(ppn) << memlayout.PageShift
	checkBounds(off)
	return (*[512]uint64)(unsafe.Pointer(&ram[off]))
}

/// Zero clears the frame at ppn. The frame allocator calls this on every
/// freshly bumped (never-recycled) frame.
func Zero(ppn addr.PhysPageNum) {
	b := Bytes(ppn)
	for i := range b {
		b[i] = 0
	}
}

func checkBounds(off uintptr) {
	if ram == nil {
		panic("physmem: not initialized")
	}
	if int(off)+memlayout.PageSize > len(ram) {
		panic("physmem: access outside backing store")
	}
}
