package scall

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
	"github.com/achilleasa/riscv-sv39-kernel/util"
)

// prot bits as they arrive over the syscall ABI.
const (
	protR = 0x1
	protW = 0x2
	protX = 0x4
)

/// sysMmap inserts a fresh U-accessible framed area at [start, start+len)
/// with the requested permissions.
func (t *Table) sysMmap(start, length, prot uint64) int64 {
	if length == 0 {
		return 0
	}
	if prot == 0 || prot&^uint64(protR|protW|protX) != 0 {
		return -1
	}
	startVA := addr.VirtAddr(start)
	if !startVA.Aligned() {
		return -1
	}

	var perm pagetable.Flag
	if prot&protR != 0 {
		perm |= pagetable.FlagR
	}
	if prot&protW != 0 {
		perm |= pagetable.FlagW
	}
	if prot&protX != 0 {
		perm |= pagetable.FlagX
	}
	perm |= pagetable.FlagU

	cur := t.current()
	endVA := addr.VirtAddr(uint64(startVA) + length)
	if err := cur.MemorySet().InsertFramedArea(startVA, endVA, perm); err != nil {
		return -1
	}
	return int64(util.Roundup(uintptr(length), uintptr(memlayout.PageSize)))
}

/// sysMunmap removes the framed area matching exactly [start, start+len)
///.
func (t *Table) sysMunmap(start, length uint64) int64 {
	cur := t.current()
	startVA := addr.VirtAddr(start)
	endVA := addr.VirtAddr(start + length)
	if err := cur.MemorySet().DeleteFramedArea(startVA, endVA); err != nil {
		return -1
	}
	return int64(util.Roundup(uintptr(length), uintptr(memlayout.PageSize)))
}
