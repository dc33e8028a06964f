// Package addr defines the typed physical/virtual address and page-number
// newtypes the rest of the kernel builds on, so addresses and page
// numbers can't be silently mixed with bare uintptr/int values.
package addr

import (
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/util"
)

/// PhysAddr is a physical memory address.
type PhysAddr uintptr

/// VirtAddr is a virtual memory address.
type VirtAddr uintptr

/// PhysPageNum is a physical page number (address >> PageShift).
type PhysPageNum uintptr

/// VirtPageNum is a virtual page number (address >> PageShift).
type VirtPageNum uintptr

const pageOffsetMask = memlayout.PageSize - 1

/// Floor truncates a to the page containing it.
func (a PhysAddr) Floor() PhysPageNum { return PhysPageNum(uintptr(a) >> memlayout.PageShift) }

/// Ceil rounds a up to the next page boundary and returns its page number.
func (a PhysAddr) Ceil() PhysPageNum {
	return PhysPageNum(util.Roundup(uintptr(a), uintptr(memlayout.PageSize)) >> memlayout.PageShift)
}

/// PageOffset returns the low PageShift bits of a.
func (a PhysAddr) PageOffset() uintptr { return uintptr(a) & pageOffsetMask }

/// Aligned reports whether a sits on a page boundary.
func (a PhysAddr) Aligned() bool { return a.PageOffset() == 0 }

/// Floor truncates a to the page containing it.
func (a VirtAddr) Floor() VirtPageNum { return VirtPageNum(uintptr(a) >> memlayout.PageShift) }

/// Ceil rounds a up to the next page boundary and returns its page number.
func (a VirtAddr) Ceil() VirtPageNum {
	return VirtPageNum(util.Roundup(uintptr(a), uintptr(memlayout.PageSize)) >> memlayout.PageShift)
}

/// PageOffset returns the low PageShift bits of a.
func (a VirtAddr) PageOffset() uintptr { return uintptr(a) & pageOffsetMask }

/// Aligned reports whether a sits on a page boundary.
func (a VirtAddr) Aligned() bool { return a.PageOffset() == 0 }

/// PhysAddr converts a page number back to the address of its first byte.
func (p PhysPageNum) PhysAddr() PhysAddr { return PhysAddr(uintptr(p) << memlayout.PageShift) }

/// VirtAddr converts a page number back to the address of its first byte.
func (p VirtPageNum) VirtAddr() VirtAddr { return VirtAddr(uintptr(p) << memlayout.PageShift) }

/// Indexes decomposes a VPN into its three 9-bit SV39 level indices, in
/// [vpn2, vpn1, vpn0] order.
func (p VirtPageNum) Indexes() [3]uintptr {
	v := uintptr(p)
	var idx [3]uintptr
	for i := 2; i >= 0; i-- {
		idx[i] = v & 0x1ff
		v >>= 9
	}
	return idx
}

/// Add returns p+n, useful for walking a VPN range one page at a time.
func (p VirtPageNum) Add(n int) VirtPageNum { return VirtPageNum(int(p) + n) }

/// Add returns p+n.
func (p PhysPageNum) Add(n int) PhysPageNum { return PhysPageNum(int(p) + n) }
