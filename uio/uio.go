// Package uio implements the user-pointer translation helpers the
// syscall layer uses at every boundary crossing, and the UserBuffer
// scatter/gather type file objects read and write through. Translation
// is a plain non-allocating PageTable.Translate walk, since this
// kernel's page tables are never demand-paged.
package uio

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
)

/// TranslatedByteBuffer walks ptr..ptr+len through the page table encoded
/// by token, returning one []byte slice per physical page touched. ok is
/// false if any page in the range fails to translate.
func TranslatedByteBuffer(token uint64, ptr addr.VirtAddr, length int) (slices [][]byte, ok bool) {
	pt := pagetable.FromToken(token)
	start := ptr
	end := addr.VirtAddr(uintptr(ptr) + uintptr(length))
	for start < end {
		vpn := start.Floor()
		pte, found := pt.Translate(vpn)
		if !found {
			return nil, false
		}
		pageEnd := (vpn + 1).VirtAddr()
		sliceEnd := pageEnd
		if end < sliceEnd {
			sliceEnd = end
		}
		pageBytes := physmem.Bytes(pte.PPN())
		lo := start.PageOffset()
		hi := lo + uintptr(sliceEnd-start)
		slices = append(slices, pageBytes[lo:hi])
		start = sliceEnd
	}
	return slices, true
}

/// TranslatedStr walks ptr byte-by-byte through token's table until a NUL
/// byte. ok is false on a failed translation.
func TranslatedStr(token uint64, ptr addr.VirtAddr) (s string, ok bool) {
	pt := pagetable.FromToken(token)
	var b []byte
	for {
		pa, found := pt.TranslateVA(ptr)
		if !found {
			return "", false
		}
		c := physmem.Bytes(pa.Floor())[pa.PageOffset()]
		if c == 0 {
			return string(b), true
		}
		b = append(b, c)
		ptr++
	}
}

/// UserBuffer is a sequence of discontinuous byte slices produced by
/// translating a user virtual range.
type UserBuffer struct {
	bufs [][]byte
}

/// NewUserBuffer wraps pre-translated slices (e.g. from
/// TranslatedByteBuffer) for use by a file object's Read/Write.
func NewUserBuffer(slices [][]byte) *UserBuffer {
	bufs := make([][]byte, len(slices))
	copy(bufs, slices)
	return &UserBuffer{bufs: bufs}
}

/// Len returns the total number of bytes remaining in the buffer.
func (ub *UserBuffer) Len() int {
	n := 0
	for _, s := range ub.bufs {
		n += len(s)
	}
	return n
}

/// Read copies up to len(dst) bytes out of the user buffer into dst,
/// consuming them, and returns the number of bytes copied.
func (ub *UserBuffer) Read(dst []byte) int {
	n := 0
	for n < len(dst) && len(ub.bufs) > 0 {
		c := copy(dst[n:], ub.bufs[0])
		n += c
		if c == len(ub.bufs[0]) {
			ub.bufs = ub.bufs[1:]
		} else {
			ub.bufs[0] = ub.bufs[0][c:]
		}
	}
	return n
}

/// TranslatedRefMut returns the size-byte window of physical memory
/// backing ptr, for single in-page fixed-size values such as a timeval.
/// ok is false on a failed translation; the function panics if
/// [ptr, ptr+size) would
/// cross a page boundary, since that can never happen for any T this
/// kernel's syscalls write through this path.
func TranslatedRefMut(token uint64, ptr addr.VirtAddr, size int) (window []byte, ok bool) {
	pt := pagetable.FromToken(token)
	pa, found := pt.TranslateVA(ptr)
	if !found {
		return nil, false
	}
	lo := pa.PageOffset()
	if lo+uintptr(size) > (1 << 12) {
		panic("uio: translated_refmut value crosses a page boundary")
	}
	page := physmem.Bytes(pa.Floor())
	return page[lo : lo+uintptr(size)], true
}

/// Write copies up to Len() bytes from src into the user buffer,
/// consuming its slices, and returns the number of bytes copied.
func (ub *UserBuffer) Write(src []byte) int {
	n := 0
	for n < len(src) && len(ub.bufs) > 0 {
		c := copy(ub.bufs[0], src[n:])
		n += c
		if c == len(ub.bufs[0]) {
			ub.bufs = ub.bufs[1:]
		} else {
			ub.bufs[0] = ub.bufs[0][c:]
		}
	}
	return n
}
