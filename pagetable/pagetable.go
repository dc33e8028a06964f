package pagetable

import (
	"unsafe"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/frame"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
)

/// satpModeSV39 is the mode field written into satp.
const satpModeSV39 = uint64(8) << 60

/// PageTable owns its root frame and every intermediate frame it
/// allocates while walking for writes. A table
/// constructed via FromToken is non-owning: it walks a foreign table for
/// read-only translation and frees nothing on Drop.
type PageTable struct {
	root   addr.PhysPageNum
	frames []frame.Handle // intermediate + root frames this table owns
	owns   bool
}

/// New allocates a fresh root frame and returns an owning PageTable.
func New() *PageTable {
	root, ok := frame.Alloc()
	if !ok {
		panic("pagetable: out of frames for root")
	}
	return &PageTable{root: root.Ppn, frames: []frame.Handle{root}, owns: true}
}

/// FromToken builds a non-owning view of the table encoded by satp, used
/// to translate addresses in a foreign address space.
func FromToken(satp uint64) *PageTable {
	return &PageTable{root: addr.PhysPageNum(satp & ((1 << 44) - 1)), owns: false}
}

/// Token returns this table's satp value.
func (pt *PageTable) Token() uint64 {
	return satpModeSV39 | uint64(pt.root)
}

// findPTE walks vpn's three levels, allocating intermediate frames along
// the way when alloc is true. It returns the leaf PTE slot (a pointer into
// physical memory) or nil if the walk would need to allocate but alloc is
// false: translation-only walks never allocate.
func (pt *PageTable) findPTE(vpn addr.VirtPageNum, alloc bool) *PTE {
	idxs := vpn.Indexes()
	ppn := pt.root
	for level := 0; level < 3; level++ {
		ptes := physmem.PTEs(ppn)
		slot := (*PTE)(unsafe.Pointer(&ptes[idxs[level]]))
		if level == 2 {
			return slot
		}
		if !slot.Valid() {
			if !alloc {
				return nil
			}
			f, ok := frame.Alloc()
			if !ok {
				panic("pagetable: out of frames for intermediate table")
			}
			pt.frames = append(pt.frames, f)
			*slot = MkPTE(f.Ppn, FlagV)
		}
		ppn = slot.PPN()
	}
	panic("unreachable")
}

/// Map installs vpn -> ppn with the given permission flags, asserting the
/// target leaf entry was not already valid.
func (pt *PageTable) Map(vpn addr.VirtPageNum, ppn addr.PhysPageNum, flags Flag) {
	pte := pt.findPTE(vpn, true)
	if pte.Valid() {
		panic("pagetable: map of already-mapped vpn")
	}
	*pte = MkPTE(ppn, flags|FlagV)
}

/// Unmap clears vpn's leaf entry, asserting it was valid. Intermediate
/// tables are never freed here — they live as long as the PageTable.
func (pt *PageTable) Unmap(vpn addr.VirtPageNum) {
	pte := pt.findPTE(vpn, false)
	if pte == nil || !pte.Valid() {
		panic("pagetable: unmap of invalid vpn")
	}
	*pte = 0
}

/// Translate walks vpn without allocating, returning its leaf PTE.
func (pt *PageTable) Translate(vpn addr.VirtPageNum) (PTE, bool) {
	pte := pt.findPTE(vpn, false)
	if pte == nil || !pte.Valid() {
		return 0, false
	}
	return *pte, true
}

/// TranslateVA walks va's page and adds back the page offset.
func (pt *PageTable) TranslateVA(va addr.VirtAddr) (addr.PhysAddr, bool) {
	pte, ok := pt.Translate(va.Floor())
	if !ok {
		return 0, false
	}
	return addr.PhysAddr(pte.PPN().PhysAddr()) + addr.PhysAddr(va.PageOffset()), true
}

/// Drop releases every frame this table owns (root and intermediates).
/// Non-owning tables built via FromToken do nothing.
func (pt *PageTable) Drop() {
	if !pt.owns {
		return
	}
	for _, f := range pt.frames {
		f.Release()
	}
	pt.frames = nil
}
