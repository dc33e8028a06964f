package memset

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/frame"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
)

/// MapKind distinguishes a MapArea's backing strategy.
type MapKind int

const (
	/// Identical maps each VPN to the PPN with the same numeric value;
	/// used only in the kernel address space.
	Identical MapKind = iota
	/// Framed backs each VPN with a distinct allocated physical frame,
	/// released when the area is dropped.
	Framed
)

/// MapArea is a half-open VPN range sharing one map kind and permission
/// set. Its frames field is the VPN->frame.Handle
/// map mem.Pmap_t's owning page-table frame list inspired but applied
/// here to region-level backing rather than page-table-level backing.
type MapArea struct {
	Start  addr.VirtPageNum
	End    addr.VirtPageNum
	Kind   MapKind
	Perm   pagetable.Flag // subset of {R,W,X,U}; V is added at map time
	frames map[addr.VirtPageNum]frame.Handle
}

/// NewArea constructs a MapArea over [start, end) rounded to page
/// boundaries, matching insert_framed_area / push's va->vpn rounding.
func NewArea(start, end addr.VirtAddr, kind MapKind, perm pagetable.Flag) *MapArea {
	return &MapArea{
		Start:  start.Floor(),
		End:    end.Ceil(),
		Kind:   kind,
		Perm:   perm,
		frames: make(map[addr.VirtPageNum]frame.Handle),
	}
}

/// overlaps reports whether a and b's VPN ranges intersect.
func (a *MapArea) overlaps(b *MapArea) bool {
	return a.Start < b.End && b.Start < a.End
}

// mapInto installs every VPN in the area into pt: Identical areas map
// vpn->ppn with equal numeric value; Framed areas allocate a fresh frame
// per VPN and record it in a.frames.
func (a *MapArea) mapInto(pt *pagetable.PageTable) {
	for vpn := a.Start; vpn < a.End; vpn++ {
		var ppn addr.PhysPageNum
		switch a.Kind {
		case Identical:
			ppn = addr.PhysPageNum(vpn)
		case Framed:
			f, ok := frame.Alloc()
			if !ok {
				panic("memset: out of frames for framed area")
			}
			a.frames[vpn] = f
			ppn = f.Ppn
		default:
			panic("memset: unknown map kind")
		}
		pt.Map(vpn, ppn, a.Perm|pagetable.FlagV)
	}
}

// unmapFrom clears every VPN in the area from pt and, for Framed areas,
// releases their backing frames.
func (a *MapArea) unmapFrom(pt *pagetable.PageTable) {
	for vpn := a.Start; vpn < a.End; vpn++ {
		pt.Unmap(vpn)
		if a.Kind == Framed {
			if f, ok := a.frames[vpn]; ok {
				f.Release()
				delete(a.frames, vpn)
			}
		}
	}
}

// copyIn writes data into the area's mapped pages starting at byte
// `offset` within the area's first page, honoring page boundaries
//.
func (a *MapArea) copyIn(data []byte, offset int) {
	if a.Kind != Framed {
		panic("memset: copyIn on non-framed area")
	}
	vpn := a.Start
	pos := 0
	for pos < len(data) {
		f, ok := a.frames[vpn]
		if !ok {
			panic("memset: copyIn past area end")
		}
		page := physmem.Bytes(f.Ppn)
		start := 0
		if vpn == a.Start {
			start = offset
		}
		n := copy(page[start:], data[pos:])
		pos += n
		vpn++
	}
}

// clone returns a fresh MapArea with the same range/kind/perm but an
// empty frame map, the twin Push later fills in.
func (a *MapArea) clone() *MapArea {
	return &MapArea{
		Start:  a.Start,
		End:    a.End,
		Kind:   a.Kind,
		Perm:   a.Perm,
		frames: make(map[addr.VirtPageNum]frame.Handle),
	}
}

// pageCount returns the number of VPNs the area spans.
func (a *MapArea) pageCount() int { return int(a.End - a.Start) }
