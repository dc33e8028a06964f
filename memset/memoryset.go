package memset

import (
	"fmt"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/cpu"
	"github.com/achilleasa/riscv-sv39-kernel/elfloader"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
)

/// MemorySet is a PageTable plus its ordered, non-overlapping MapAreas.
/// The trampoline mapping is installed directly on construction and is
/// never represented as an area.
type MemorySet struct {
	PageTable *pagetable.PageTable
	areas     []*MapArea
}

/// NewBare returns an empty MemorySet with the trampoline already mapped.
func NewBare() *MemorySet {
	ms := &MemorySet{PageTable: pagetable.New()}
	mapTrampoline(ms.PageTable)
	return ms
}

/// Push installs area into the page table and, if data is non-nil, copies
/// it in starting at the given byte offset within the area's first page.
/// It verifies the area does not overlap any area already present
///.
func (ms *MemorySet) Push(area *MapArea, data []byte, offset int) error {
	for _, existing := range ms.areas {
		if existing.overlaps(area) {
			return fmt.Errorf("memset: area [%d,%d) overlaps existing area [%d,%d)",
				area.Start, area.End, existing.Start, existing.End)
		}
	}
	area.mapInto(ms.PageTable)
	if data != nil {
		area.copyIn(data, offset)
	}
	ms.areas = append(ms.areas, area)
	return nil
}

/// InsertFramedArea pushes a fresh Framed area spanning [start, end) with
/// the given permission bits.
func (ms *MemorySet) InsertFramedArea(start, end addr.VirtAddr, perm pagetable.Flag) error {
	return ms.Push(NewArea(start, end, Framed, perm), nil, 0)
}

/// DeleteFramedArea removes the area whose VPN range equals exactly
/// [floor(start), ceil(end)) and unmaps its pages.
func (ms *MemorySet) DeleteFramedArea(start, end addr.VirtAddr) error {
	wantStart, wantEnd := start.Floor(), end.Ceil()
	for i, area := range ms.areas {
		if area.Start == wantStart && area.End == wantEnd {
			area.unmapFrom(ms.PageTable)
			ms.areas = append(ms.areas[:i], ms.areas[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("memset: no area matches [%d,%d) exactly", wantStart, wantEnd)
}

/// RemoveAreaWithStartVPN removes the area starting at vpn, keyed only by
/// its start.
func (ms *MemorySet) RemoveAreaWithStartVPN(vpn addr.VirtPageNum) error {
	for i, area := range ms.areas {
		if area.Start == vpn {
			area.unmapFrom(ms.PageTable)
			ms.areas = append(ms.areas[:i], ms.areas[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("memset: no area starts at vpn %d", vpn)
}

/// Areas exposes the area list read-only, for invariant checks and tests.
func (ms *MemorySet) Areas() []*MapArea { return ms.areas }

/// FromELF builds a fresh user address space from an ELF image: one
/// Framed area per PT_LOAD segment, a user stack one page above the
/// highest loaded VPN, and the TRAP_CONTEXT page. It returns the set, the initial user stack pointer and
/// the entry point.
func FromELF(data []byte) (*MemorySet, addr.VirtAddr, addr.VirtAddr, error) {
	img, err := elfloader.Parse(data)
	if err != nil {
		return nil, 0, 0, err
	}

	ms := NewBare()
	var maxEndVPN addr.VirtPageNum
	for _, seg := range img.Segments {
		start := seg.VirtAddr
		end := addr.VirtAddr(uintptr(seg.VirtAddr) + uintptr(seg.MemSize))
		area := NewArea(start, end, Framed, permFlags(seg.Perm)|pagetable.FlagU)
		if err := ms.Push(area, seg.FileData, int(start.PageOffset())); err != nil {
			return nil, 0, 0, err
		}
		if area.End > maxEndVPN {
			maxEndVPN = area.End
		}
	}

	userStackBottom := maxEndVPN.VirtAddr() + addr.VirtAddr(memlayout.PageSize)
	userStackTop := userStackBottom + addr.VirtAddr(memlayout.UserStackSize)
	if err := ms.Push(NewArea(userStackBottom, userStackTop, Framed,
		pagetable.FlagR|pagetable.FlagW|pagetable.FlagU), nil, 0); err != nil {
		return nil, 0, 0, err
	}

	trapCtxVA := addr.VirtAddr(memlayout.TrapContext)
	if err := ms.Push(NewArea(trapCtxVA, trapCtxVA+addr.VirtAddr(memlayout.PageSize), Framed,
		pagetable.FlagR|pagetable.FlagW), nil, 0); err != nil {
		return nil, 0, 0, err
	}

	return ms, userStackTop, img.Entry, nil
}

func permFlags(p elfloader.Perm) pagetable.Flag {
	var f pagetable.Flag
	if p&elfloader.PermR != 0 {
		f |= pagetable.FlagR
	}
	if p&elfloader.PermW != 0 {
		f |= pagetable.FlagW
	}
	if p&elfloader.PermX != 0 {
		f |= pagetable.FlagX
	}
	return f
}

/// FromExistedUser deep-copies src: a new bare set with the trampoline
/// mapped, a twin area per source area (freshly allocated frames), with
/// every page's bytes copied across.
func FromExistedUser(src *MemorySet) *MemorySet {
	dst := NewBare()
	for _, area := range src.areas {
		twin := area.clone()
		if err := dst.Push(twin, nil, 0); err != nil {
			panic(err)
		}
		for vpn := area.Start; vpn < area.End; vpn++ {
			srcFrame, ok := area.frames[vpn]
			if !ok {
				continue // Identical areas have no owned frames to copy
			}
			dstFrame := twin.frames[vpn]
			*physmem.Bytes(dstFrame.Ppn) = *physmem.Bytes(srcFrame.Ppn)
		}
	}
	return dst
}

/// Activate writes this set's token into satp and flushes the TLB
///.
func (ms *MemorySet) Activate() {
	cpu.SetSATP(ms.PageTable.Token())
	cpu.SfenceVMA()
}

/// RecycleDataPages clears the area list, releasing every area's frames,
/// while retaining the page table itself until the set is dropped
///.
func (ms *MemorySet) RecycleDataPages() {
	for _, area := range ms.areas {
		area.unmapFrom(ms.PageTable)
	}
	ms.areas = nil
}

/// Drop releases the page table's own frames (root + intermediates).
/// Callers must have already called RecycleDataPages (or never pushed any
/// areas) if they want the area frames released too.
func (ms *MemorySet) Drop() {
	for _, area := range ms.areas {
		area.unmapFrom(ms.PageTable)
	}
	ms.areas = nil
	ms.PageTable.Drop()
}
