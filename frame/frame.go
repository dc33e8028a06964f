// Package frame implements the physical page-frame allocator: a bump
// pointer plus a freelist over [kernel_end, MEMORY_END). Frame handles
// here are single-owner, with no refcounting.
package frame

import (
	"sync"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
)

/// Handle is a scoped physical-page token. Release returns the frame to the
/// allocator; the page's prior contents are not required to be zeroed by
/// Release but the allocator zero-fills on hand-out.
type Handle struct {
	Ppn addr.PhysPageNum
}

/// allocator_i is the contract Handle.Release needs; it lets tests swap in
/// a fake without dragging in the package-level singleton.
type allocator_i interface {
	dealloc(addr.PhysPageNum)
}

/// Allocator is a bump+freelist allocator over a half-open PPN range. A
/// single mutex serializes every operation.
type Allocator struct {
	mu       sync.Mutex
	start    addr.PhysPageNum
	current  addr.PhysPageNum
	end      addr.PhysPageNum
	recycled []addr.PhysPageNum
	zeroPage func(addr.PhysPageNum)
}

/// New initializes an Allocator over [start, end). zeroPage is called on
/// every freshly bumped frame before it is handed out; it is a parameter
/// (rather than baked in) so tests can run without a real
/// physical-memory backing store.
func New(start, end addr.PhysPageNum, zeroPage func(addr.PhysPageNum)) *Allocator {
	return &Allocator{start: start, current: start, end: end, zeroPage: zeroPage}
}

/// NewDefault builds the kernel-wide allocator spanning
/// [kernelEnd.Ceil(), MEMORY_END.Floor()).
func NewDefault(kernelEnd addr.PhysAddr, zeroPage func(addr.PhysPageNum)) *Allocator {
	return New(kernelEnd.Ceil(), addr.PhysAddr(memlayout.MemoryEnd).Floor(), zeroPage)
}

/// Alloc returns a fresh, zeroed frame, or ok=false if the allocator is
/// exhausted.
func (a *Allocator) Alloc() (Handle, bool) {
	a.mu.Lock()
	ppn, ok := a.allocLocked()
	a.mu.Unlock()
	if !ok {
		return Handle{}, false
	}
	if a.zeroPage != nil {
		a.zeroPage(ppn)
	}
	return Handle{Ppn: ppn}, true
}

func (a *Allocator) allocLocked() (addr.PhysPageNum, bool) {
	if n := len(a.recycled); n > 0 {
		ppn := a.recycled[n-1]
		a.recycled = a.recycled[:n-1]
		return ppn, true
	}
	if a.current == a.end {
		return 0, false
	}
	ppn := a.current
	a.current = a.current.Add(1)
	return ppn, true
}

func (a *Allocator) dealloc(ppn addr.PhysPageNum) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ppn >= a.current {
		panic("frame: deallocating a frame that was never allocated")
	}
	for _, r := range a.recycled {
		if r == ppn {
			panic("frame: double free")
		}
	}
	a.recycled = append(a.recycled, ppn)
}

/// InFreeRange reports whether ppn lies within the allocator's configured
/// span, independent of whether it is currently allocated or free — used
/// by invariant checks.
func (a *Allocator) InFreeRange(ppn addr.PhysPageNum) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ppn >= a.start && ppn < a.end
}

/// Allocated reports whether ppn has been handed out by Alloc and not yet
/// released — i.e. it is within the bumped region and not on the
/// recycled list.
func (a *Allocator) Allocated(ppn addr.PhysPageNum) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ppn < a.start || ppn >= a.current {
		return false
	}
	for _, r := range a.recycled {
		if r == ppn {
			return false
		}
	}
	return true
}

/// IsFree reports whether ppn currently sits in the recycled list, i.e. is
/// not handed out to anyone.
func (a *Allocator) IsFree(ppn addr.PhysPageNum) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.recycled {
		if r == ppn {
			return true
		}
	}
	return false
}

var (
	defaultMu  sync.Mutex
	defaultAlc *Allocator
)

/// Init installs a the kernel-wide default allocator used by Alloc/Release.
func Init(a *Allocator) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultAlc = a
}

/// Alloc draws a frame from the kernel-wide default allocator.
func Alloc() (Handle, bool) {
	defaultMu.Lock()
	a := defaultAlc
	defaultMu.Unlock()
	if a == nil {
		panic("frame: allocator not initialized")
	}
	return a.Alloc()
}

/// Release returns h's frame to the kernel-wide default allocator. Callers
/// that hold an explicit *Allocator (e.g. tests) should call its dealloc
/// path directly instead through Handle.ReleaseTo.
func (h Handle) Release() {
	defaultMu.Lock()
	a := defaultAlc
	defaultMu.Unlock()
	if a == nil {
		panic("frame: allocator not initialized")
	}
	a.dealloc(h.Ppn)
}

/// ReleaseTo returns h's frame to a specific allocator, for tests and for
/// non-default allocators.
func (h Handle) ReleaseTo(a allocator_i) {
	a.dealloc(h.Ppn)
}
