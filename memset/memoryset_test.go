package memset

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/frame"
	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
	"github.com/achilleasa/riscv-sv39-kernel/pagetable"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
)

func setup(t *testing.T) *frame.Allocator {
	t.Helper()
	const numFrames = 256
	physmem.Init(memlayout.PageSize * numFrames)
	a := frame.New(0, numFrames, physmem.Zero)
	frame.Init(a)

	trampoline, ok := frame.Alloc()
	if !ok {
		t.Fatal("alloc failed for trampoline page")
	}
	SetTrampolineFrame(trampoline.Ppn)
	return a
}

func TestPushRejectsOverlap(t *testing.T) {
	setup(t)
	ms := NewBare()

	if err := ms.InsertFramedArea(0x1000, 0x3000, pagetable.FlagR|pagetable.FlagW); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := ms.InsertFramedArea(0x2000, 0x4000, pagetable.FlagR); err == nil {
		t.Fatal("expected overlap to be rejected")
	}
	if got := len(ms.Areas()); got != 1 {
		t.Fatalf("rejected push must not grow area list; got %d areas", got)
	}
}

func TestDeleteFramedAreaExactMatch(t *testing.T) {
	setup(t)
	ms := NewBare()
	if err := ms.InsertFramedArea(0x1000, 0x3000, pagetable.FlagR|pagetable.FlagW); err != nil {
		t.Fatal(err)
	}

	if err := ms.DeleteFramedArea(0x1000, 0x2000); err == nil {
		t.Fatal("expected a non-exact range to be rejected")
	}
	if err := ms.DeleteFramedArea(0x1000, 0x3000); err != nil {
		t.Fatalf("exact-match delete failed: %v", err)
	}
	if got := len(ms.Areas()); got != 0 {
		t.Fatalf("expected area removed, got %d remaining", got)
	}

	vpn := addr.VirtAddr(0x1000).Floor()
	if _, ok := ms.PageTable.Translate(vpn); ok {
		t.Error("deleted area's page should no longer translate")
	}
}

func TestRemoveAreaWithStartVPN(t *testing.T) {
	setup(t)
	ms := NewBare()
	if err := ms.InsertFramedArea(0x4000, 0x6000, pagetable.FlagR); err != nil {
		t.Fatal(err)
	}
	vpn := addr.VirtAddr(0x4000).Floor()
	if err := ms.RemoveAreaWithStartVPN(vpn); err != nil {
		t.Fatalf("remove by start vpn: %v", err)
	}
	if got := len(ms.Areas()); got != 0 {
		t.Fatalf("expected 0 areas left, got %d", got)
	}
}

func TestFromExistedUserDeepCopiesFrames(t *testing.T) {
	setup(t)
	src := NewBare()
	if err := src.InsertFramedArea(0x1000, 0x2000, pagetable.FlagR|pagetable.FlagW); err != nil {
		t.Fatal(err)
	}

	vpn := addr.VirtAddr(0x1000).Floor()
	pte, ok := src.PageTable.Translate(vpn)
	if !ok {
		t.Fatal("expected source page mapped")
	}
	page := physmem.Bytes(pte.PPN())
	page[0] = 0xAB

	dst := FromExistedUser(src)
	dstPte, ok := dst.PageTable.Translate(vpn)
	if !ok {
		t.Fatal("expected copied page mapped in child")
	}
	if dstPte.PPN() == pte.PPN() {
		t.Fatal("fork must allocate distinct frames, not alias the parent's")
	}
	if got := physmem.Bytes(dstPte.PPN())[0]; got != 0xAB {
		t.Fatalf("child page byte = %#x, want 0xAB", got)
	}

	// Mutating the parent's page must not affect the child's copy.
	page[0] = 0xFF
	if got := physmem.Bytes(dstPte.PPN())[0]; got != 0xAB {
		t.Fatalf("child page mutated after independent parent write: got %#x", got)
	}
}

func TestRecycleDataPagesUnmapsEverything(t *testing.T) {
	setup(t)
	ms := NewBare()
	if err := ms.InsertFramedArea(0x1000, 0x3000, pagetable.FlagR|pagetable.FlagW); err != nil {
		t.Fatal(err)
	}

	ms.RecycleDataPages()
	if got := len(ms.Areas()); got != 0 {
		t.Fatalf("expected no areas after recycle, got %d", got)
	}
	vpn := addr.VirtAddr(0x1000).Floor()
	if _, ok := ms.PageTable.Translate(vpn); ok {
		t.Error("recycled area's pages should no longer translate")
	}
}

func TestNewKernelSpaceMapsEachSectionIdentically(t *testing.T) {
	setup(t)
	sec := KernelSections{
		TextStart:   0x0000, TextEnd: 0x1000,
		RodataStart: 0x1000, RodataEnd: 0x2000,
		DataStart:   0x2000, DataEnd: 0x3000,
		FreeStart:   0x3000, FreeEnd: 0x5000,
	}
	ms, err := NewKernelSpace(sec)
	if err != nil {
		t.Fatalf("NewKernelSpace: %v", err)
	}

	for _, va := range []addr.VirtAddr{0x0000, 0x1000, 0x2000, 0x3000, 0x4000} {
		vpn := va.Floor()
		pte, ok := ms.PageTable.Translate(vpn)
		if !ok {
			t.Fatalf("expected %#x mapped", va)
		}
		if pte.PPN() != addr.PhysPageNum(vpn) {
			t.Errorf("%#x: identical map broken, PPN()=%d want %d", va, pte.PPN(), vpn)
		}
	}
}
