package pagetable

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
	"github.com/achilleasa/riscv-sv39-kernel/frame"
	"github.com/achilleasa/riscv-sv39-kernel/physmem"
)

func setup(t *testing.T) *frame.Allocator {
	t.Helper()
	physmem.Init(4096 * 64)
	a := frame.New(0, 64, physmem.Zero)
	frame.Init(a)
	return a
}

func TestMapTranslateUnmap(t *testing.T) {
	setup(t)
	pt := New()

	vpn := addr.VirtPageNum(7)
	data, ok := frame.Alloc()
	if !ok {
		t.Fatal("alloc failed")
	}

	pt.Map(vpn, data.Ppn, FlagR|FlagW|FlagU)

	pte, ok := pt.Translate(vpn)
	if !ok {
		t.Fatal("expected vpn to translate")
	}
	if pte.PPN() != data.Ppn {
		t.Errorf("PPN() = %d, want %d", pte.PPN(), data.Ppn)
	}
	if !pte.Valid() || !pte.Readable() || !pte.Writable() {
		t.Errorf("unexpected flags %b", pte.Flags())
	}

	va := addr.VirtAddr(uintptr(vpn)<<12 + 0x42)
	pa, ok := pt.TranslateVA(va)
	if !ok {
		t.Fatal("expected va to translate")
	}
	if want := addr.PhysAddr(uintptr(data.Ppn)<<12 + 0x42); pa != want {
		t.Errorf("TranslateVA() = %#x, want %#x", pa, want)
	}

	pt.Unmap(vpn)
	if _, ok := pt.Translate(vpn); ok {
		t.Error("expected vpn to be unmapped")
	}
}

func TestMapAssertsNotAlreadyValid(t *testing.T) {
	setup(t)
	pt := New()
	vpn := addr.VirtPageNum(1)
	f, _ := frame.Alloc()
	pt.Map(vpn, f.Ppn, FlagR)

	defer func() {
		if recover() == nil {
			t.Fatal("expected re-map of valid vpn to panic")
		}
	}()
	pt.Map(vpn, f.Ppn, FlagR)
}

func TestUnmapAssertsValid(t *testing.T) {
	setup(t)
	pt := New()
	defer func() {
		if recover() == nil {
			t.Fatal("expected unmap of invalid vpn to panic")
		}
	}()
	pt.Unmap(addr.VirtPageNum(3))
}

func TestTranslateNeverAllocates(t *testing.T) {
	a := setup(t)
	pt := New() // consumes 1 frame for root
	if got := countAllocated(a); got != 1 {
		t.Fatalf("expected 1 frame allocated for root, got %d", got)
	}

	if _, ok := pt.Translate(addr.VirtPageNum(500)); ok {
		t.Fatal("unmapped vpn should not translate")
	}
	if got := countAllocated(a); got != 1 {
		t.Errorf("Translate must never allocate; frame count changed to %d", got)
	}
}

func countAllocated(a *frame.Allocator) int {
	n := 0
	for ppn := addr.PhysPageNum(0); ppn < 64; ppn++ {
		if a.Allocated(ppn) {
			n++
		}
	}
	return n
}

func TestTokenRoundTrip(t *testing.T) {
	setup(t)
	pt := New()
	vpn := addr.VirtPageNum(2)
	f, _ := frame.Alloc()
	pt.Map(vpn, f.Ppn, FlagR|FlagW)

	foreign := FromToken(pt.Token())
	pte, ok := foreign.Translate(vpn)
	if !ok || pte.PPN() != f.Ppn {
		t.Fatalf("FromToken translation mismatch: ok=%v pte=%+v", ok, pte)
	}
}
