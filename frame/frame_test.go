package frame

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
)

func TestAllocExhaustion(t *testing.T) {
	var zeroed []addr.PhysPageNum
	a := New(10, 12, func(p addr.PhysPageNum) { zeroed = append(zeroed, p) })

	h1, ok := a.Alloc()
	if !ok || h1.Ppn != 10 {
		t.Fatalf("first alloc: got %+v ok=%v, want ppn=10", h1, ok)
	}
	h2, ok := a.Alloc()
	if !ok || h2.Ppn != 11 {
		t.Fatalf("second alloc: got %+v ok=%v, want ppn=11", h2, ok)
	}
	if _, ok := a.Alloc(); ok {
		t.Fatalf("expected exhaustion at current==end")
	}
	if len(zeroed) != 2 {
		t.Fatalf("expected every handed-out frame to be zeroed, got %v", zeroed)
	}
}

func TestReleaseRecycles(t *testing.T) {
	a := New(10, 11, nil)

	h, ok := a.Alloc()
	if !ok {
		t.Fatal("alloc failed")
	}
	if _, ok := a.Alloc(); ok {
		t.Fatal("expected exhaustion before release")
	}

	h.ReleaseTo(a)
	if !a.IsFree(h.Ppn) {
		t.Fatal("released frame should be free")
	}

	h2, ok := a.Alloc()
	if !ok || h2.Ppn != h.Ppn {
		t.Fatalf("expected to recycle ppn %d, got %+v ok=%v", h.Ppn, h2, ok)
	}
	if a.IsFree(h2.Ppn) {
		t.Fatal("freshly allocated frame should not be free")
	}
}

func TestDoubleFreePanics(t *testing.T) {
	a := New(10, 11, nil)
	h, _ := a.Alloc()
	h.ReleaseTo(a)

	defer func() {
		if recover() == nil {
			t.Fatal("expected double release to panic")
		}
	}()
	h.ReleaseTo(a)
}
