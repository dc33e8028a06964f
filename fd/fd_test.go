package fd

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

type fakeFops struct {
	reopens int
	closed  bool
}

func (f *fakeFops) Read(buf *uio.UserBuffer) (int, defs.Err_t) { return 0, 0 }
func (f *fakeFops) Write(buf *uio.UserBuffer) (int, defs.Err_t) { return 0, 0 }
func (f *fakeFops) Close() defs.Err_t { f.closed = true; return 0 }
func (f *fakeFops) Reopen() defs.Err_t { f.reopens++; return 0 }

func TestInstallFindsLowestFreeSlot(t *testing.T) {
	tbl := NewTable(4)
	f0 := &Fd_t{Fops: &fakeFops{}}
	f1 := &Fd_t{Fops: &fakeFops{}}

	n0, err := tbl.Install(f0)
	if err != 0 || n0 != 0 {
		t.Fatalf("first install: fd=%d err=%d", n0, err)
	}
	n1, err := tbl.Install(f1)
	if err != 0 || n1 != 1 {
		t.Fatalf("second install: fd=%d err=%d", n1, err)
	}

	tbl.Clear(0)
	n2, err := tbl.Install(&Fd_t{Fops: &fakeFops{}})
	if err != 0 || n2 != 0 {
		t.Fatalf("expected reuse of cleared slot 0, got fd=%d err=%d", n2, err)
	}
}

func TestInstallReturnsEMFILEWhenFull(t *testing.T) {
	tbl := NewTable(1)
	if _, err := tbl.Install(&Fd_t{Fops: &fakeFops{}}); err != 0 {
		t.Fatalf("first install should succeed, err=%d", err)
	}
	if _, err := tbl.Install(&Fd_t{Fops: &fakeFops{}}); err != -defs.EMFILE {
		t.Fatalf("expected EMFILE, got %d", err)
	}
}

func TestCloneReopensEachOccupiedSlot(t *testing.T) {
	tbl := NewTable(2)
	fops := &fakeFops{}
	tbl.Install(&Fd_t{Fops: fops, Perms: FD_READ})

	clone, err := tbl.Clone()
	if err != 0 {
		t.Fatalf("clone: %d", err)
	}
	if fops.reopens != 1 {
		t.Fatalf("expected Reopen called once, got %d", fops.reopens)
	}
	if clone.Get(0) == nil {
		t.Fatal("expected clone to carry the occupied slot")
	}
	if clone.Get(0).Fops != fops {
		t.Fatal("clone should share the same Fdops_i (file objects are shared across fork)")
	}
}

func TestCloseAllClosesEveryOccupiedSlot(t *testing.T) {
	tbl := NewTable(2)
	f0 := &fakeFops{}
	f1 := &fakeFops{}
	tbl.Install(&Fd_t{Fops: f0})
	tbl.Install(&Fd_t{Fops: f1})

	tbl.CloseAll()
	if !f0.closed || !f1.closed {
		t.Fatal("expected every occupied slot closed")
	}
}
