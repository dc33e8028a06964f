package pagetable

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
)

func TestPTEPackUnpack(t *testing.T) {
	specs := []struct {
		ppn   addr.PhysPageNum
		flags Flag
	}{
		{0, FlagV},
		{1234, FlagV | FlagR | FlagW},
		{0xfffffffffff, FlagV | FlagR | FlagX | FlagU},
	}

	for specIndex, spec := range specs {
		pte := MkPTE(spec.ppn, spec.flags)
		if got := pte.PPN(); got != spec.ppn {
			t.Errorf("[spec %d] PPN() = %d, want %d", specIndex, got, spec.ppn)
		}
		if got := pte.Flags(); got != spec.flags {
			t.Errorf("[spec %d] Flags() = %b, want %b", specIndex, got, spec.flags)
		}
	}
}

func TestValidAndLeaf(t *testing.T) {
	intermediate := MkPTE(1, FlagV)
	if !intermediate.Valid() || intermediate.isLeaf() {
		t.Errorf("intermediate PTE should be valid and non-leaf, got valid=%v leaf=%v",
			intermediate.Valid(), intermediate.isLeaf())
	}

	leaf := MkPTE(1, FlagV|FlagR|FlagW|FlagU)
	if !leaf.Valid() || !leaf.isLeaf() {
		t.Errorf("leaf PTE should be valid and leaf, got valid=%v leaf=%v",
			leaf.Valid(), leaf.isLeaf())
	}

	invalid := PTE(0)
	if invalid.Valid() {
		t.Error("zero PTE should not be valid")
	}
}
