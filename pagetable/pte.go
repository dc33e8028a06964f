// Package pagetable implements the SV39 three-level page-table engine:
// page-table entries packed as a physical page number plus permission
// and status bits, and a three-level walk in place of an x86-style
// recursive-mapping direct map.
package pagetable

import "github.com/achilleasa/riscv-sv39-kernel/addr"

/// Flag is one bit of a page-table entry.
type Flag uint64

const (
	FlagV Flag = 1 << 0 /// valid
	FlagR Flag = 1 << 1 /// readable
	FlagW Flag = 1 << 2 /// writable
	FlagX Flag = 1 << 3 /// executable
	FlagU Flag = 1 << 4 /// user accessible
	FlagG Flag = 1 << 5 /// global
	FlagA Flag = 1 << 6 /// accessed
	FlagD Flag = 1 << 7 /// dirty
)

const ppnShift = 10
const ppnMask = (uint64(1) << 44) - 1

/// PTE is one 64-bit SV39 page-table word.
type PTE uint64

/// MkPTE packs ppn and flags into a page-table entry.
func MkPTE(ppn addr.PhysPageNum, flags Flag) PTE {
	return PTE(uint64(ppn)<<ppnShift | uint64(flags))
}

/// PPN extracts the physical page number bits 53..10.
func (p PTE) PPN() addr.PhysPageNum {
	return addr.PhysPageNum((uint64(p) >> ppnShift) & ppnMask)
}

/// Flags extracts the low 8 flag bits.
func (p PTE) Flags() Flag { return Flag(uint64(p) & 0xff) }

/// Valid reports whether V is set.
func (p PTE) Valid() bool { return p.Flags()&FlagV != 0 }

/// Readable reports whether R is set.
func (p PTE) Readable() bool { return p.Flags()&FlagR != 0 }

/// Writable reports whether W is set.
func (p PTE) Writable() bool { return p.Flags()&FlagW != 0 }

/// Executable reports whether X is set.
func (p PTE) Executable() bool { return p.Flags()&FlagX != 0 }

/// isLeaf reports whether any of R/W/X is set — SV39 leaves carry at least
/// one permission bit, intermediate PTEs carry only V.
func (p PTE) isLeaf() bool { return p.Flags()&(FlagR|FlagW|FlagX) != 0 }
