// Package elfloader parses an ELF64 executable into its PT_LOAD segments,
// entry point, and initial stack top -- a pure function of the input
// bytes, touching no address space. The same debug/elf package backs
// cmd/chentry's ELF entry-point patching.
package elfloader

import (
	"bytes"
	"debug/elf"
	"fmt"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
)

/// Perm is the subset of {R,W,X} a PT_LOAD segment requests, independent
/// of the page-table Flag type so this package stays decoupled from the
/// memory subsystem.
type Perm uint8

const (
	PermR Perm = 1 << 0
	PermW Perm = 1 << 1
	PermX Perm = 1 << 2
)

/// Segment is one PT_LOAD program header, already sliced to its file
/// bytes; callers add the BSS tail themselves when file size < mem size.
type Segment struct {
	VirtAddr addr.VirtAddr
	MemSize  uint64
	FileData []byte
	Perm     Perm
}

/// Image is the result of parsing an ELF64 executable.
type Image struct {
	Segments []Segment
	Entry    addr.VirtAddr
}

/// Parse parses an ELF64 riscv64 executable and returns its PT_LOAD
/// segments and entry point. It is a pure function of the bytes: it does
/// not touch any address space.
func Parse(data []byte) (Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("elfloader: %w", err)
	}
	if f.Class != elf.ELFCLASS64 {
		return Image{}, fmt.Errorf("elfloader: not a 64-bit ELF")
	}

	img := Image{Entry: addr.VirtAddr(f.Entry)}
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		seg := Segment{
			VirtAddr: addr.VirtAddr(prog.Vaddr),
			MemSize:  prog.Memsz,
			Perm:     permOf(prog.Flags),
		}
		buf := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(buf, 0); err != nil {
			return Image{}, fmt.Errorf("elfloader: reading PT_LOAD: %w", err)
		}
		seg.FileData = buf
		img.Segments = append(img.Segments, seg)
	}
	return img, nil
}

func permOf(flags elf.ProgFlag) Perm {
	var p Perm
	if flags&elf.PF_R != 0 {
		p |= PermR
	}
	if flags&elf.PF_W != 0 {
		p |= PermW
	}
	if flags&elf.PF_X != 0 {
		p |= PermX
	}
	return p
}
