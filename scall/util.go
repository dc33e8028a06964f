package scall

import (
	"encoding/binary"

	"github.com/achilleasa/riscv-sv39-kernel/addr"
)

// asVA reinterprets a raw x10..x12 syscall argument as a user virtual
// address.
func asVA(v uint64) addr.VirtAddr { return addr.VirtAddr(v) }

// putU32/putU64 write a little-endian value into a translated user-memory
// window.
func putU32(window []byte, v uint32) { binary.LittleEndian.PutUint32(window, v) }
func putU64(window []byte, v uint64) { binary.LittleEndian.PutUint64(window, v) }
