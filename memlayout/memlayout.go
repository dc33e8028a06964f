// Package memlayout holds the tunable constants that describe the virtual
// and physical memory layout of the kernel and its user processes, kept
// as exported package constants rather than a config file or struct.
package memlayout

const (
	/// PageShift is the base-2 exponent of the page size.
	PageShift uint = 12

	/// PageSize is the size in bytes of a single page (also PAGE_SIZE).
	PageSize = 1 << PageShift

	/// KernelStackSize is the size in bytes of one task's kernel stack.
	KernelStackSize = 8192

	/// UserStackSize is the size in bytes of a user process's initial stack.
	UserStackSize = 8192

	/// KernelHeapSize sizes the dynamic kernel heap backing dynamic kernel
	/// allocations (the heap allocator itself lives outside this package).
	KernelHeapSize = 65536

	/// MemoryEnd is the exclusive upper bound of usable physical memory.
	MemoryEnd = 0x80800000

	/// MaxAppNum bounds the number of applications in the embedded bundle.
	MaxAppNum = 16

	/// AppBaseAddress is the first load address used by the (external)
	/// ELF loader for application images.
	AppBaseAddress = 0x80400000

	/// AppSizeLimit bounds a single embedded application's image size.
	AppSizeLimit = 0x20000

	/// ClockFreq is the platform timer's tick frequency in Hz.
	ClockFreq = 12_500_000

	/// TicksPerSec is the number of timer interrupts requested per second.
	TicksPerSec = 200

	/// vpnBits is the width of one level of a VPN index (SV39: 3x9 bits).
	vpnBits = 9

	/// vaBits is the number of virtual address bits SV39 decodes (the top
	/// 25 bits of a 64-bit virtual address are a sign-extension of bit 38).
	vaBits = 39
)

/// Trampoline is the virtual address of the shared trampoline page: the
/// highest page of every 64-bit address space (usize::MAX - PAGE + 1).
const Trampoline = ^uintptr(0) - PageSize + 1

/// TrapContext is the virtual address of a user process's trap-context
/// page, directly below the trampoline.
const TrapContext = Trampoline - PageSize

/// KernelStackFor returns the half-open kernel-stack range for pid, with a
/// guard page separating it from the next pid's stack:
///
//	[TRAMPOLINE - pid*(KSTACK+PAGE) - KSTACK, TRAMPOLINE - pid*(KSTACK+PAGE))
func KernelStackFor(pid int) (top, bottom uintptr) {
	span := uintptr(KernelStackSize + PageSize)
	top = Trampoline - uintptr(pid)*span
	bottom = top - KernelStackSize
	return top, bottom
}
