// Package cpu declares the handful of riscv64 supervisor-mode primitives
// the kernel needs that cannot be expressed in portable Go: CSR writes
// and TLB maintenance. These are bodyless Go declarations backed by a
// small assembly file; the assembly itself is boot/entry-level detail,
// not core kernel logic.
package cpu

// SetSATP writes token (mode|root PPN) into the supervisor address
// translation register.
func SetSATP(token uint64)

// SfenceVMA flushes the entire TLB. Called after every SetSATP.
func SfenceVMA()

// DisableInterrupts masks supervisor-mode interrupts (sstatus.SIE := 0).
func DisableInterrupts()

// EnableInterrupts unmasks supervisor-mode interrupts (sstatus.SIE := 1).
func EnableInterrupts()

// Halt stops instruction execution (used only after an unrecoverable
// kernel panic).
func Halt()
