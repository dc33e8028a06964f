// Package trampoline declares the two entry points the trap protocol
// jumps through by raw address rather than by ordinary Go call:
// UserReturn, reached via a task's TaskContext.RA on its first dispatch
// and via the syscall/interrupt return path thereafter, and
// UserTrapVector, the vector stvec points at on every trap from user
// mode. Both run, by construction, on the trampoline physical page
// shared at the same virtual address (memlayout.Trampoline) by every
// address space, which is why the SATP switch inside them is safe: the
// code doing the switching is mapped identically before and after it
// takes effect.
//
// Like cpu's CSR writes and trapctx.Switch, the actual register
// save/restore sequence has no portable Go expression; trampoline_riscv64.s
// gives an illustrative body in the same vein as switch_riscv64.s.
package trampoline

import "reflect"

// UserReturn restores a TrapContext's saved registers and sret's into
// user mode. Its body lives in trampoline_riscv64.s.
func UserReturn()

// UserTrapVector is what stvec is pointed at while a task runs in user
// mode: it swaps sscratch/sp, saves registers into the TrapContext,
// switches to the kernel's SATP and stack, then jumps to the trap
// context's stored TrapHandler address.
func UserTrapVector()

// Addr returns fn's entry program counter as a plain 64-bit value, the
// form TaskContext.RA and TrapContext.TrapHandler store addresses in.
// Boot glue calls this once at startup to resolve the two fixed
// addresses every task-creating call threads through.
func Addr(fn func()) uint64 {
	return uint64(reflect.ValueOf(fn).Pointer())
}
