// Package trapctx defines the two fixed-layout register-save records the
// trap/context-switch protocol moves data through: TrapContext (user-mode
// registers, saved at a well-known user virtual page) and TaskContext
// (kernel-side callee-saved registers, saved on a task's kernel stack).
// Both are plain structs with a stable field order, the same way the
// teacher's tinfo.Tnote_t pins a fixed layout so assembly can address
// fields by offset.
package trapctx

import (
	"github.com/achilleasa/riscv-sv39-kernel/addr"
)

/// TrapContext is the record saved/restored by the trampoline on every
/// user<->supervisor transition. Its field
/// order is load-bearing: the trampoline assembly (trampoline.s) indexes
/// into it by byte offset, computed from this layout.
type TrapContext struct {
	X           [32]uint64 // general-purpose registers x0..x31
	Sstatus     uint64
	Sepc        uint64
	KernelSATP  uint64 // kernel page-table token, set once at construction
	KernelSP    uint64 // top of this task's kernel stack
	TrapHandler uint64 // entry address of the kernel trap dispatcher
}

/// AppInitContext builds the TrapContext for a freshly loaded application:
/// sepc = entry, sp (x[2]) = user_sp, sstatus.SPP cleared (return to user
/// mode), the rest zeroed.
func AppInitContext(entry, userSP addr.VirtAddr, kernelSATP uint64, kernelSP addr.VirtAddr, trapHandler uint64) TrapContext {
	var tc TrapContext
	tc.X[2] = uint64(userSP)
	tc.Sstatus = sstatusUserMode()
	tc.Sepc = uint64(entry)
	tc.KernelSATP = kernelSATP
	tc.KernelSP = uint64(kernelSP)
	tc.TrapHandler = trapHandler
	return tc
}

// sstatusSPPMask is the SPP bit (bit 8): 0 means the trap returns to user
// mode (U-mode) rather than supervisor mode.
const sstatusSPPMask = uint64(1) << 8

func sstatusUserMode() uint64 {
	return 0 &^ sstatusSPPMask
}

/// TaskContext is the kernel-side callee-saved register set __switch moves
/// between. Field order matches the s0..s11
/// save/restore sequence __switch (switch.s) performs.
type TaskContext struct {
	RA uint64
	SP uint64
	S  [12]uint64 // s0..s11
}

/// GotoTrapReturn builds the initial TaskContext for a task that has never
/// run: ra points at trapReturn so the first __switch into this task
/// "returns" straight into trap_return, which restores the TrapContext and
/// enters user mode.
func GotoTrapReturn(kernelSP addr.VirtAddr, trapReturn uint64) TaskContext {
	return TaskContext{RA: trapReturn, SP: uint64(kernelSP)}
}
