package trapctx

// Switch saves the currently running task's callee-saved registers into
// *from and loads *to's into the CPU, resuming execution wherever *to's ra
// points. Like cpu's CSR
// primitives, this has no portable Go body; see switch_riscv64.s.
func Switch(from, to *TaskContext)
