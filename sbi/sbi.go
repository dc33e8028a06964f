// Package sbi declares the four firmware primitives this kernel treats
// as external collaborators : non-blocking
// console I/O, arming the next timer interrupt, and shutdown. Like cpu's
// CSR writes, these cross into firmware via an `ecall` and have no
// portable Go body; see sbi_riscv64.s.
package sbi

// ConsolePutchar writes one byte to the platform console.
func ConsolePutchar(ch uint64)

// ConsoleGetchar returns the next console byte, or 0 if none is pending
//.
func ConsoleGetchar() uint64

// SetTimer arms the next timer interrupt for absTicks.
func SetTimer(absTicks uint64)

// Shutdown powers the platform off and never returns.
func Shutdown()
