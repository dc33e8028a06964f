package scall

import (
	"github.com/achilleasa/riscv-sv39-kernel/ticks"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

/// sysGetTime writes the current time, derived from the timer tick
/// counter rather than a real wall clock, as {sec, usec} through tvPtr,
/// splitting at ClockFreq.
func (t *Table) sysGetTime(tvPtr uint64) int64 {
	cur := t.current()
	token := cur.MemorySet().PageTable.Token()
	window, ok := uio.TranslatedRefMut(token, asVA(tvPtr), 16)
	if !ok {
		warnBadPointer("get_time", cur.Pid.PID())
		return -1
	}
	sec, usec := ticks.SecondsMicros()
	putU64(window[0:8], sec)
	putU64(window[8:16], usec)
	return 0
}
