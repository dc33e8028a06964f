// Package ticks tracks the platform timer's tick count, the kernel's only
// notion of elapsed time. A freestanding kernel has no wall clock to read;
// ticks.Now paired with memlayout.ClockFreq turns the hardware's count of
// timer interrupts into the nanosecond/second-and-microsecond readings
// accnt.Accnt_t and sys_get_time need.
package ticks

import (
	"sync/atomic"

	"github.com/achilleasa/riscv-sv39-kernel/memlayout"
)

var count uint64

/// Advance is called from the timer interrupt path once per tick.
func Advance() { atomic.AddUint64(&count, 1) }

/// Now returns the current tick count.
func Now() uint64 { return atomic.LoadUint64(&count) }

/// NowNanos converts the current tick count to nanoseconds, sized for
/// Accnt_t's nanosecond-denominated counters.
func NowNanos() int64 {
	return int64(Now()) * 1_000_000_000 / int64(memlayout.ClockFreq)
}

/// NextTrigger returns the absolute tick value the next timer interrupt
/// should fire at, TicksPerSec ticks of ClockFreq-Hz resolution apart.
func NextTrigger() uint64 {
	return Now() + uint64(memlayout.ClockFreq)/uint64(memlayout.TicksPerSec)
}

/// Seconds and microseconds split of the current tick count, for
/// sys_get_time.
func SecondsMicros() (sec, usec uint64) {
	n := Now()
	sec = n / uint64(memlayout.ClockFreq)
	rem := n % uint64(memlayout.ClockFreq)
	usec = rem * 1_000_000 / uint64(memlayout.ClockFreq)
	return sec, usec
}
