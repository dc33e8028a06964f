// Package accnt accumulates per-task CPU accounting. Adapted from the
// teacher's accnt.Accnt_t: Now() reads the kernel's tick counter
// (package ticks) instead of calling time.Now(), since a freestanding
// kernel has no wall clock -- its only notion of elapsed time is the
// platform timer interrupt count.
package accnt

import (
	"sync"
	"sync/atomic"

	"github.com/achilleasa/riscv-sv39-kernel/ticks"
)

/// Accnt_t accumulates per-task accounting information. Both Userns and
/// Sysns store runtime in nanoseconds. The embedded mutex lets callers
/// take a consistent snapshot when exporting usage.
type Accnt_t struct {
	Userns int64
	Sysns  int64
	sync.Mutex
}

/// Utadd adds delta nanoseconds to the user-time counter.
func (a *Accnt_t) Utadd(delta int) {
	atomic.AddInt64(&a.Userns, int64(delta))
}

/// Systadd adds delta nanoseconds to the system-time counter.
func (a *Accnt_t) Systadd(delta int) {
	atomic.AddInt64(&a.Sysns, int64(delta))
}

/// Now returns the current kernel time in nanoseconds, derived from the
/// timer tick count.
func (a *Accnt_t) Now() int64 {
	return ticks.NowNanos()
}

/// Finish adds the time elapsed since inttime (nanoseconds) to system
/// time, called when a task returns from kernel mode to user mode.
func (a *Accnt_t) Finish(inttime int64) {
	a.Systadd(int(a.Now() - inttime))
}

/// Add merges another accounting record into this one.
func (a *Accnt_t) Add(n *Accnt_t) {
	a.Lock()
	a.Userns += n.Userns
	a.Sysns += n.Sysns
	a.Unlock()
}
