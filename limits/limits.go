// Package limits holds the system-wide resource bounds this kernel
// enforces: per-task fd-table capacity, mailbox depth/message size, and
// a cap on live tasks. NTasks uses the same atomic take/give pattern as
// any other limit contended over concurrently.
package limits

import (
	"sync/atomic"
	"unsafe"
)

const (
	/// NOFILE bounds the number of open descriptors per task.
	NOFILE = 32

	/// MailboxMsgs bounds a mailbox's queued message count.
	MailboxMsgs = 16

	/// MailboxMsgSize bounds a single mailbox message's length.
	MailboxMsgSize = 256

	/// MaxTasks bounds the number of live PCBs the kernel will admit.
	MaxTasks = 1024
)

/// Sysatomic_t is a numeric limit that can be atomically taken and given
/// back, for resources contended across tasks.
type Sysatomic_t int64

func (s *Sysatomic_t) ptr() *int64 { return (*int64)(unsafe.Pointer(s)) }

/// Taken tries to decrement the limit by n, returning true on success.
func (s *Sysatomic_t) Taken(n uint) bool {
	g := atomic.AddInt64(s.ptr(), -int64(n))
	if g >= 0 {
		return true
	}
	atomic.AddInt64(s.ptr(), int64(n))
	return false
}

/// Take decrements the limit by one.
func (s *Sysatomic_t) Take() bool { return s.Taken(1) }

/// Given increments the limit by n.
func (s *Sysatomic_t) Given(n uint) { atomic.AddInt64(s.ptr(), int64(n)) }

/// Give increments the limit by one.
func (s *Sysatomic_t) Give() { s.Given(1) }

/// NTasks tracks the number of admitted tasks against MaxTasks.
var NTasks = Sysatomic_t(MaxTasks)
