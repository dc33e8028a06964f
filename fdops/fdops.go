// Package fdops defines the file-object capability interface every
// descriptor's Fops field satisfies: read and write over a UserBuffer,
// plus close/reopen for refcount-style fd-table bookkeeping. There is no
// Pread/Pwrite/Fstat/Mmapi/Listen/Accept here, since this kernel's files
// are purely in-memory: pipes, mailboxes, and terminal endpoints.
package fdops

import (
	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

/// Fdops_i is the capability every open file descriptor's Fops field
/// implements.
type Fdops_i interface {
	/// Read copies data into buf, returning the number of bytes
	/// transferred and an error code (negative on failure, 0 on
	/// success). Implementations that would block instead yield the
	/// current task and retry.
	Read(buf *uio.UserBuffer) (int, defs.Err_t)

	/// Write copies data out of buf, symmetric to Read.
	Write(buf *uio.UserBuffer) (int, defs.Err_t)

	/// Close releases any resources this descriptor holds exclusively
	/// (e.g. the write half of a pipe signals EOF to readers).
	Close() defs.Err_t

	/// Reopen increments whatever sharing state backs this object,
	/// called when a descriptor is duplicated across fork.
	Reopen() defs.Err_t
}
