// Package file implements the concrete in-memory file objects backing
// pipes and the console device. Grounded on the
// teacher's pipe/console device objects built atop circbuf.Circbuf_t,
// adapted to this kernel's Fdops_i and UserBuffer types.
package file

import (
	"sync"

	"github.com/achilleasa/riscv-sv39-kernel/circbuf"
	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

const pipeBufSize = 4096

/// pipeCore is the shared state between a pipe's two endpoints.
type pipeCore struct {
	mu        sync.Mutex
	buf       *circbuf.Circbuf
	readOpen  int
	writeOpen int
}

/// PipeRead is a pipe's read endpoint.
type PipeRead struct {
	core *pipeCore
}

/// PipeWrite is a pipe's write endpoint.
type PipeWrite struct {
	core *pipeCore
}

/// NewPipe constructs a connected pair of pipe endpoints.
func NewPipe() (*PipeRead, *PipeWrite) {
	core := &pipeCore{buf: circbuf.New(pipeBufSize), readOpen: 1, writeOpen: 1}
	return &PipeRead{core: core}, &PipeWrite{core: core}
}

/// Read drains available bytes into buf. If the pipe is empty and the
/// write end is still open, it reports EAGAIN so the syscall layer can
/// yield and retry ; once every
/// writer has closed, an empty pipe reads as EOF (0 bytes, no error).
func (r *PipeRead) Read(buf *uio.UserBuffer) (int, defs.Err_t) {
	r.core.mu.Lock()
	defer r.core.mu.Unlock()
	n := r.core.buf.Copyout(buf, 0)
	if n == 0 && !r.core.buf.Empty() {
		panic("circbuf: Copyout reported nothing drained from a non-empty buffer")
	}
	if n == 0 && r.core.writeOpen > 0 {
		return 0, -defs.EAGAIN
	}
	return n, 0
}

func (r *PipeRead) Write(buf *uio.UserBuffer) (int, defs.Err_t) { return 0, -defs.EINVAL }

/// Close marks the read end closed. Once both ends are closed the shared
/// buffer becomes unreachable and is collected by the Go runtime.
func (r *PipeRead) Close() defs.Err_t {
	r.core.mu.Lock()
	defer r.core.mu.Unlock()
	r.core.readOpen--
	return 0
}

/// Reopen increments the read end's share count, called when this
/// descriptor is duplicated across fork.
func (r *PipeRead) Reopen() defs.Err_t {
	r.core.mu.Lock()
	defer r.core.mu.Unlock()
	r.core.readOpen++
	return 0
}

/// Write pushes bytes into the pipe, or reports EAGAIN if the buffer is
/// full and at least one reader remains; if every reader has closed, a
/// write targets a broken pipe (EPIPE-equivalent: reported as EINVAL,
/// this kernel has no distinct EPIPE code).
func (w *PipeWrite) Write(buf *uio.UserBuffer) (int, defs.Err_t) {
	w.core.mu.Lock()
	defer w.core.mu.Unlock()
	if w.core.readOpen == 0 {
		return 0, -defs.EINVAL
	}
	n := w.core.buf.Copyin(buf)
	if n == 0 && w.core.buf.Full() {
		return 0, -defs.EAGAIN
	}
	return n, 0
}

func (w *PipeWrite) Read(buf *uio.UserBuffer) (int, defs.Err_t) { return 0, -defs.EINVAL }

func (w *PipeWrite) Close() defs.Err_t {
	w.core.mu.Lock()
	defer w.core.mu.Unlock()
	w.core.writeOpen--
	return 0
}

func (w *PipeWrite) Reopen() defs.Err_t {
	w.core.mu.Lock()
	defer w.core.mu.Unlock()
	w.core.writeOpen++
	return 0
}
