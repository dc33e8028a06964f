// Package console implements the TTY file object and an io.Writer over
// the same firmware primitive, so the logging package can write to it
// the same way panic/debug output writes directly to the UART.
package console

import (
	"sync"

	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/sbi"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

/// Device is the console file object: reads block (via EAGAIN, yielded by
/// the syscall layer) until a byte is available, writes go straight to
/// the firmware putchar primitive.
type Device struct {
	mu sync.Mutex
}

/// Shared is the kernel-wide console device backing fd 0/1/2 of every
/// task.
var Shared = &Device{}

func (d *Device) Read(buf *uio.UserBuffer) (int, defs.Err_t) {
	ch := sbi.ConsoleGetchar()
	if ch == 0 {
		return 0, -defs.EAGAIN
	}
	b := [1]byte{byte(ch)}
	n := buf.Write(b[:])
	return n, 0
}

func (d *Device) Write(buf *uio.UserBuffer) (int, defs.Err_t) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tmp := make([]byte, buf.Len())
	n := buf.Read(tmp)
	for _, c := range tmp[:n] {
		sbi.ConsolePutchar(uint64(c))
	}
	return n, 0
}

func (d *Device) Close() defs.Err_t { return 0 }
func (d *Device) Reopen() defs.Err_t { return 0 }

/// Writer adapts Device to io.Writer for klog, writing bytes directly
/// without going through a UserBuffer (the kernel's own log lines are not
/// user memory).
type Writer struct{}

func (Writer) Write(p []byte) (int, error) {
	Shared.mu.Lock()
	defer Shared.mu.Unlock()
	for _, c := range p {
		sbi.ConsolePutchar(uint64(c))
	}
	return len(p), nil
}
