// Package circbuf implements a fixed-capacity circular byte buffer, the
// backing store shared by pipes, the console, and mailboxes. There is no
// physical-page-backed lazy allocation here, since these are pure
// in-memory kernel objects never mapped into any user address space --
// just a plain byte slice and the wraparound read/write math.
package circbuf

import (
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

/// Circbuf is not safe for concurrent use; callers serialize access (the
/// file objects built on top of it hold their own mutex).
type Circbuf struct {
	buf  []byte
	head int // write position, monotonically increasing
	tail int // read position, monotonically increasing
}

/// New allocates a Circbuf with the given byte capacity.
func New(size int) *Circbuf {
	if size <= 0 {
		panic("circbuf: bad size")
	}
	return &Circbuf{buf: make([]byte, size)}
}

/// Cap returns the buffer's total capacity in bytes.
func (cb *Circbuf) Cap() int { return len(cb.buf) }

/// Full reports whether the buffer can accept no more data.
func (cb *Circbuf) Full() bool { return cb.head-cb.tail == len(cb.buf) }

/// Empty reports whether the buffer holds no data.
func (cb *Circbuf) Empty() bool { return cb.head == cb.tail }

/// Used returns the number of bytes currently buffered.
func (cb *Circbuf) Used() int { return cb.head - cb.tail }

/// Left returns the remaining free capacity in bytes.
func (cb *Circbuf) Left() int { return len(cb.buf) - cb.Used() }

/// Copyin reads from src into the circular buffer, honoring wraparound,
/// and returns the number of bytes accepted (0 if the buffer is full).
func (cb *Circbuf) Copyin(src *uio.UserBuffer) int {
	if cb.Full() {
		return 0
	}
	n := len(cb.buf)
	hi := cb.head % n
	ti := cb.tail % n
	c := 0

	if ti <= hi {
		dst := cb.buf[hi:]
		wrote := src.Read(dst)
		c += wrote
		if wrote < len(dst) {
			cb.head += c
			return c
		}
		hi = (cb.head + wrote) % n
	}
	dst := cb.buf[hi:ti]
	wrote := src.Read(dst)
	c += wrote
	cb.head += c
	return c
}

/// Copyout writes up to max bytes of the buffer's contents to dst (all of
/// it, if max is 0), honoring wraparound, and returns the number of bytes
/// produced (0 if the buffer is empty).
func (cb *Circbuf) Copyout(dst *uio.UserBuffer, max int) int {
	if cb.Empty() {
		return 0
	}
	n := len(cb.buf)
	hi := cb.head % n
	ti := cb.tail % n
	c := 0

	if hi <= ti {
		src := cb.buf[ti:]
		if max != 0 && max < len(src) {
			src = src[:max]
		}
		wrote := dst.Write(src)
		c += wrote
		if wrote < len(src) {
			cb.tail += c
			return c
		}
		if max != 0 {
			max -= c
		}
		ti = (cb.tail + wrote) % n
	}
	src := cb.buf[ti:hi]
	if max != 0 && max < len(src) {
		src = src[:max]
	}
	wrote := dst.Write(src)
	c += wrote
	cb.tail += c
	return c
}
