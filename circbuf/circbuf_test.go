package circbuf

import (
	"testing"

	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

func TestCopyinCopyoutRoundTrip(t *testing.T) {
	cb := New(8)
	src := []byte("hello")
	n := cb.Copyin(uio.NewUserBuffer([][]byte{src}))
	if n != len(src) {
		t.Fatalf("copyin = %d, want %d", n, len(src))
	}
	if cb.Used() != len(src) {
		t.Fatalf("Used() = %d, want %d", cb.Used(), len(src))
	}

	dst := make([]byte, 5)
	n = cb.Copyout(uio.NewUserBuffer([][]byte{dst}), 0)
	if n != 5 || string(dst) != "hello" {
		t.Fatalf("copyout = %d %q, want 5 %q", n, dst, "hello")
	}
	if !cb.Empty() {
		t.Fatal("expected buffer empty after full drain")
	}
}

func TestWraparound(t *testing.T) {
	cb := New(4)

	cb.Copyin(uio.NewUserBuffer([][]byte{[]byte("ab")}))
	out := make([]byte, 2)
	cb.Copyout(uio.NewUserBuffer([][]byte{out}), 0) // drains "ab", tail now 2

	cb.Copyin(uio.NewUserBuffer([][]byte{[]byte("cdef")})) // wraps around
	if !cb.Full() {
		t.Fatal("expected buffer full after wraparound write")
	}

	out2 := make([]byte, 4)
	n := cb.Copyout(uio.NewUserBuffer([][]byte{out2}), 0)
	if n != 4 || string(out2) != "cdef" {
		t.Fatalf("got %d %q, want 4 %q", n, out2, "cdef")
	}
}

func TestFullRejectsCopyin(t *testing.T) {
	cb := New(2)
	cb.Copyin(uio.NewUserBuffer([][]byte{[]byte("xy")}))
	if !cb.Full() {
		t.Fatal("expected full")
	}
	n := cb.Copyin(uio.NewUserBuffer([][]byte{[]byte("z")}))
	if n != 0 {
		t.Fatalf("expected 0 bytes accepted into full buffer, got %d", n)
	}
}

func TestEmptyCopyoutReturnsZero(t *testing.T) {
	cb := New(4)
	n := cb.Copyout(uio.NewUserBuffer([][]byte{make([]byte, 2)}), 0)
	if n != 0 {
		t.Fatalf("expected 0 from empty buffer, got %d", n)
	}
}
