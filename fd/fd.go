// Package fd implements the per-task file-descriptor table: a bounded
// vector of optional shared file objects, with the working-directory/path
// half dropped (there is no disk filesystem here) and a Table type added
// for the fixed-capacity slot allocation the syscall layer needs for
// pipe() and fork().
package fd

import (
	"sync"

	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/fdops"
)

/// Descriptor permission bits.
const (
	FD_READ    = 0x1 /// read permission
	FD_WRITE   = 0x2 /// write permission
	FD_CLOEXEC = 0x4 /// close-on-exec flag
)

/// Fd_t represents one open file descriptor.
type Fd_t struct {
	// Fops is an interface value (a reference), so copying an Fd_t
	// shares the same underlying file object.
	Fops  fdops.Fdops_i
	Perms int
}

/// Copyfd duplicates an open file descriptor by reopening it.
func Copyfd(fd *Fd_t) (*Fd_t, defs.Err_t) {
	nfd := &Fd_t{}
	*nfd = *fd
	if err := nfd.Fops.Reopen(); err != 0 {
		return nil, err
	}
	return nfd, 0
}

/// Close_panic closes the descriptor and panics on failure -- used at
/// task exit, where a failing close indicates a kernel invariant
/// violation rather than a recoverable error.
func Close_panic(f *Fd_t) {
	if f.Fops.Close() != 0 {
		panic("must succeed")
	}
}

/// Table is a task's fixed-capacity fd table, guarded by its own lock
/// since a task may share a file object with a child while the parent's
/// table continues to mutate.
type Table struct {
	mu  sync.Mutex
	fds []*Fd_t
	cap int
}

/// NewTable returns an empty table that can hold up to capacity
/// descriptors.
func NewTable(capacity int) *Table {
	return &Table{fds: make([]*Fd_t, capacity), cap: capacity}
}

/// Install places f into the lowest free slot and returns its fd number,
/// or -EMFILE if the table is full.
func (t *Table) Install(f *Fd_t) (int, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, slot := range t.fds {
		if slot == nil {
			t.fds[i] = f
			return i, 0
		}
	}
	return -1, -defs.EMFILE
}

/// InstallAt places f at an exact fd number, growing the table if needed
/// up to its capacity. Used when a caller requests a specific fd (none of
/// this kernel's syscalls do today, but pipe()'s two endpoints both rely
/// on lowest-free-slot semantics via Install, so InstallAt is mostly used
/// by tests asserting slot layout).
func (t *Table) InstallAt(fdnum int, f *Fd_t) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fdnum < 0 || fdnum >= t.cap {
		return -defs.EINVAL
	}
	t.fds[fdnum] = f
	return 0
}

/// Get returns the descriptor at fdnum, or nil if the slot is empty or
/// out of range.
func (t *Table) Get(fdnum int) *Fd_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fdnum < 0 || fdnum >= len(t.fds) {
		return nil
	}
	return t.fds[fdnum]
}

/// Clear empties the slot at fdnum, returning the descriptor that was
/// there (nil if already empty) so the caller can close it outside the
/// table's lock.
func (t *Table) Clear(fdnum int) *Fd_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fdnum < 0 || fdnum >= len(t.fds) {
		return nil
	}
	f := t.fds[fdnum]
	t.fds[fdnum] = nil
	return f
}

/// Clone duplicates every occupied slot via Copyfd, matching fork's
/// fd_table=parent.fd_table.clone().
func (t *Table) Clone() (*Table, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()
	nt := NewTable(t.cap)
	for i, f := range t.fds {
		if f == nil {
			continue
		}
		nf, err := Copyfd(f)
		if err != 0 {
			return nil, err
		}
		nt.fds[i] = nf
	}
	return nt, 0
}

/// CloseAll closes every occupied slot, used when a task exits.
func (t *Table) CloseAll() {
	t.mu.Lock()
	fds := make([]*Fd_t, len(t.fds))
	copy(fds, t.fds)
	for i := range t.fds {
		t.fds[i] = nil
	}
	t.mu.Unlock()

	for _, f := range fds {
		if f != nil {
			Close_panic(f)
		}
	}
}
