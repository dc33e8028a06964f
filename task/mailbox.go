package task

import (
	"sync"

	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/limits"
)

/// Mailbox is a bounded FIFO of pid-addressed messages, one per task
///.
type Mailbox struct {
	mu   sync.Mutex
	msgs [][]byte
}

/// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox { return &Mailbox{} }

/// Push enqueues msg (truncated/rejected if oversized), returning EAGAIN
/// if the mailbox's FIFO is already full.
func (m *Mailbox) Push(msg []byte) defs.Err_t {
	if len(msg) > limits.MailboxMsgSize {
		return -defs.EINVAL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.msgs) >= limits.MailboxMsgs {
		return -defs.EAGAIN
	}
	cp := make([]byte, len(msg))
	copy(cp, msg)
	m.msgs = append(m.msgs, cp)
	return 0
}

/// Pop dequeues the oldest message, copying up to len(dst) bytes into it
/// and returning the number of bytes copied, or ok=false if the mailbox
/// is empty.
func (m *Mailbox) Pop(dst []byte) (n int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.msgs) == 0 {
		return 0, false
	}
	msg := m.msgs[0]
	m.msgs = m.msgs[1:]
	return copy(dst, msg), true
}

/// registry maps pid -> TCB, the process-addressing table mailread/
/// mailwrite use to find a target mailbox by pid.
var (
	registryMu sync.Mutex
	registry = map[int]*TCB{}
)

/// Register installs t into the pid registry, called once a PCB is fully
/// constructed.
func Register(t *TCB) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Pid.PID()] = t
}

/// Unregister removes t's pid from the registry, called when its PCB is
/// finally reaped by waitpid.
func Unregister(t *TCB) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, t.Pid.PID())
}

/// Lookup returns the TCB for pid, or nil if no such task is registered.
func Lookup(pid int) *TCB {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[pid]
}
