package scall

import (
	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/fd"
	"github.com/achilleasa/riscv-sv39-kernel/file"
	"github.com/achilleasa/riscv-sv39-kernel/task"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

/// sysClose clears fdnum's slot in the current task's fd table.
func (t *Table) sysClose(fdnum int) int64 {
	cur := t.current()
	f := cur.FDTable().Clear(fdnum)
	if f == nil {
		return -1
	}
	if err := f.Fops.Close(); err != 0 {
		return int64(err)
	}
	return 0
}

/// sysPipe creates a connected pipe pair and installs both endpoints into
/// the lowest two free fd slots, writing their numbers into out[0]/out[1]
///.
func (t *Table) sysPipe(outPtr uint64) int64 {
	cur := t.current()
	r, w := file.NewPipe()

	rfd, err := cur.FDTable().Install(&fd.Fd_t{Fops: r, Perms: fd.FD_READ})
	if err != 0 {
		return int64(err)
	}
	wfd, err := cur.FDTable().Install(&fd.Fd_t{Fops: w, Perms: fd.FD_WRITE})
	if err != 0 {
		cur.FDTable().Clear(rfd)
		return int64(err)
	}

	token := cur.MemorySet().PageTable.Token()
	window, ok := uio.TranslatedRefMut(token, asVA(outPtr), 16)
	if !ok {
		warnBadPointer("pipe", cur.Pid.PID())
		return -1
	}
	putU64(window[0:8], uint64(rfd))
	putU64(window[8:16], uint64(wfd))
	return 0
}

/// sysRead forwards to the fd's file object, yielding and retrying while
/// it reports EAGAIN.
func (t *Table) sysRead(fdnum int, bufPtr uint64, length int) int64 {
	for {
		cur := t.current()
		f := cur.FDTable().Get(fdnum)
		if f == nil {
			return -1
		}
		token := cur.MemorySet().PageTable.Token()
		slices, ok := uio.TranslatedByteBuffer(token, asVA(bufPtr), length)
		if !ok {
			warnBadPointer("read", cur.Pid.PID())
			return -1
		}
		n, err := f.Fops.Read(uio.NewUserBuffer(slices))
		if err == -defs.EAGAIN {
			t.Proc.SuspendCurrentAndRunNext()
			continue
		}
		if err != 0 {
			return int64(err)
		}
		return int64(n)
	}
}

/// sysWrite is read's symmetric counterpart.
func (t *Table) sysWrite(fdnum int, bufPtr uint64, length int) int64 {
	for {
		cur := t.current()
		f := cur.FDTable().Get(fdnum)
		if f == nil {
			return -1
		}
		token := cur.MemorySet().PageTable.Token()
		slices, ok := uio.TranslatedByteBuffer(token, asVA(bufPtr), length)
		if !ok {
			warnBadPointer("write", cur.Pid.PID())
			return -1
		}
		n, err := f.Fops.Write(uio.NewUserBuffer(slices))
		if err == -defs.EAGAIN {
			t.Proc.SuspendCurrentAndRunNext()
			continue
		}
		if err != 0 {
			return int64(err)
		}
		return int64(n)
	}
}

/// sysMailWrite pushes a message into pid's mailbox.
func (t *Table) sysMailWrite(pid int, bufPtr uint64, length int) int64 {
	cur := t.current()
	dst := task.Lookup(pid)
	if dst == nil {
		return -1
	}
	token := cur.MemorySet().PageTable.Token()
	slices, ok := uio.TranslatedByteBuffer(token, asVA(bufPtr), length)
	if !ok {
		warnBadPointer("mailwrite", cur.Pid.PID())
		return -1
	}
	msg := make([]byte, length)
	uio.NewUserBuffer(slices).Read(msg)
	if err := dst.Mailbox.Push(msg); err != 0 {
		return -1
	}
	return int64(length)
}

/// sysMailRead pops the oldest message addressed to the caller's own
/// mailbox (pid == -1), or -- for symmetry with the original's
/// process-addressed inbox model -- the oldest message if pid names the
/// caller itself.
func (t *Table) sysMailRead(pid int, bufPtr uint64, length int) int64 {
	cur := t.current()
	if pid != -1 && pid != cur.Pid.PID() {
		return -1
	}
	token := cur.MemorySet().PageTable.Token()
	slices, ok := uio.TranslatedByteBuffer(token, asVA(bufPtr), length)
	if !ok {
		warnBadPointer("mailread", cur.Pid.PID())
		return -1
	}
	dst := make([]byte, length)
	n, ok := cur.Mailbox.Pop(dst)
	if !ok {
		return -1
	}
	uio.NewUserBuffer(slices).Write(dst[:n])
	return int64(n)
}
