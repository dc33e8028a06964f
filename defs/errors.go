package defs

/// Err_t is the kernel's error type: zero means success, a negative value
/// identifies the failure. It crosses the syscall boundary directly as a
/// process's signed syscall return value, where negative means error.
type Err_t int

const (
	EPERM   Err_t = 1  /// operation not permitted
	ENOENT  Err_t = 2  /// no such process, app or child
	EINTR   Err_t = 4  /// yielded operation interrupted
	EFAULT  Err_t = 14 /// bad user pointer
	EBUSY   Err_t = 16 /// resource in use (e.g. wait already pending)
	EEXIST  Err_t = 17 /// overlapping or duplicate mapping
	EINVAL  Err_t = 22 /// bad argument (unaligned start, bad prot bits...)
	ENOHEAP Err_t = 23 /// kernel ran out of frames or id space
	EMFILE  Err_t = 24 /// fd table full
	ENOMEM  Err_t = 25 /// backing memory unavailable
	EBADF   Err_t = 26 /// bad file descriptor
	EAGAIN  Err_t = 27 /// mailbox full or empty; try again
)

/// Pid_t is a process identifier. PID 0 is reserved for the init process.
type Pid_t int

/// Tid_t names a schedulable task; this kernel schedules one task per
/// process so Tid_t and Pid_t coincide, but the distinct type keeps call
/// sites honest about which identity space they mean.
type Tid_t int
