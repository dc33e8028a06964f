// Package profdev implements the /dev/prof profiling device (defs.D_PROF):
// a file object that accumulates a periodic-timer-interrupt program-
// counter sample per task tick and serializes the result as a
// github.com/google/pprof/profile.Profile protobuf on read, the same
// format `go tool pprof` already consumes.
package profdev

import (
	"bytes"
	"sync"

	"github.com/google/pprof/profile"

	"github.com/achilleasa/riscv-sv39-kernel/defs"
	"github.com/achilleasa/riscv-sv39-kernel/uio"
)

/// Sample is one recorded program-counter observation, taken at a timer
/// tick while task pid was running.
type Sample struct {
	PID int
	PC  uint64
}

/// Device is the per-kernel /dev/prof file object: Record accumulates
/// samples (called from the timer-interrupt path), Read serializes and
/// drains them as a pprof protobuf.
type Device struct {
	mu      sync.Mutex
	samples []Sample
}

/// New returns an empty profiling device.
func New() *Device { return &Device{} }

/// Record appends one program-counter sample for pid, called once per
/// timer tick while a user task is executing.
func (d *Device) Record(pid int, pc uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.samples = append(d.samples, Sample{PID: pid, PC: pc})
}

// toProfile converts the accumulated samples into a minimal valid
// profile.Profile: one synthetic location per distinct PC, one sample
// per recorded tick, labeled with the owning pid. This is deliberately
// not a symbolizing profiler -- no debug/elf symbol table is wired in --
// just the wire-format encoding, not a full profiling subsystem.
func (d *Device) toProfile() *profile.Profile {
	locByPC := map[uint64]*profile.Location{}
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "samples", Unit: "count"}},
		PeriodType: &profile.ValueType{Type: "tick", Unit: "count"},
		Period:     1,
	}
	var nextLocID uint64 = 1
	for _, s := range d.samples {
		loc, ok := locByPC[s.PC]
		if !ok {
			loc = &profile.Location{ID: nextLocID, Address: s.PC}
			nextLocID++
			locByPC[s.PC] = loc
			p.Location = append(p.Location, loc)
		}
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{1},
			Label:    map[string][]string{"pid": {itoa(s.PID)}},
		})
	}
	return p
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

/// Read serializes every sample recorded so far into buf as a
/// pprof-format protobuf and clears the accumulated samples.
func (d *Device) Read(buf *uio.UserBuffer) (int, defs.Err_t) {
	d.mu.Lock()
	p := d.toProfile()
	d.samples = nil
	d.mu.Unlock()

	var out bytes.Buffer
	if err := p.Write(&out); err != nil {
		return 0, -defs.EFAULT
	}
	n := buf.Write(out.Bytes())
	return n, 0
}

func (d *Device) Write(buf *uio.UserBuffer) (int, defs.Err_t) { return 0, -defs.EINVAL }
func (d *Device) Close() defs.Err_t { return 0 }
func (d *Device) Reopen() defs.Err_t { return 0 }
