//go:build linux

package memsource

import (
	"fmt"
	"os"

	"github.com/zafer-esen/memtrans/errs"
)

// ProcMemReader reads another process's address space via
// /proc/<pid>/mem, the standard non-PIN mechanism for out-of-process
// memory readback on Linux. This is the one piece of this repository that
// talks directly to the OS; every other package is pure computation over
// caller-supplied buffers.
type ProcMemReader struct {
	pid  int
	file *os.File
}

// OpenProcMem opens /proc/<pid>/mem for reading. The returned reader must
// be closed when the traced process exits.
func OpenProcMem(pid int) (*ProcMemReader, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/mem", pid))
	if err != nil {
		return nil, errs.Wrap(errs.Readback, err, "open proc mem")
	}
	return &ProcMemReader{pid: pid, file: f}, nil
}

// ReadLine reads len(buf) bytes from the traced process at addr. Short
// reads (a partially unmapped line, a permission-denied page) and any
// syscall failure surface as an errs.Readback error; the caller is
// expected to skip analysis for this line rather than propagate the
// failure further.
func (r *ProcMemReader) ReadLine(addr uint64, buf []byte) error {
	n, err := r.file.ReadAt(buf, int64(addr))
	if err != nil {
		return errs.Wrap(errs.Readback, err, fmt.Sprintf("read pid %d at %#x", r.pid, addr))
	}
	if n != len(buf) {
		return errs.New(errs.Readback, fmt.Sprintf("short read from pid %d at %#x: got %d of %d bytes", r.pid, addr, n, len(buf)))
	}
	return nil
}

// Close releases the open /proc/<pid>/mem file descriptor.
func (r *ProcMemReader) Close() error {
	return r.file.Close()
}
