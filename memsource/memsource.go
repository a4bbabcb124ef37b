// Package memsource is the memory-readback bridge: the only I/O on the hot
// path. It copies line_size bytes from the traced address space into a
// caller-supplied scratch buffer, standing in for the original PIN tool's
// PIN_SafeCopy.
package memsource

import (
	"fmt"

	"github.com/zafer-esen/memtrans/errs"
)

// Reader copies len(buf) bytes starting at addr into buf, best-effort. A
// short or failed read returns an *errs.Error of kind errs.Readback; the
// engine handles that locally by skipping byte-level analysis for the
// affected line while hit/miss/evict counters still update.
type Reader interface {
	ReadLine(addr uint64, buf []byte) error
}

// ByteSliceReader serves reads from an in-process byte arena. It backs
// every deterministic test in this repository and the synthetic trace
// generator in cmd/memtrans, standing in for a traced process's address
// space.
type ByteSliceReader struct {
	Arena []byte
}

// NewByteSliceReader wraps arena for use as a Reader. The caller retains
// ownership of arena and may keep mutating it between reads.
func NewByteSliceReader(arena []byte) *ByteSliceReader {
	return &ByteSliceReader{Arena: arena}
}

// ReadLine copies len(buf) bytes from r.Arena[addr:] into buf. addr+len(buf)
// reaching past the end of the arena is a Readback error, not a panic: a
// real traced process can map or unmap pages at any time, and the engine
// must treat that the same way it treats any other readback failure.
func (r *ByteSliceReader) ReadLine(addr uint64, buf []byte) error {
	end := addr + uint64(len(buf))
	if end > uint64(len(r.Arena)) || end < addr {
		return errs.New(errs.Readback, fmt.Sprintf("read [%#x, %#x) exceeds arena of length %d", addr, end, len(r.Arena)))
	}
	copy(buf, r.Arena[addr:end])
	return nil
}
