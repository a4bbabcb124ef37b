package trace

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Replayer reads a trace file written by Recorder and calls a supplied
// callback once per Event, in the order they were written — letting
// `cmd/memtrans replay` stand in for a real instrumentation host driving
// the engine's per-instruction callback.
type Replayer struct {
	file *os.File
	zr   *zstd.Decoder
	dec  *json.Decoder
}

// NewReplayer opens the trace file at path, transparently decompressing it
// if the name ends in ".zst".
func NewReplayer(path string) (*Replayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rep := &Replayer{file: f}
	var src io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rep.zr = zr
		src = zr
	}
	rep.dec = json.NewDecoder(bufio.NewReader(src))
	return rep, nil
}

// Each calls fn once per Event in the trace, in order, stopping at the
// first error from fn or the end of the file.
func (r *Replayer) Each(fn func(Event) error) error {
	for {
		var e Event
		if err := r.dec.Decode(&e); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}

// Close releases the underlying decoder chain.
func (r *Replayer) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.file.Close()
}
