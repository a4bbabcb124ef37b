package trace

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Recorder appends newline-delimited JSON Events to an underlying file,
// optionally zstd-compressed when the destination path ends in ".zst".
type Recorder struct {
	file *os.File
	zw   *zstd.Encoder
	w    *bufio.Writer
	enc  *json.Encoder
}

// NewRecorder creates (truncating) the file at path and returns a Recorder
// writing to it.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	r := &Recorder{file: f}
	var dst io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.zw = zw
		dst = zw
	}
	r.w = bufio.NewWriter(dst)
	r.enc = json.NewEncoder(r.w)
	return r, nil
}

// Write appends one Event to the trace.
func (r *Recorder) Write(e Event) error {
	return r.enc.Encode(e)
}

// Close flushes and closes the underlying writer chain (bufio, then zstd
// if present, then the file).
func (r *Recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		return err
	}
	if r.zw != nil {
		if err := r.zw.Close(); err != nil {
			return err
		}
	}
	return r.file.Close()
}
