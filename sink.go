package treewc

import (
	"io"
	"strconv"
	"sync"
)

// Result is one successfully scanned, non-empty file.
type Result struct {
	// WorkerID identifies the execution unit that scanned the file. On Linux
	// it is the OS thread id of the worker; elsewhere a process-unique
	// sequence number. Only meaningful for telling concurrent workers apart.
	WorkerID int
	// Path is the file path as built from the walk root.
	Path string
	Counts
}

// Sink receives results from workers.
//
// Report is called concurrently and must be safe for concurrent use. A
// returned error is reported as an [*IOError] with Op "write".
type Sink interface {
	Report(Result) error
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(Result) error

// Report implements [Sink].
func (f SinkFunc) Report(r Result) error {
	return f(r)
}

// LineSink writes one "<worker-id> <path> <bytes> <words>" line per result.
//
// Each line is formatted into a scratch buffer and written with a single
// Write call under a mutex, so lines from different workers never
// interleave.
type LineSink struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewLineSink returns a [LineSink] writing to w.
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w, buf: make([]byte, 0, 256)}
}

// Report implements [Sink].
func (s *LineSink) Report(r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = AppendLine(s.buf[:0], r)

	_, err := s.w.Write(s.buf)

	return err
}

// AppendLine appends the result line for r, including the trailing newline,
// to dst.
func AppendLine(dst []byte, r Result) []byte {
	dst = strconv.AppendInt(dst, int64(r.WorkerID), 10)
	dst = append(dst, ' ')
	dst = append(dst, r.Path...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, r.Bytes, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, r.Words, 10)

	return append(dst, '\n')
}
