package treewc

import (
	"errors"
	"fmt"
	"sync"
)

// Operation names carried by [IOError].Op.
const (
	OpOpenDir  = "opendir"
	OpReadDir  = "readdir"
	OpCloseDir = "closedir"
	OpLstat    = "lstat"
	OpOpen     = "open"
	OpRead     = "read"
	OpClose    = "close"
	OpWrite    = "write"
)

// Operation names carried by [ConcurrencyError].Op.
const (
	OpReclaim = "reclaim"
	OpLaunch  = "launch"
	OpRelease = "release"
)

// ErrInvalidPoolSize is returned by [Walk] when the pool size is below 1.
var ErrInvalidPoolSize = errors.New("pool size must be at least 1")

var errContainsNUL = errors.New("contains NUL byte")

// IOError is returned when a file system or output operation fails.
type IOError struct {
	// Path is the file or directory path as built from the walk root.
	Path string
	// Op is one of the Op* constants, e.g. "open" or "readdir".
	Op string
	// Err is the underlying error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ConcurrencyError is returned when a slot transition is attempted out of
// order. When the dispatcher hits one, it abandons the rest of the current
// directory; workers already running are unaffected.
type ConcurrencyError struct {
	// Slot is the slot index involved.
	Slot int
	// Op is "reclaim", "launch" or "release".
	Op string
	// Err is the underlying error.
	Err error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("%s slot %d: %v", e.Op, e.Slot, e.Err)
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}

// ErrorClass groups errors by how the walk treats them.
type ErrorClass uint8

const (
	// ClassUnknown is any error not produced by this package.
	ClassUnknown ErrorClass = iota
	// ClassArgument is a fatal argument error; nothing was traversed.
	ClassArgument
	// ClassEnumeration means a directory could not be opened or read; the
	// subtree (or the rest of it) was skipped.
	ClassEnumeration
	// ClassStat means one entry's metadata was unreadable; the entry was
	// skipped.
	ClassStat
	// ClassRead means a file could not be opened, read or closed; it
	// produced no result line.
	ClassRead
	// ClassOutput means a result line could not be written.
	ClassOutput
	// ClassConcurrency means a slot could not be reclaimed or launched; the
	// rest of the current directory was abandoned.
	ClassConcurrency
)

func (c ErrorClass) String() string {
	switch c {
	case ClassArgument:
		return "argument"
	case ClassEnumeration:
		return "enumeration"
	case ClassStat:
		return "stat"
	case ClassRead:
		return "read"
	case ClassOutput:
		return "output"
	case ClassConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Class reports the class of err.
func Class(err error) ErrorClass {
	if errors.Is(err, ErrInvalidPoolSize) {
		return ClassArgument
	}

	var concErr *ConcurrencyError
	if errors.As(err, &concErr) {
		return ClassConcurrency
	}

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		return ClassUnknown
	}

	switch ioErr.Op {
	case OpOpenDir, OpReadDir, OpCloseDir:
		return ClassEnumeration
	case OpLstat:
		return ClassStat
	case OpOpen, OpRead, OpClose:
		return ClassRead
	case OpWrite:
		return ClassOutput
	default:
		return ClassUnknown
	}
}

// errNotifier counts errors and calls the OnError handler.
//
// The handler is called under mu, so it never runs concurrently with itself.
type errNotifier struct {
	mu      sync.Mutex
	count   int
	onError func(err error, count int) bool
	errs    []error
}

func newErrNotifier(onError func(err error, count int) bool) *errNotifier {
	return &errNotifier{onError: onError}
}

// report increments the error count, calls the handler and collects err if
// the handler asks for it (or if there is no handler).
func (n *errNotifier) report(err error) {
	if err == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.count++

	if n.onError == nil || n.onError(err, n.count) {
		n.errs = append(n.errs, err)
	}
}

func (n *errNotifier) collected() []error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.errs
}
