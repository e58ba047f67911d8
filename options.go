package treewc

import "os"

// Option configures [Walk].
// Options are applied in order.
type Option func(*options)

// WithSink sets the destination for result lines.
//
// The sink is called concurrently from every worker and must be safe for
// concurrent use. [NewLineSink] serializes whole lines.
//
// Default: NewLineSink(os.Stdout).
func WithSink(s Sink) Option {
	return func(o *options) {
		o.Sink = s
	}
}

// WithScanFunc replaces the file scanner.
//
// fn is called from worker goroutines, one call per file; buf is the slot's
// read buffer and must not be retained after fn returns.
//
// Default: [CountFile].
func WithScanFunc(fn ScanFunc) Option {
	return func(o *options) {
		o.Scan = fn
	}
}

// WithEnumerator replaces the directory enumerator.
//
// The enumerator is only used by the dispatcher goroutine.
//
// Default: [OSEnumerator].
func WithEnumerator(e Enumerator) Option {
	return func(o *options) {
		o.Enumerator = e
	}
}

// WithOnError registers an error handler.
//
// count is the cumulative error count including the current error. The
// handler is serialized across goroutines.
//
// Return value controls error collection:
//   - true:  collect the error in the slice returned by [Walk]
//   - false: discard the error
//
// If nil, all errors are collected.
func WithOnError(fn func(err error, count int) bool) Option {
	return func(o *options) {
		o.OnError = fn
	}
}

// WithReadBufferSize sets the per-slot read buffer size in bytes.
//
// Values <= 0 use the default (32KB). Values below 512 are raised to 512.
func WithReadBufferSize(n int) Option {
	return func(o *options) {
		o.ReadBufSize = n
	}
}

type options struct {
	// Sink receives result lines.
	Sink Sink
	// Scan computes counts for one file.
	Scan ScanFunc
	// Enumerator lists directory entries.
	Enumerator Enumerator
	// OnError handles every non-fatal error.
	OnError func(err error, count int) (collect bool)
	// ReadBufSize is the per-slot read buffer size.
	ReadBufSize int
}

// applyOptions merges option values and applies defaults.
func applyOptions(opts []Option) options {
	cfg := options{}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.Sink == nil {
		cfg.Sink = NewLineSink(os.Stdout)
	}

	if cfg.Scan == nil {
		cfg.Scan = CountFile
	}

	if cfg.Enumerator == nil {
		cfg.Enumerator = OSEnumerator{}
	}

	if cfg.ReadBufSize <= 0 {
		cfg.ReadBufSize = defaultReadBufSize
	}

	if cfg.ReadBufSize < minReadBufSize {
		cfg.ReadBufSize = minReadBufSize
	}

	return cfg
}
