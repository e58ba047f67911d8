// Package treewc counts bytes and words of every regular file in a directory
// tree using a fixed pool of worker slots.
//
// # Traversal
//
// [Walk] enumerates one directory level at a time and descends into
// subdirectories immediately (depth-first, pre-order). Traversal itself is
// sequential; only file scans run concurrently.
//
// # Symlinks
//
// Symbolic links are not followed. The enumerator reports them as
// [TypeOther] and they are ignored, like FIFOs, sockets and devices.
//
// # Slots
//
// At most poolSize files are scanned at once. Each scan occupies one slot:
//
//	Unassigned --(dispatcher launches)--> Busy --(worker reports)--> Idle
//	    ^                                                             |
//	    +-------------------(dispatcher reclaims and joins)-----------+
//
// The dispatcher blocks on a free-slot channel instead of polling. Before a
// slot is reused, its previous occupant is acknowledged and joined, so the
// slot's read buffer is never shared between two workers.
//
// # Output
//
// Results are written to the configured [Sink] as soon as each scan
// completes. Lines from different workers appear in no particular order.
// Files with zero bytes produce no line.
//
// # Errors
//
// Enumeration, stat, read and output failures are reported through
// [WithOnError] and processing continues. Only an invalid pool size is fatal.
package treewc

import (
	"context"
	"strings"

	"github.com/mordilloSan/go-logger/logger"
)

const (
	// defaultReadBufSize is the per-slot read buffer size.
	defaultReadBufSize = 32 * 1024

	// minReadBufSize keeps tiny configured buffers from degrading into
	// byte-at-a-time reads.
	minReadBufSize = 512
)

// Walk scans every regular file under root with at most poolSize concurrent
// workers and blocks until all launched workers have reported.
//
// Errors are collected according to [WithOnError]; with no handler every
// error is returned. Walk returns []error{[ErrInvalidPoolSize]} without
// traversing anything when poolSize < 1.
//
// Canceling ctx stops the dispatch of new files. Scans already running are
// never interrupted and Walk still waits for them.
func Walk(ctx context.Context, root string, poolSize int, opts ...Option) []error {
	if poolSize < 1 {
		return []error{ErrInvalidPoolSize}
	}

	if strings.IndexByte(root, 0) >= 0 {
		return []error{&IOError{Path: root, Op: OpOpenDir, Err: errContainsNUL}}
	}

	cfg := applyOptions(opts)
	notifier := newErrNotifier(cfg.OnError)

	d := &dispatcher{
		enum:     cfg.Enumerator,
		slots:    newSlotTable(poolSize, cfg.ReadBufSize),
		notifier: notifier,
		worker: workerCfg{
			scan:     cfg.Scan,
			sink:     cfg.Sink,
			notifier: notifier,
		},
	}

	logger.DebugKV("walk starting", "root", root, "pool", poolSize)

	d.walkDir(ctx, root)

	// Completion gate: every launched worker has reported and marked Idle.
	d.slots.wait()

	// Release the last occupant of every slot so no worker goroutine
	// outlives Walk.
	for _, err := range d.slots.drain() {
		notifier.report(err)
	}

	logger.DebugKV("walk finished", "root", root, "launched", d.launched, "peak", d.slots.peakBusy())

	return notifier.collected()
}
