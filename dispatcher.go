package treewc

import (
	"context"
	"errors"
	"io"

	"github.com/mordilloSan/go-logger/logger"
)

// dispatcher is the sequential tree walk. It runs on the goroutine that
// called [Walk] and never scans files itself.
type dispatcher struct {
	enum     Enumerator
	slots    *slotTable
	notifier *errNotifier
	worker   workerCfg

	// launched counts workers started during the walk.
	launched int
}

// walkDir enumerates dir one level deep, descending into each subdirectory
// before moving on to the next sibling, and hands regular files to workers.
//
// A concurrency failure or cancellation abandons the rest of dir; callers
// higher up continue with their own siblings unless ctx is done.
func (d *dispatcher) walkDir(ctx context.Context, dir string) {
	r, err := d.enum.Open(dir)
	if err != nil {
		d.notifier.report(&IOError{Path: dir, Op: OpOpenDir, Err: underlying(err)})

		return
	}

	defer func() {
		closeErr := r.Close()
		if closeErr != nil {
			d.notifier.report(&IOError{Path: dir, Op: OpCloseDir, Err: underlying(closeErr)})
		}
	}()

	var readErr error

	for {
		if ctx.Err() != nil {
			return
		}

		entry, err := r.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}

			break
		}

		if entry.Name == "" || isDotName(entry.Name) {
			continue
		}

		path := joinPath(dir, entry.Name)

		if entry.Err != nil {
			d.notifier.report(&IOError{Path: path, Op: OpLstat, Err: underlying(entry.Err)})

			continue
		}

		switch entry.Type {
		case TypeDir:
			d.walkDir(ctx, path)

		case TypeRegular:
			err := d.dispatch(ctx, path)
			if err == nil {
				continue
			}

			var concErr *ConcurrencyError
			if errors.As(err, &concErr) {
				d.notifier.report(err)
				logger.WarnKV("abandoning directory", "dir", dir, "slot", concErr.Slot, "op", concErr.Op)
			}

			return

		default:
			// Symlinks, FIFOs, sockets, devices.
		}
	}

	// Reported once per directory, after the entries that were read.
	if readErr != nil {
		d.notifier.report(&IOError{Path: dir, Op: OpReadDir, Err: underlying(readErr)})
	}
}

// dispatch waits for a free slot, reclaims and joins its previous occupant,
// then starts a worker for path on it.
//
// Returns ctx.Err() if ctx is done while waiting, or a [*ConcurrencyError].
func (d *dispatcher) dispatch(ctx context.Context, path string) error {
	i, err := d.slots.acquire(ctx)
	if err != nil {
		return err
	}

	err = d.slots.reclaim(i)
	if err != nil {
		return err
	}

	occ, buf, err := d.slots.launch(i)
	if err != nil {
		return err
	}

	d.launched++

	go d.worker.run(d.slots, workItem{path: path, slot: i, occ: occ, buf: buf})

	return nil
}
