package treewc

import "errors"

// workItem is one file bound to one slot. It is owned by the worker until the
// worker exits.
type workItem struct {
	path string
	slot int
	occ  *occupant
	buf  []byte
}

// workerCfg is what every worker of a walk shares.
type workerCfg struct {
	scan     ScanFunc
	sink     Sink
	notifier *errNotifier
}

// run is the body of one worker goroutine.
//
// Order per item: scan, report (non-empty files only), mark the slot Idle,
// wait for the dispatcher to reclaim the slot, exit. The slot's done channel
// is closed last, which is what the dispatcher joins on.
func (c workerCfg) run(slots *slotTable, item workItem) {
	defer close(item.occ.done)

	id := bindWorkerIdentity()

	counts, err := c.scan(item.path, item.buf)

	switch {
	case err != nil:
		var ioErr *IOError
		if !errors.As(err, &ioErr) {
			err = &IOError{Path: item.path, Op: OpRead, Err: err}
		}

		c.notifier.report(err)
	case counts.Bytes > 0:
		sinkErr := c.sink.Report(Result{WorkerID: id, Path: item.path, Counts: counts})
		if sinkErr != nil {
			c.notifier.report(&IOError{Path: item.path, Op: OpWrite, Err: underlying(sinkErr)})
		}
	}

	// item.buf must not be touched past this point; the slot's next occupant
	// reuses it.
	if err := slots.markIdle(item.slot); err != nil {
		// Nobody will reclaim a slot that never became Idle.
		c.notifier.report(err)

		return
	}

	<-item.occ.reclaimed
}
