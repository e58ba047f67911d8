package treewc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mordilloSan/go-logger/logger"
)

// slotStatus is the lifecycle state of one slot.
//
//	Unassigned --launch--> Busy --markIdle--> Idle --reclaim--> Unassigned
//
// Only the dispatcher performs launch and reclaim. Only the occupying worker
// performs markIdle. Every transition is a compare-and-swap, so a transition
// out of order is detected instead of silently overwriting state.
type slotStatus uint32

const (
	slotUnassigned slotStatus = iota
	slotBusy
	slotIdle
)

func (s slotStatus) String() string {
	switch s {
	case slotUnassigned:
		return "unassigned"
	case slotBusy:
		return "busy"
	case slotIdle:
		return "idle"
	default:
		return fmt.Sprintf("slotStatus(%d)", uint32(s))
	}
}

// occupant is the handle of the worker most recently launched on a slot.
type occupant struct {
	// reclaimed is closed by the dispatcher once it has moved the slot back
	// to Unassigned. The worker waits on it before exiting.
	reclaimed chan struct{}
	// done is closed by the worker goroutine as its last action. The
	// dispatcher joins on it before reusing the slot.
	done chan struct{}
}

type slot struct {
	status atomic.Uint32

	// occ is read and written by the dispatcher goroutine only.
	occ *occupant

	// buf is the slot's read buffer. Allocated on first launch and handed to
	// each occupant in turn; the join in reclaim orders one occupant's use
	// before the next.
	buf []byte
}

// slotTable is the pool state of one [Walk] call.
//
// Lifetime: created by Walk, drained before Walk returns.
type slotTable struct {
	slots   []slot
	bufSize int

	// free holds the indices of slots that are not Busy. Capacity equals
	// the slot count and every index is present at most once, so sends
	// never block.
	free chan int

	// busyWG counts Busy slots; it is the completion gate.
	busyWG sync.WaitGroup

	busy atomic.Int32
	peak atomic.Int32
}

func newSlotTable(n, bufSize int) *slotTable {
	t := &slotTable{
		slots:   make([]slot, n),
		bufSize: bufSize,
		free:    make(chan int, n),
	}

	for i := range n {
		t.free <- i
	}

	return t
}

func (t *slotTable) status(i int) slotStatus {
	return slotStatus(t.slots[i].status.Load())
}

// acquire blocks until some slot is not Busy and returns its index.
//
// Slots come back in the order their workers finished; the initial order is
// 0..n-1.
func (t *slotTable) acquire(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}

	select {
	case i := <-t.free:
		// ctx may have been canceled by the worker that freed i; prefer
		// cancellation over dispatching more work.
		if err := ctx.Err(); err != nil {
			t.free <- i

			return -1, err
		}

		return i, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// reclaim acknowledges the previous occupant of slot i and joins it.
//
// A slot that has never been used is already Unassigned and reclaim is a
// no-op.
func (t *slotTable) reclaim(i int) error {
	s := &t.slots[i]

	occ := s.occ
	if occ == nil {
		return nil
	}

	if !s.status.CompareAndSwap(uint32(slotIdle), uint32(slotUnassigned)) {
		return &ConcurrencyError{
			Slot: i,
			Op:   OpReclaim,
			Err:  fmt.Errorf("slot is %s, want %s", t.status(i), slotIdle),
		}
	}

	close(occ.reclaimed)
	<-occ.done

	s.occ = nil

	return nil
}

// launch marks slot i Busy and returns the handle for its new occupant and
// the slot buffer. The caller starts the worker.
func (t *slotTable) launch(i int) (*occupant, []byte, error) {
	s := &t.slots[i]

	if s.occ != nil || !s.status.CompareAndSwap(uint32(slotUnassigned), uint32(slotBusy)) {
		return nil, nil, &ConcurrencyError{
			Slot: i,
			Op:   OpLaunch,
			Err:  fmt.Errorf("slot is %s with occupant=%t, want %s without occupant", t.status(i), s.occ != nil, slotUnassigned),
		}
	}

	if s.buf == nil {
		s.buf = make([]byte, t.bufSize)
	}

	occ := &occupant{
		reclaimed: make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.occ = occ

	t.busyWG.Add(1)

	n := t.busy.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			break
		}
	}

	logger.Debugf("slot %d busy (%d/%d)", i, n, len(t.slots))

	return occ, s.buf, nil
}

// markIdle is called by the occupant of slot i after it has reported. It
// moves the slot to Idle and hands the index back to the dispatcher.
func (t *slotTable) markIdle(i int) error {
	s := &t.slots[i]

	defer t.busyWG.Done()

	if !s.status.CompareAndSwap(uint32(slotBusy), uint32(slotIdle)) {
		return &ConcurrencyError{
			Slot: i,
			Op:   OpRelease,
			Err:  fmt.Errorf("slot is %s, want %s", t.status(i), slotBusy),
		}
	}

	t.busy.Add(-1)
	t.free <- i

	return nil
}

// wait blocks until no slot is Busy.
func (t *slotTable) wait() {
	t.busyWG.Wait()
}

// drain reclaims and joins the last occupant of every slot. Must only be
// called after wait, from the dispatcher goroutine.
func (t *slotTable) drain() []error {
	var errs []error

	for i := range t.slots {
		err := t.reclaim(i)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (t *slotTable) busyCount() int {
	return int(t.busy.Load())
}

func (t *slotTable) peakBusy() int {
	return int(t.peak.Load())
}
