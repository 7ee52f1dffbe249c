package videotick

import (
	"context"
	"time"
)

var timeNow = func() time.Time {
	return time.Now()
}

// Ticker paces a loop at a fixed frame rate. Falling more than one
// interval behind restarts the schedule from now instead of bursting
// to catch up.
type Ticker struct {
	dur  time.Duration
	next time.Time
}

// New returns a ticker for fps. A non positive fps never waits.
func New(fps int) *Ticker {
	if fps <= 0 {
		return &Ticker{}
	}
	return &Ticker{dur: time.Second / time.Duration(fps)}
}

func (t *Ticker) Interval() time.Duration { return t.dur }

// Wait blocks until the next slot, or until ctx is done.
func (t *Ticker) Wait(ctx context.Context) error {
	if t.dur <= 0 {
		return ctx.Err()
	}
	now := timeNow()
	if t.next.IsZero() {
		t.next = now.Add(t.dur)
		return ctx.Err()
	}

	if sleep := t.next.Sub(now); sleep > 0 {
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	t.next = t.next.Add(t.dur)
	if lag := timeNow().Sub(t.next); lag > t.dur {
		t.next = timeNow().Add(t.dur)
	}
	return nil
}
