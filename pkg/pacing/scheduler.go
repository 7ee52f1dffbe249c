package pacing

import (
	"sync"
	"time"

	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
)

const (
	DefaultDueSlack     = 3 * time.Millisecond
	DefaultStaleHorizon = 4 * time.Millisecond
)

// StaleMidPolicy selects how far DropStaleMids looks past the queue head.
type StaleMidPolicy int

const (
	// DropHeadOnly discards a stale head Mid only when the very next
	// item is a Real.
	DropHeadOnly StaleMidPolicy = iota
	// DropLeading discards every stale Mid in the run of Mids at the
	// head of the queue, provided a Real follows that run.
	DropLeading
)

type Settings struct {
	History        int
	DueSlack       time.Duration
	StaleHorizon   time.Duration
	StaleMidPolicy StaleMidPolicy
}

func DefaultSettings() Settings {
	return Settings{
		History:        DefaultHistory,
		DueSlack:       DefaultDueSlack,
		StaleHorizon:   DefaultStaleHorizon,
		StaleMidPolicy: DropHeadOnly,
	}
}

// Scheduler decides which frame is due at each output tick. All of its
// methods are safe to call from the capture and output goroutines at once.
type Scheduler struct {
	mu       sync.Mutex
	cadence  *Cadence
	queue    Queue
	slack    time.Duration
	horizon  time.Duration
	policy   StaleMidPolicy
	prev     videoframe.Frame
	prevAt   time.Time
	hasPrev  bool
	enqueued uint64
	dropped  uint64
}

func New(settings Settings) *Scheduler {
	return &Scheduler{
		cadence: NewCadence(settings.History),
		slack:   settings.DueSlack,
		horizon: settings.StaleHorizon,
		policy:  settings.StaleMidPolicy,
	}
}

// OnInputFrame feeds a newly captured frame. Every frame after the first
// schedules a Mid and a Real against the previously fed frame.
func (s *Scheduler) OnInputFrame(frame videoframe.Frame, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasPrev {
		s.enqueuePair(s.prev, s.prevAt, frame, at)
		videoframe.Release(s.prev)
	}
	s.prev, s.prevAt, s.hasPrev = videoframe.Retain(frame), at, true
}

// EnqueuePair schedules the Mid between prev and curr followed by the Real
// for curr, and records their interval in the cadence window.
func (s *Scheduler) EnqueuePair(prev videoframe.Frame, prevAt time.Time, curr videoframe.Frame, currAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueuePair(prev, prevAt, curr, currAt)
}

func (s *Scheduler) enqueuePair(prev videoframe.Frame, prevAt time.Time, curr videoframe.Frame, currAt time.Time) {
	interval := clampInterval(currAt.Sub(prevAt))
	s.cadence.Update(interval)

	realAt := currAt
	if currAt.Sub(prevAt) < interval {
		// clock anomaly, keep the Real strictly after its Mid
		realAt = prevAt.Add(interval)
	}

	s.queue.Push(
		&Mid{A: videoframe.Retain(prev), B: videoframe.Retain(curr), At: prevAt.Add(interval / 2)},
		&Real{Frame: videoframe.Retain(curr), At: realAt},
	)
	s.enqueued += 2
}

// Enqueue appends an already built item to the tail of the queue. The
// scheduler takes over the caller's references to the item's frames.
func (s *Scheduler) Enqueue(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Push(item)
	s.enqueued++
}

// PopDue removes and returns the item to present at now, or nil when
// nothing is due. A due Real always wins over any due Mid, otherwise the
// earliest queued due Mid is returned. The caller owns the returned item
// and must Release it.
func (s *Scheduler) PopDue(now time.Time) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popDue(now)
}

func (s *Scheduler) popDue(now time.Time) Item {
	due := s.queue.Due(now.Add(s.slack))
	if len(due) == 0 {
		return nil
	}

	for _, i := range due {
		if _, ok := s.queue.At(i).(*Real); ok {
			return s.queue.Remove(i)
		}
	}
	return s.queue.Remove(due[0])
}

// DropStaleMids discards Mids at the head of the queue that are overdue by
// more than the stale horizon once a Real is queued right behind them. It
// returns how many were discarded.
func (s *Scheduler) DropStaleMids(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropStaleMids(now)
}

func (s *Scheduler) dropStaleMids(now time.Time) int {
	if s.policy == DropLeading {
		return s.dropLeadingStaleMids(now)
	}

	if s.queue.Len() < 2 {
		return 0
	}
	mid, ok := s.queue.At(0).(*Mid)
	if !ok || !s.isStale(mid, now) {
		return 0
	}
	if _, ok := s.queue.At(1).(*Real); !ok {
		return 0
	}
	s.discard(0, now)
	return 1
}

func (s *Scheduler) dropLeadingStaleMids(now time.Time) int {
	run := 0
	for run < s.queue.Len() && s.queue.At(run).Kind() == KindMid {
		run++
	}
	if run == 0 || run == s.queue.Len() {
		return 0
	}

	dropped := 0
	for i := 0; i < run-dropped; {
		if s.isStale(s.queue.At(i).(*Mid), now) {
			s.discard(i, now)
			dropped++
			continue
		}
		i++
	}
	return dropped
}

func (s *Scheduler) isStale(mid *Mid, now time.Time) bool {
	return mid.At.Add(s.horizon).Before(now)
}

func (s *Scheduler) discard(i int, now time.Time) {
	item := s.queue.Remove(i)
	log.Info("Discarding stale mid frame, %s overdue", now.Sub(item.PTS()))
	item.Release()
	s.dropped++
}

// Tick drops stale mids and pops the due item as one atomic step so a
// Real can not become due between the two.
func (s *Scheduler) Tick(now time.Time) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropStaleMids(now)
	return s.popDue(now)
}

func (s *Scheduler) InputInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cadence.InputInterval()
}

func (s *Scheduler) OutputInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cadence.OutputInterval()
}

// Pending returns a snapshot of the queued items.
func (s *Scheduler) Pending() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Items()
}

type Stats struct {
	Enqueued    uint64
	MidsDropped uint64
	Pending     int
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Enqueued: s.enqueued, MidsDropped: s.dropped, Pending: s.queue.Len()}
}

// Close releases every pending item and the remembered previous frame.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.queue.clear() {
		item.Release()
	}
	if s.hasPrev {
		videoframe.Release(s.prev)
		s.prev, s.hasPrev = nil, false
	}
}
