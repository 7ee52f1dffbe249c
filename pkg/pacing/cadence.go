package pacing

import "time"

const (
	DefaultHistory       = 30
	DefaultInputInterval = time.Second / 30

	// MinInterval replaces zero or negative intervals caused by
	// duplicate or out of order arrival timestamps.
	MinInterval = time.Microsecond
)

// Cadence keeps a rolling window of input frame intervals.
type Cadence struct {
	samples []time.Duration
	next    int
	sum     time.Duration
	avg     time.Duration
}

func NewCadence(history int) *Cadence {
	if history < 1 {
		history = DefaultHistory
	}
	return &Cadence{
		samples: make([]time.Duration, 0, history),
		avg:     DefaultInputInterval,
	}
}

// Update records the interval between the two most recent input frames,
// evicting the oldest sample once the window is full.
func (c *Cadence) Update(interval time.Duration) {
	interval = clampInterval(interval)
	if len(c.samples) < cap(c.samples) {
		c.samples = append(c.samples, interval)
	} else {
		c.sum -= c.samples[c.next]
		c.samples[c.next] = interval
		c.next = (c.next + 1) % len(c.samples)
	}
	c.sum += interval
	c.avg = c.sum / time.Duration(len(c.samples))
}

func (c *Cadence) InputInterval() time.Duration { return c.avg }

func (c *Cadence) OutputInterval() time.Duration { return c.avg / 2 }

// Samples returns the retained intervals, oldest first.
func (c *Cadence) Samples() []time.Duration {
	out := make([]time.Duration, 0, len(c.samples))
	if len(c.samples) < cap(c.samples) {
		return append(out, c.samples...)
	}
	out = append(out, c.samples[c.next:]...)
	return append(out, c.samples[:c.next]...)
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}
