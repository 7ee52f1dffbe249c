package doubler

import (
	"sync/atomic"
	"time"
)

// Metrics is a snapshot of the frame counters of a running pacer.
type Metrics struct {
	FramesIn              uint64
	RealOut               uint64
	MidOut                uint64
	Repeats               uint64
	MidsDropped           uint64
	ReadFailures          uint64
	InterpolationFailures uint64
	InputInterval         time.Duration
}

func (m Metrics) FramesOut() uint64 {
	return m.RealOut + m.MidOut + m.Repeats
}

type counters struct {
	framesIn              uint64
	realOut               uint64
	midOut                uint64
	repeats               uint64
	readFailures          uint64
	interpolationFailures uint64
}

func (c *counters) inc(counter *uint64) {
	atomic.AddUint64(counter, 1)
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		FramesIn:              atomic.LoadUint64(&c.framesIn),
		RealOut:               atomic.LoadUint64(&c.realOut),
		MidOut:                atomic.LoadUint64(&c.midOut),
		Repeats:               atomic.LoadUint64(&c.repeats),
		ReadFailures:          atomic.LoadUint64(&c.readFailures),
		InterpolationFailures: atomic.LoadUint64(&c.interpolationFailures),
	}
}
