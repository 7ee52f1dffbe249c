package doubler

import (
	"sync"
	"time"

	"github.com/tauraamui/camdoubler/pkg/interpolate"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/pacing"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
)

type EmissionKind int

const (
	EmitReal EmissionKind = iota
	EmitMid
	EmitRepeat
)

func (k EmissionKind) String() string {
	switch k {
	case EmitReal:
		return "REAL"
	case EmitMid:
		return "MID"
	case EmitRepeat:
		return "REPEAT"
	}
	return "UNKNOWN"
}

// Emission is the frame chosen for one output tick. The receiver owns a
// reference to Frame and must release it once sent.
type Emission struct {
	Kind  EmissionKind
	Frame videoframe.Frame
	PTS   time.Time
}

type PacerSettings struct {
	Scheduler   pacing.Settings
	Interpolate interpolate.Func
	// PresentationDelay is how far behind the output clock items are
	// presented. Zero follows the measured input interval.
	PresentationDelay time.Duration
}

// Pacer turns captured frames into one frame per output tick, taking a
// due scheduled item when there is one and repeating the last output
// otherwise.
type Pacer struct {
	sched    *pacing.Scheduler
	interp   interpolate.Func
	delay    time.Duration
	counters counters

	mu     sync.Mutex
	latest videoframe.Frame
	last   videoframe.Frame
}

func NewPacer(settings PacerSettings) *Pacer {
	interp := settings.Interpolate
	if interp == nil {
		interp = interpolate.Duplicate
	}
	return &Pacer{
		sched:  pacing.New(settings.Scheduler),
		interp: interp,
		delay:  settings.PresentationDelay,
	}
}

// Observe takes ownership of a captured frame.
func (p *Pacer) Observe(frame videoframe.Frame, at time.Time) {
	shared := videoframe.Share(frame)
	p.sched.OnInputFrame(shared, at)
	p.counters.inc(&p.counters.framesIn)

	p.mu.Lock()
	previous := p.latest
	p.latest = shared
	p.mu.Unlock()
	videoframe.Release(previous)
}

func (p *Pacer) ReadFailed(error) {
	p.counters.inc(&p.counters.readFailures)
}

func (p *Pacer) PresentationDelay() time.Duration {
	if p.delay > 0 {
		return p.delay
	}
	return p.sched.InputInterval()
}

// Step resolves the emission for the output tick at now. It is false only
// before any frame has been observed.
func (p *Pacer) Step(now time.Time) (Emission, bool) {
	presentAt := now.Add(-p.PresentationDelay())

	item := p.sched.Tick(presentAt)
	if item == nil {
		return p.repeat(presentAt)
	}
	defer item.Release()

	switch it := item.(type) {
	case *pacing.Real:
		p.counters.inc(&p.counters.realOut)
		return p.emit(Emission{Kind: EmitReal, Frame: videoframe.Retain(it.Frame), PTS: it.At}), true
	case *pacing.Mid:
		p.counters.inc(&p.counters.midOut)
		return p.emit(Emission{Kind: EmitMid, Frame: p.interpolate(it), PTS: it.At}), true
	}
	return p.repeat(presentAt)
}

func (p *Pacer) interpolate(mid *pacing.Mid) videoframe.Frame {
	frame, err := p.interp(mid.A, mid.B)
	if err != nil {
		log.Warn("Unable to interpolate mid frame, duplicating previous: %v", err)
		p.counters.inc(&p.counters.interpolationFailures)
		return videoframe.Retain(mid.A)
	}
	return videoframe.Share(frame)
}

// NextFrame is Step without the emission details.
func (p *Pacer) NextFrame(now time.Time) (videoframe.Frame, bool) {
	emission, ok := p.Step(now)
	return emission.Frame, ok
}

func (p *Pacer) emit(e Emission) Emission {
	p.mu.Lock()
	previous := p.last
	p.last = videoframe.Retain(e.Frame)
	p.mu.Unlock()
	videoframe.Release(previous)
	return e
}

func (p *Pacer) repeat(presentAt time.Time) (Emission, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	source := p.last
	if source == nil {
		source = p.latest
	}
	if source == nil {
		return Emission{}, false
	}
	if p.last == nil {
		p.last = videoframe.Retain(source)
	}

	p.counters.inc(&p.counters.repeats)
	return Emission{Kind: EmitRepeat, Frame: videoframe.Retain(source), PTS: presentAt}, true
}

func (p *Pacer) Metrics() Metrics {
	m := p.counters.snapshot()
	m.MidsDropped = p.sched.Stats().MidsDropped
	m.InputInterval = p.sched.InputInterval()
	return m
}

func (p *Pacer) Pending() int {
	return p.sched.Stats().Pending
}

// Close releases every frame the pacer still holds.
func (p *Pacer) Close() {
	p.sched.Close()

	p.mu.Lock()
	latest, last := p.latest, p.last
	p.latest, p.last = nil, nil
	p.mu.Unlock()

	videoframe.Release(latest)
	videoframe.Release(last)
}
