package pacing

import (
	"time"

	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
)

type Kind int

const (
	KindMid Kind = iota
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindMid:
		return "MID"
	case KindReal:
		return "REAL"
	default:
		return "UNKNOWN"
	}
}

// Item is a pending output, either a *Mid or a *Real.
type Item interface {
	PTS() time.Time
	Kind() Kind
	// Release drops the item's references to its frames.
	Release()
	item()
}

// Mid asks for a frame synthesized from the bracketing real frames A and B.
type Mid struct {
	A, B videoframe.Frame
	At   time.Time
}

func (m *Mid) PTS() time.Time { return m.At }

func (m *Mid) Kind() Kind { return KindMid }

func (m *Mid) Release() {
	videoframe.Release(m.A)
	videoframe.Release(m.B)
}

func (m *Mid) item() {}

// Real passes a captured frame through unchanged.
type Real struct {
	Frame videoframe.Frame
	At    time.Time
}

func (r *Real) PTS() time.Time { return r.At }

func (r *Real) Kind() Kind { return KindReal }

func (r *Real) Release() { videoframe.Release(r.Frame) }

func (r *Real) item() {}
