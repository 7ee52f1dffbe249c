package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&Session{})
}

// Session holds the frame counters of one doubling run.
type Session struct {
	gorm.Model
	UUID               string
	Device             string
	Backend            string
	MidMode            string
	StartedAt          time.Time
	EndedAt            time.Time
	FramesIn           uint64
	RealOut            uint64
	MidOut             uint64
	Repeats            uint64
	MidsDropped        uint64
	ReadFailures       uint64
	AvgInputIntervalUS int64
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if len(s.UUID) == 0 {
		s.UUID = uuid.NewString()
	}
	return nil
}

func (s Session) Duration() time.Duration {
	if s.EndedAt.Before(s.StartedAt) {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

func (s Session) FramesOut() uint64 {
	return s.RealOut + s.MidOut + s.Repeats
}
