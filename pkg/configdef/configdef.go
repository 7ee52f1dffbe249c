package configdef

import (
	"time"

	"github.com/tauraamui/xerror"
	"gopkg.in/dealancer/validate.v2"
)

const (
	BackendOpenCV = "opencv"
	BackendMock   = "mock"

	StaleMidPolicyHead    = "head"
	StaleMidPolicyLeading = "leading"
)

type Output struct {
	Address string `json:"address"`
	Codec   string `json:"codec" validate:"empty=false"`
}

type Scheduler struct {
	History             int    `json:"history" validate:"gte=1 & lte=600"`
	DueSlackMS          int    `json:"due_slack_ms" validate:"gte=0 & lte=1000"`
	StaleHorizonMS      int    `json:"stale_horizon_ms" validate:"gte=0 & lte=1000"`
	StaleMidPolicy      string `json:"stale_mid_policy" validate:"one_of=head,leading"`
	PresentationDelayMS int    `json:"presentation_delay_ms" validate:"gte=0 & lte=1000"`
}

func (s Scheduler) DueSlack() time.Duration {
	return time.Duration(s.DueSlackMS) * time.Millisecond
}

func (s Scheduler) StaleHorizon() time.Duration {
	return time.Duration(s.StaleHorizonMS) * time.Millisecond
}

// PresentationDelay is zero when the delay should follow the measured
// input interval.
func (s Scheduler) PresentationDelay() time.Duration {
	return time.Duration(s.PresentationDelayMS) * time.Millisecond
}

type Values struct {
	Backend   string    `json:"backend" validate:"one_of=opencv,mock"`
	Device    string    `json:"device"`
	Width     int       `json:"width" validate:"gte=1 & lte=7680"`
	Height    int       `json:"height" validate:"gte=1 & lte=4320"`
	PreferFPS int       `json:"prefer_fps" validate:"gte=1 & lte=240"`
	Mid       string    `json:"mid" validate:"one_of=duplicate,blend"`
	Preview   bool      `json:"preview"`
	Output    Output    `json:"output"`
	Scheduler Scheduler `json:"scheduler"`
	Stats     bool      `json:"stats"`
}

func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if v.PreferFPS > 0 && v.Scheduler.DueSlack() >= time.Second/time.Duration(v.PreferFPS) {
		return xerror.Errorf(validationErrorHeader, xerror.New("due slack must be shorter than one input frame interval"))
	}
	return nil
}
