package videosink

import (
	"context"

	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videobackend"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"github.com/tauraamui/camdoubler/pkg/video/videotick"
	"github.com/tauraamui/xerror"
)

const MinFPS = 30

var ErrPreviewClosed = videobackend.ErrPreviewClosed

// Sink receives exactly one frame per output tick. WaitForNextTick is the
// only place the output loop is allowed to sleep.
type Sink interface {
	Send(videoframe.Frame) error
	WaitForNextTick(context.Context) error
	FPS() int
	Close() error
}

type Options struct {
	Address      string
	Codec        string
	FPS          int
	Preview      bool
	PreviewTitle string
}

// AdvertisedFPS is the output rate for a preferred input rate, double
// the input but never below MinFPS.
func AdvertisedFPS(preferFPS int) int {
	if fps := 2 * preferFPS; fps > MinFPS {
		return fps
	}
	return MinFPS
}

func New(backend videobackend.Backend, opts Options) Sink {
	if opts.FPS <= 0 {
		opts.FPS = MinFPS
	}
	s := sink{fps: opts.FPS, ticker: videotick.New(opts.FPS)}
	if len(opts.Address) > 0 {
		s.writer = backend.NewWriter(opts.Address, opts.Codec, float64(opts.FPS))
	}
	if opts.Preview {
		s.preview = backend.NewPreview(opts.PreviewTitle)
	}
	if s.writer == nil && s.preview == nil {
		log.Warn("No output address or preview configured, frames will be discarded")
	}
	return &s
}

type sink struct {
	fps     int
	ticker  *videotick.Ticker
	writer  videobackend.Writer
	preview videobackend.Preview
}

func (s *sink) Send(frame videoframe.Frame) error {
	if frame == nil {
		return xerror.New("cannot send nil frame to sink")
	}
	if s.writer != nil {
		if err := s.writer.Write(frame); err != nil {
			return xerror.Errorf("unable to write frame to output: %w", err)
		}
	}
	if s.preview != nil {
		if err := s.preview.Show(frame); err != nil {
			return err
		}
	}
	return nil
}

func (s *sink) WaitForNextTick(ctx context.Context) error {
	return s.ticker.Wait(ctx)
}

func (s *sink) FPS() int { return s.fps }

func (s *sink) Close() error {
	var errs []error
	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.preview != nil {
		if err := s.preview.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return xerror.Errorf("unable to close sink cleanly: %v", errs)
	}
	return nil
}
