package process

import (
	"context"
	"errors"
	"time"

	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"github.com/tauraamui/camdoubler/pkg/video/videosink"
)

// FrameSource yields the frame to present for the output tick at now.
// The caller owns the returned frame and must release it.
type FrameSource interface {
	NextFrame(now time.Time) (videoframe.Frame, bool)
}

var timeNow = func() time.Time {
	return time.Now()
}

// StreamToSink presents one frame per sink tick. A failed send ends the
// loop and is handed to onFatal, the cancel context ending it is not.
func StreamToSink(source FrameSource, sink videosink.Sink, onFatal func(error)) func(context.Context) []chan interface{} {
	return func(cancel context.Context) []chan interface{} {
		log.Info("Streaming doubled video to sink at %d FPS", sink.FPS())
		stopping := make(chan interface{})
		go func(cancel context.Context, stopping chan interface{}) {
			defer close(stopping)
			for {
				if err := sink.WaitForNextTick(cancel); err != nil {
					return
				}

				if err := present(source, sink); err != nil {
					if errors.Is(err, videosink.ErrPreviewClosed) {
						log.Info("Preview window closed")
					} else {
						log.Error("Unable to send frame to sink: %v", err)
					}
					if onFatal != nil {
						onFatal(err)
					}
					return
				}
			}
		}(cancel, stopping)
		return []chan interface{}{stopping}
	}
}

func present(source FrameSource, sink videosink.Sink) error {
	frame, ok := source.NextFrame(timeNow())
	if !ok {
		return nil
	}
	defer videoframe.Release(frame)
	return sink.Send(frame)
}
