package process

import (
	"context"
	"time"

	"github.com/tauraamui/camdoubler/pkg/camera"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
)

const readRetryDelay = 10 * time.Millisecond

// FrameObserver receives every captured frame together with its arrival
// time and takes ownership of it.
type FrameObserver interface {
	Observe(videoframe.Frame, time.Time)
	ReadFailed(error)
}

func CaptureFrames(cam camera.Connection, observer FrameObserver) func(context.Context) []chan interface{} {
	return func(cancel context.Context) []chan interface{} {
		log.Info("Capturing video from camera [%s]", cam.Title())
		stopping := make(chan interface{})
		go func(cancel context.Context, stopping chan interface{}) {
			defer close(stopping)
			for {
				select {
				case <-cancel.Done():
					return
				default:
					if !capture(cam, observer) {
						sleep(cancel, readRetryDelay)
					}
				}
			}
		}(cancel, stopping)
		return []chan interface{}{stopping}
	}
}

func capture(cam camera.Connection, observer FrameObserver) bool {
	if !cam.IsOpen() {
		log.Debug("Camera [%s] is not open, waiting...", cam.Title())
		return false
	}

	frame, at, err := cam.Read()
	if err != nil {
		log.Error("Unable to retrieve frame: %v", err)
		observer.ReadFailed(err)
		return false
	}
	observer.Observe(frame, at)
	return true
}

func sleep(cancel context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-cancel.Done():
	case <-t.C:
	}
}
