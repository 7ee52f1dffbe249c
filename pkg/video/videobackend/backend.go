package videobackend

import (
	"context"

	"github.com/spf13/afero"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
)

var fs = afero.NewOsFs()

type Settings struct {
	Width, Height int
	FPS           int
}

type Connection interface {
	UUID() string
	// Negotiate asks the device for the given capture geometry and rate.
	// Devices are free to ignore it, callers must not rely on the result.
	Negotiate(Settings) error
	Read(videoframe.Frame) error
	IsOpen() bool
	Close() error
}

// Writer streams frames to a file or device address, opened lazily
// with the geometry of the first frame written.
type Writer interface {
	Write(videoframe.Frame) error
	Close() error
}

type Preview interface {
	Show(videoframe.Frame) error
	Close() error
}

type Backend interface {
	Connect(context.Context, string) (Connection, error)
	NewFrame() videoframe.Frame
	Resize(videoframe.Frame, videoframe.Dimensions) (videoframe.Frame, error)
	NewWriter(addr, codec string, fps float64) Writer
	NewPreview(title string) Preview
	// Probe returns the device indexes below max that can be opened.
	Probe(max int) []int
}

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func Mock() Backend {
	return &mockVideoBackend{}
}

func Resolve(t string) Backend {
	switch t {
	case "mock":
		return Mock()
	default:
		return Default()
	}
}
