package videobackend

import (
	"image"

	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type openCVFrame struct {
	isClosed bool
	mat      gocv.Mat
}

// FrameFromMat takes ownership of mat, it is closed along with the frame.
func FrameFromMat(mat gocv.Mat) videoframe.Frame {
	return &openCVFrame{mat: mat}
}

func (frame *openCVFrame) DataRef() interface{} {
	return &frame.mat
}

func (frame *openCVFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: frame.mat.Cols(), H: frame.mat.Rows()}
}

func (frame *openCVFrame) Format() videoframe.PixelFormat {
	switch frame.mat.Channels() {
	case 1:
		return videoframe.GRAY8
	case 4:
		return videoframe.BGRA8
	default:
		return videoframe.BGR8
	}
}

func (frame *openCVFrame) Close() {
	if !frame.isClosed {
		frame.mat.Close()
		frame.isClosed = true
	}
}

// matOf returns a Mat view of any supported frame. Release must be
// called once the Mat is no longer needed.
func matOf(frame videoframe.Frame) (mat gocv.Mat, release func(), err error) {
	switch d := frame.DataRef().(type) {
	case *gocv.Mat:
		return *d, func() {}, nil
	case image.Image:
		m, err := gocv.ImageToMatRGB(d)
		if err != nil {
			return gocv.Mat{}, nil, xerror.Errorf("unable to convert Go image into OpenCV mat: %w", err)
		}
		return m, func() { m.Close() }, nil
	default:
		return gocv.Mat{}, nil, xerror.New("unsupported frame data for OpenCV")
	}
}
