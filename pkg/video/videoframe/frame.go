package videoframe

import "image"

type Dimensions struct {
	W, H int
}

type PixelFormat string

const (
	BGR8  PixelFormat = "BGR8"
	BGRA8 PixelFormat = "BGRA8"
	GRAY8 PixelFormat = "GRAY8"
	RGBA8 PixelFormat = "RGBA8"
)

// Frame is an immutable captured or synthesized image. DataRef exposes
// the backend specific buffer, a *gocv.Mat for OpenCV frames or an
// *image.RGBA for frames built with FromImage.
type Frame interface {
	DataRef() interface{}
	Dimensions() Dimensions
	Format() PixelFormat
	Close()
}

// SameGeometry reports whether two frames share dimensions and pixel format.
func SameGeometry(a, b Frame) bool {
	return a.Dimensions() == b.Dimensions() && a.Format() == b.Format()
}

type imageFrame struct {
	img *image.RGBA
}

func FromImage(img *image.RGBA) Frame {
	return &imageFrame{img: img}
}

func (f *imageFrame) DataRef() interface{} { return f.img }

func (f *imageFrame) Dimensions() Dimensions {
	b := f.img.Bounds()
	return Dimensions{W: b.Dx(), H: b.Dy()}
}

func (f *imageFrame) Format() PixelFormat { return RGBA8 }

func (f *imageFrame) Close() {}
