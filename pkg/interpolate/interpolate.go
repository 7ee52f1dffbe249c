package interpolate

import (
	"image"
	"image/color"

	"github.com/tauraamui/camdoubler/pkg/video/videobackend"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

var ErrGeometryMismatch = xerror.New("frame geometry/format mismatch")

// Func synthesizes the frame presented between a and b. The returned
// frame belongs to the caller.
type Func func(a, b videoframe.Frame) (videoframe.Frame, error)

const (
	DuplicateName = "duplicate"
	BlendName     = "blend"
)

// Resolve maps a configured mid frame mode onto its function.
func Resolve(name string) (Func, error) {
	switch name {
	case "", DuplicateName:
		return Duplicate, nil
	case BlendName:
		return Blend, nil
	default:
		return nil, xerror.Errorf("unknown mid frame mode: %s", name)
	}
}

// Duplicate presents the earlier frame again, costing nothing.
func Duplicate(a, b videoframe.Frame) (videoframe.Frame, error) {
	return videoframe.Retain(a), nil
}

// Blend averages both frames 50/50. It is a plain cross fade, not
// motion compensated.
func Blend(a, b videoframe.Frame) (videoframe.Frame, error) {
	if !videoframe.SameGeometry(a, b) {
		return nil, xerror.Errorf(
			"%w: %dx%d %s vs %dx%d %s", ErrGeometryMismatch,
			a.Dimensions().W, a.Dimensions().H, a.Format(),
			b.Dimensions().W, b.Dimensions().H, b.Format(),
		)
	}

	switch ad := a.DataRef().(type) {
	case *gocv.Mat:
		bd, ok := b.DataRef().(*gocv.Mat)
		if !ok {
			return nil, xerror.Errorf("%w: mixed frame backends", ErrGeometryMismatch)
		}
		return blendMats(ad, bd)
	case *image.RGBA:
		bd, ok := b.DataRef().(*image.RGBA)
		if !ok {
			return nil, xerror.Errorf("%w: mixed frame backends", ErrGeometryMismatch)
		}
		return blendImages(ad, bd), nil
	default:
		return nil, xerror.New("unable to blend frames of unsupported backend")
	}
}

func blendMats(a, b *gocv.Mat) (videoframe.Frame, error) {
	if a.Type() != b.Type() {
		return nil, xerror.Errorf("%w: mat types %d vs %d", ErrGeometryMismatch, a.Type(), b.Type())
	}
	out := gocv.NewMat()
	gocv.AddWeighted(*a, 0.5, *b, 0.5, 0.0, &out)
	return videobackend.FrameFromMat(out), nil
}

func blendImages(a, b *image.RGBA) videoframe.Frame {
	out := image.NewRGBA(a.Bounds())
	draw.Copy(out, image.Point{}, a, a.Bounds(), draw.Src, nil)
	half := image.NewUniform(color.Alpha{A: 0x80})
	draw.DrawMask(out, out.Bounds(), b, b.Bounds().Min, half, image.Point{}, draw.Over)
	return videoframe.FromImage(out)
}
