package videobackend

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"github.com/tauraamui/camdoubler/pkg/video/videotick"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	mockFrameWidth  = 640
	mockFrameHeight = 360
	mockFPS         = 30
)

// mockVideoBackend produces a generated test card instead of real
// footage. Frames are plain Go images so no device or OpenCV build is
// needed to read them.
type mockVideoBackend struct{}

func (b *mockVideoBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	return &mockVideoConnection{label: addr, open: true, ticker: videotick.New(mockFPS)}, nil
}

func (b *mockVideoBackend) NewFrame() videoframe.Frame {
	return videoframe.FromImage(image.NewRGBA(image.Rect(0, 0, mockFrameWidth, mockFrameHeight)))
}

func (b *mockVideoBackend) Resize(frame videoframe.Frame, dims videoframe.Dimensions) (videoframe.Frame, error) {
	return resize(frame, dims)
}

func (b *mockVideoBackend) NewWriter(addr, codec string, fps float64) Writer {
	return &openCVWriter{addr: addr, codec: codec, fps: fps}
}

func (b *mockVideoBackend) NewPreview(title string) Preview {
	return &mockPreview{}
}

func (b *mockVideoBackend) Probe(max int) []int {
	if max < 1 {
		return nil
	}
	return []int{0}
}

type mockPreview struct {
	shown int
}

func (p *mockPreview) Show(frame videoframe.Frame) error {
	p.shown++
	log.Debug("Mock preview showing frame %d", p.shown)
	return nil
}

func (p *mockPreview) Close() error { return nil }

type mockVideoConnection struct {
	uuid       string
	label      string
	mu         sync.Mutex
	open       bool
	frameCount int
	base       image.Image
	ticker     *videotick.Ticker
}

func (mvc *mockVideoConnection) UUID() string {
	if len(mvc.uuid) == 0 {
		mvc.uuid = uuid.NewString()
	}
	return mvc.uuid
}

// Negotiate only honours the frame rate, the test card keeps its size.
func (mvc *mockVideoConnection) Negotiate(s Settings) error {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	if s.FPS > 0 {
		mvc.ticker = videotick.New(s.FPS)
	}
	log.Debug("Mock capture running at %d FPS, ignoring requested %dx%d", s.FPS, s.Width, s.Height)
	return nil
}

func (mvc *mockVideoConnection) Read(frame videoframe.Frame) error {
	canvas, ok := frame.DataRef().(*image.RGBA)
	if !ok {
		return xerror.New("must pass image frame to MockVideo connection read")
	}

	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	if !mvc.open {
		return xerror.New("unable to read from closed mock connection")
	}
	if err := mvc.ticker.Wait(context.Background()); err != nil {
		return err
	}
	if mvc.base == nil {
		mvc.base = renderBaseFrameCanvas(canvas.Bounds().Dx(), canvas.Bounds().Dy())
	}
	mvc.frameCount++

	draw.Copy(canvas, image.Point{}, mvc.base, mvc.base.Bounds(), draw.Src, nil)
	lines := []string{
		"CAMDOUBLER_MOCK",
		mvc.label,
		fmt.Sprintf("#%06d", mvc.frameCount),
		timeNow().Format("15:04:05.000"),
	}
	for i, line := range lines {
		if err := drawText(canvas, 10, 70+i*90, line); err != nil {
			return xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", err)
		}
	}
	return nil
}

var timeNow = func() time.Time {
	return time.Now()
}

func (mvc *mockVideoConnection) IsOpen() bool {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	return mvc.open
}

func (mvc *mockVideoConnection) Close() error {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	mvc.open = false
	mvc.base = nil
	return nil
}

func resizeImage(src *image.RGBA, dims videoframe.Dimensions) videoframe.Frame {
	dst := image.NewRGBA(image.Rect(0, 0, dims.W, dims.H))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return videoframe.FromImage(dst)
}

func renderBaseFrameCanvas(w, h int) image.Image {
	var hw, hh float64 = float64(w / 2), float64(h / 2)
	r := float64(h) / 2
	θ := 2 * math.Pi / 3
	cr := &circle{hw - r*math.Sin(0), hh - r*math.Cos(0), r * 1.5}
	cg := &circle{hw - r*math.Sin(θ), hh - r*math.Cos(θ), r * 1.5}
	cb := &circle{hw - r*math.Sin(-θ), hh - r*math.Cos(-θ), r * 1.5}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.RGBA{
				cr.Brightness(float64(x), float64(y)),
				cg.Brightness(float64(x), float64(y)),
				cb.Brightness(float64(x), float64(y)),
				255,
			}
			img.Set(x, y, c)
		}
	}
	return img
}

var parsedFont = func() func() (*truetype.Font, error) {
	var once sync.Once
	var f *truetype.Font
	var err error
	return func() (*truetype.Font, error) {
		once.Do(func() { f, err = freetype.ParseFont(goregular.TTF) })
		return f, err
	}
}()

func drawText(canvas *image.RGBA, x, y int, text string) error {
	fontFace, err := parsedFont()
	if err != nil {
		return err
	}
	fontDrawer := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(fontFace, &truetype.Options{
			Size:    48,
			Hinting: font.HintingFull,
		}),
	}
	fontDrawer.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(y),
	}
	fontDrawer.DrawString(text)
	return nil
}

type circle struct {
	X, Y, R float64
}

func (c *circle) Brightness(x, y float64) uint8 {
	var dx, dy float64 = c.X - x, c.Y - y
	d := math.Sqrt(dx*dx+dy*dy) / c.R
	if d > 1 {
		return 0
	}
	return 255
}
