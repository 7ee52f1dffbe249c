package videobackend

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type openCVBackend struct{}

func (b *openCVBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	conn := openCVConnection{}
	err := conn.connect(cancel, addr)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (b *openCVBackend) NewFrame() videoframe.Frame {
	return &openCVFrame{mat: gocv.NewMat()}
}

func (b *openCVBackend) Resize(frame videoframe.Frame, dims videoframe.Dimensions) (videoframe.Frame, error) {
	return resize(frame, dims)
}

func (b *openCVBackend) NewWriter(addr, codec string, fps float64) Writer {
	return &openCVWriter{addr: addr, codec: codec, fps: fps}
}

func (b *openCVBackend) NewPreview(title string) Preview {
	return &openCVPreview{title: title}
}

func (b *openCVBackend) Probe(max int) []int {
	var available []int
	for i := 0; i < max; i++ {
		vc, err := openVideoCapture(i)
		if err != nil {
			continue
		}
		if vc.IsOpened() {
			available = append(available, i)
		}
		vc.Close()
	}
	return available
}

func resize(frame videoframe.Frame, dims videoframe.Dimensions) (videoframe.Frame, error) {
	switch d := frame.DataRef().(type) {
	case *gocv.Mat:
		out := gocv.NewMat()
		gocv.Resize(*d, &out, image.Pt(dims.W, dims.H), 0, 0, gocv.InterpolationArea)
		return FrameFromMat(out), nil
	case *image.RGBA:
		return resizeImage(d, dims), nil
	default:
		return nil, xerror.New("unable to resize frame of unsupported backend")
	}
}

type openCVWriter struct {
	addr  string
	codec string
	fps   float64
	dims  videoframe.Dimensions
	vw    *gocv.VideoWriter
}

func (w *openCVWriter) init(dims videoframe.Dimensions) error {
	if err := ensureDirectoryPathExists(filepath.Dir(w.addr)); err != nil {
		return err
	}

	vw, err := openVideoWriter(w.addr, w.codec, w.fps, dims.W, dims.H, true)
	if err != nil {
		return xerror.Errorf("unable to open video writer for %s: %w", w.addr, err)
	}
	w.vw = vw
	w.dims = dims
	log.Info("Opened output [%s] at %dx%d %.2f FPS", w.addr, dims.W, dims.H, w.fps)
	return nil
}

var openVideoWriter = func(filename, codec string, fps float64, width, height int, isColor bool) (*gocv.VideoWriter, error) {
	return gocv.VideoWriterFile(filename, codec, fps, width, height, isColor)
}

func ensureDirectoryPathExists(path string) error {
	if path == "" || path == "." {
		return nil
	}
	err := fs.MkdirAll(path, os.ModePerm|os.ModeDir)
	if err == nil || os.IsExist(err) {
		return nil
	}
	return err
}

func (w *openCVWriter) Write(frame videoframe.Frame) error {
	if w.vw == nil {
		if err := w.init(frame.Dimensions()); err != nil {
			return err
		}
	}
	if d := frame.Dimensions(); d != w.dims {
		return xerror.Errorf("output frame is %dx%d, writer opened at %dx%d", d.W, d.H, w.dims.W, w.dims.H)
	}

	mat, release, err := matOf(frame)
	if err != nil {
		return err
	}
	defer release()
	return w.vw.Write(mat)
}

func (w *openCVWriter) Close() error {
	if w.vw == nil {
		return nil
	}
	err := w.vw.Close()
	w.vw = nil
	return err
}

const escKey = 27

var ErrPreviewClosed = xerror.New("preview window closed")

type openCVPreview struct {
	title  string
	window *gocv.Window
}

func (p *openCVPreview) Show(frame videoframe.Frame) error {
	if p.window == nil {
		p.window = gocv.NewWindow(p.title)
	}
	mat, release, err := matOf(frame)
	if err != nil {
		return err
	}
	defer release()

	p.window.IMShow(mat)
	if p.window.WaitKey(1)&0xFF == escKey {
		return ErrPreviewClosed
	}
	return nil
}

func (p *openCVPreview) Close() error {
	if p.window == nil {
		return nil
	}
	err := p.window.Close()
	p.window = nil
	return err
}

type openCVConnection struct {
	uuid   string
	mu     sync.Mutex
	isOpen bool
	vc     *gocv.VideoCapture
}

func (c *openCVConnection) connect(cancel context.Context, addr string) error {
	connAndError := make(chan openVideoStreamResult, 1)
	go openVideoStream(addr, connAndError)
	select {
	case r := <-connAndError:
		if r.err != nil {
			return r.err
		}
		c.vc = r.vc
		c.isOpen = true
		return nil
	case <-cancel.Done():
		return xerror.New("connection cancelled")
	}
}

type openVideoStreamResult struct {
	vc  *gocv.VideoCapture
	err error
}

func openVideoStream(addr string, d chan openVideoStreamResult) {
	vc, err := openVideoCapture(addr)
	result := openVideoStreamResult{vc: vc, err: err}
	d <- result
}

var openVideoCapture = func(device interface{}) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(device)
}

var readFromVideoConnection = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

func (c *openCVConnection) UUID() string {
	if len(c.uuid) == 0 {
		c.uuid = uuid.NewString()
	}
	return c.uuid
}

func (c *openCVConnection) Negotiate(s Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return xerror.New("unable to negotiate capture settings on closed connection")
	}
	if s.Width > 0 {
		c.vc.Set(gocv.VideoCaptureFrameWidth, float64(s.Width))
	}
	if s.Height > 0 {
		c.vc.Set(gocv.VideoCaptureFrameHeight, float64(s.Height))
	}
	if s.FPS > 0 {
		c.vc.Set(gocv.VideoCaptureFPS, float64(s.FPS))
	}
	c.vc.Set(gocv.VideoCaptureBufferSize, 1)
	return nil
}

func (c *openCVConnection) Read(frame videoframe.Frame) error {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV connection read")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ok = readFromVideoConnection(c.vc, mat)
	if !ok || mat.Empty() {
		return xerror.New("unable to read from video connection")
	}
	return nil
}

func (c *openCVConnection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isOpen {
		return c.vc.IsOpened()
	}
	return false
}

func (c *openCVConnection) Close() error {
	c.mu.Lock()
	c.isOpen = false
	c.mu.Unlock()
	return c.vc.Close()
}
