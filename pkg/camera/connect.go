package camera

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videobackend"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type Connection interface {
	UUID() string
	Title() string
	Settings() Settings
	// Read blocks until the next frame is captured and returns it with
	// the time it arrived. The caller owns the returned frame.
	Read() (videoframe.Frame, time.Time, error)
	IsOpen() bool
	IsClosing() bool
	Close() error
}

var timeNow = func() time.Time {
	return time.Now()
}

type connection struct {
	uuid      string
	backend   videobackend.Backend
	title     string
	sett      Settings
	mu        sync.Mutex
	isClosing bool
	vc        videobackend.Connection
}

func (c *connection) UUID() string {
	return c.uuid
}

func (c *connection) Title() string {
	return c.title
}

func (c *connection) Settings() Settings {
	return c.sett
}

func (c *connection) Read() (videoframe.Frame, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := c.backend.NewFrame()
	if err := c.vc.Read(frame); err != nil {
		frame.Close()
		return nil, time.Time{}, xerror.Errorf("unable to read frame from connection: %w", err)
	}
	at := timeNow()

	want := videoframe.Dimensions{W: c.sett.Width, H: c.sett.Height}
	if want.W <= 0 || want.H <= 0 || frame.Dimensions() == want {
		return frame, at, nil
	}

	resized, err := c.backend.Resize(frame, want)
	frame.Close()
	if err != nil {
		return nil, time.Time{}, xerror.Errorf("unable to resize frame to %dx%d: %w", want.W, want.H, err)
	}
	return resized, at, nil
}

func (c *connection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vc.IsOpen()
}

func (c *connection) IsClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosing
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isClosing = true
	return c.vc.Close()
}

func (c *connection) warmup() {
	for i := 0; i < c.sett.warmupReads(); i++ {
		frame := c.backend.NewFrame()
		if err := c.vc.Read(frame); err != nil {
			log.Debug("Warm up read %d from camera [%s] failed: %v", i+1, c.title, err)
		}
		frame.Close()
	}
}

func connect(ctx context.Context, title, addr string, settings Settings, backend videobackend.Backend) (Connection, error) {
	vc, err := backend.Connect(ctx, addr)
	if err != nil {
		return nil, xerror.Errorf("unable to connect to camera [%s]: %w", title, err)
	}

	err = vc.Negotiate(videobackend.Settings{Width: settings.Width, Height: settings.Height, FPS: settings.FPS})
	if err != nil {
		log.Warn("Unable to negotiate capture settings for camera [%s]: %v", title, err)
	}

	conn := &connection{
		uuid:    uuid.NewString(),
		backend: backend,
		title:   title,
		vc:      vc,
		sett:    settings,
	}
	conn.warmup()
	return conn, nil
}

func Connect(title, addr string, settings Settings, backend videobackend.Backend) (Connection, error) {
	return connect(context.Background(), title, addr, settings, backend)
}

func ConnectWithCancel(cancel context.Context, title, addr string, settings Settings, backend videobackend.Backend) (Connection, error) {
	return connect(cancel, title, addr, settings, backend)
}
