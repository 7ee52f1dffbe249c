package doubler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/camdoubler/pkg/camera"
	"github.com/tauraamui/camdoubler/pkg/configdef"
	data "github.com/tauraamui/camdoubler/pkg/database"
	"github.com/tauraamui/camdoubler/pkg/database/models"
	"github.com/tauraamui/camdoubler/pkg/doubler/process"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videobackend"
	"github.com/tauraamui/camdoubler/pkg/video/videosink"
	"github.com/tauraamui/xerror"
)

const previewTitle = "camdoubler"

var ErrNotConnected = xerror.New("no camera connected")

type sessionStore interface {
	Create(*models.Session) error
}

var openSessionStore = func() (sessionStore, func() error, error) {
	return data.Sessions()
}

var timeNow = func() time.Time {
	return time.Now()
}

type Server struct {
	uuid           string
	configResolver configdef.Resolver
	config         configdef.Values
	backend        videobackend.Backend

	mu        sync.Mutex
	camera    camera.Connection
	pacer     *Pacer
	sink      videosink.Sink
	processes []process.Process
	startedAt time.Time

	doneOnce     sync.Once
	done         chan interface{}
	err          error
	shutdownOnce sync.Once
	shutdownDone chan interface{}
}

// NewServer resolves the config up front. A nil backend is picked from
// the resolved config.
func NewServer(cr configdef.Resolver, backend videobackend.Backend) (*Server, error) {
	config, err := cr.Resolve()
	if err != nil {
		return nil, err
	}
	if backend == nil {
		backend = videobackend.Resolve(config.Backend)
	}
	return &Server{
		uuid:           uuid.NewString(),
		configResolver: cr,
		config:         config,
		backend:        backend,
		done:           make(chan interface{}),
		shutdownDone:   make(chan interface{}),
	}, nil
}

func (s *Server) UUID() string {
	return s.uuid
}

func (s *Server) Config() configdef.Values {
	return s.config
}

func (s *Server) Connect() error {
	return s.connect(context.Background())
}

func (s *Server) ConnectWithCancel(cancel context.Context) error {
	return s.connect(cancel)
}

func (s *Server) connect(cancel context.Context) error {
	device, err := camera.SelectDevice(s.backend, s.config.Device)
	if err != nil {
		return err
	}

	log.Info("Connecting to camera: [%s]...", device)
	conn, err := camera.ConnectWithCancel(cancel, device, device, camera.Settings{
		Width:  s.config.Width,
		Height: s.config.Height,
		FPS:    s.config.PreferFPS,
	}, s.backend)
	if err != nil {
		return err
	}
	log.Info("Connected successfully to camera: [%s]", conn.Title())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = conn
	return nil
}

// Done is closed once the output stops by itself, Err then holds why.
func (s *Server) Done() <-chan interface{} {
	return s.done
}

func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Server) stopWith(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Server) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pacer == nil {
		return Metrics{}
	}
	return s.pacer.Metrics()
}

func (s *Server) shutdown() {
	s.shutdownProcesses()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			log.Error("Unable to close output sink: %v", err)
		}
	}

	if s.camera != nil {
		log.Warn("Closing camera connection: [%s]...", s.camera.Title())
		if err := s.camera.Close(); err != nil {
			log.Error("Unable to close camera connection: %v", err)
		}
	}

	if s.pacer != nil {
		metrics := s.pacer.Metrics()
		logSummary(metrics)
		if s.config.Stats {
			s.persistSession(metrics)
		}
		s.pacer.Close()
	}

	close(s.shutdownDone)
}

func (s *Server) Shutdown() chan interface{} {
	s.shutdownOnce.Do(s.shutdown)
	return s.shutdownDone
}

func (s *Server) persistSession(metrics Metrics) {
	store, closeStore, err := openSessionStore()
	if err != nil {
		log.Error("Unable to open session statistics store: %v", err)
		return
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Unable to close session statistics store: %v", err)
		}
	}()

	session := models.Session{
		UUID:               s.uuid,
		Backend:            s.config.Backend,
		MidMode:            s.config.Mid,
		StartedAt:          s.startedAt,
		EndedAt:            timeNow(),
		FramesIn:           metrics.FramesIn,
		RealOut:            metrics.RealOut,
		MidOut:             metrics.MidOut,
		Repeats:            metrics.Repeats,
		MidsDropped:        metrics.MidsDropped,
		ReadFailures:       metrics.ReadFailures,
		AvgInputIntervalUS: metrics.InputInterval.Microseconds(),
	}
	if s.camera != nil {
		session.Device = s.camera.Title()
	}
	if err := store.Create(&session); err != nil {
		log.Error("Unable to persist session statistics: %v", err)
		return
	}
	log.Info("Persisted session statistics: [%s]", session.UUID)
}

func logSummary(m Metrics) {
	log.Info(
		"Doubled %d input frames into %d output frames (real: %d, mid: %d, repeat: %d, mids dropped: %d, read failures: %d)",
		m.FramesIn, m.FramesOut(), m.RealOut, m.MidOut, m.Repeats, m.MidsDropped, m.ReadFailures,
	)
}
