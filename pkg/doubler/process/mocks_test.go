package process_test

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tauraamui/camdoubler/pkg/camera"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
)

func overloadErrorLog(overload func(string, ...interface{})) func() {
	logErrorRef := log.Error
	log.Error = overload
	return func() { log.Error = logErrorRef }
}

type mockFrame struct {
	id      int
	mu      sync.Mutex
	closed  int
	onClose func()
}

func (m *mockFrame) DataRef() interface{}              { return m.id }
func (m *mockFrame) Dimensions() videoframe.Dimensions { return videoframe.Dimensions{W: 4, H: 4} }
func (m *mockFrame) Format() videoframe.PixelFormat    { return videoframe.BGR8 }

func (m *mockFrame) Close() {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
	if m.onClose != nil {
		m.onClose()
	}
}

func (m *mockFrame) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type mockCameraConn struct {
	mu        sync.Mutex
	title     string
	frames    []*mockFrame
	readIndex int
	readErr   error
	isOpen    bool
	base      time.Time
}

func (m *mockCameraConn) UUID() string              { return "mock-camera" }
func (m *mockCameraConn) Title() string             { return m.title }
func (m *mockCameraConn) Settings() camera.Settings { return camera.Settings{} }
func (m *mockCameraConn) IsClosing() bool           { return false }
func (m *mockCameraConn) Close() error              { return nil }

func (m *mockCameraConn) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isOpen
}

func (m *mockCameraConn) Read() (videoframe.Frame, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, time.Time{}, m.readErr
	}
	if m.readIndex >= len(m.frames) {
		return nil, time.Time{}, errors.New("run out of frames to read")
	}
	frame := m.frames[m.readIndex]
	m.readIndex++
	return frame, m.base.Add(time.Duration(m.readIndex) * 33 * time.Millisecond), nil
}

type observed struct {
	frame videoframe.Frame
	at    time.Time
}

type mockObserver struct {
	mu       sync.Mutex
	observed []observed
	failures []string
	onEvent  func()
}

func (m *mockObserver) Observe(frame videoframe.Frame, at time.Time) {
	m.mu.Lock()
	m.observed = append(m.observed, observed{frame, at})
	m.mu.Unlock()
	if m.onEvent != nil {
		m.onEvent()
	}
}

func (m *mockObserver) ReadFailed(err error) {
	m.mu.Lock()
	m.failures = append(m.failures, fmt.Sprint(err))
	m.mu.Unlock()
	if m.onEvent != nil {
		m.onEvent()
	}
}

func (m *mockObserver) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.observed), len(m.failures)
}
