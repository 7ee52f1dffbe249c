package videoframe

import "sync/atomic"

// shared counts the holders of a frame, the wrapped frame is closed
// when the last holder releases it.
type shared struct {
	Frame
	refs int32
}

// Share wraps f so it can be held by several owners at once. The
// returned frame starts with a single reference held by the caller.
// Sharing an already shared frame returns it unchanged.
func Share(f Frame) Frame {
	if f == nil {
		return nil
	}
	if s, ok := f.(*shared); ok {
		return s
	}
	return &shared{Frame: f, refs: 1}
}

// Retain adds a reference to a shared frame and returns it. Frames that
// were never shared are returned as is and stay owned by whoever made them.
func Retain(f Frame) Frame {
	if s, ok := f.(*shared); ok {
		atomic.AddInt32(&s.refs, 1)
	}
	return f
}

// Release drops a reference taken by Share or Retain. Unshared frames are
// left alone.
func Release(f Frame) {
	if s, ok := f.(*shared); ok {
		s.Close()
	}
}

// IsShared reports whether f is reference counted.
func IsShared(f Frame) bool {
	_, ok := f.(*shared)
	return ok
}

// Unwrap returns the frame underneath any sharing wrapper.
func Unwrap(f Frame) Frame {
	if s, ok := f.(*shared); ok {
		return s.Frame
	}
	return f
}

func (s *shared) Close() {
	refs := atomic.AddInt32(&s.refs, -1)
	if refs == 0 {
		s.Frame.Close()
	}
}
