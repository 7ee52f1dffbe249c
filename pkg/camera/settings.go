package camera

const DefaultWarmupReads = 5

type Settings struct {
	Width, Height int
	FPS           int
	// WarmupReads is how many frames are read and thrown away after
	// connecting. Zero means DefaultWarmupReads, negative disables it.
	WarmupReads int
}

func (s Settings) warmupReads() int {
	if s.WarmupReads == 0 {
		return DefaultWarmupReads
	}
	if s.WarmupReads < 0 {
		return 0
	}
	return s.WarmupReads
}
