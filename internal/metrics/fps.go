package metrics

import "time"

// FrameRate counts frames over a fixed window and publishes frames per
// second each time the window closes.
type FrameRate struct {
	window time.Duration
	start  time.Time
	frames int
	fps    float64
}

func NewFrameRate(window time.Duration) *FrameRate {
	if window <= 0 {
		window = time.Second
	}
	return &FrameRate{window: window}
}

// Frame records one presented frame at now. It reports true when the window
// rolled over and Value changed.
func (f *FrameRate) Frame(now time.Time) bool {
	if f.start.IsZero() {
		f.start = now
	}
	f.frames++

	elapsed := now.Sub(f.start)
	if elapsed < f.window {
		return false
	}
	f.fps = float64(f.frames) / elapsed.Seconds()
	f.frames = 0
	f.start = now
	return true
}

func (f *FrameRate) Value() float64 { return f.fps }

func (f *FrameRate) Reset() {
	f.start = time.Time{}
	f.frames = 0
	f.fps = 0
}
