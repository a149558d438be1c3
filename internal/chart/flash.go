package chart

import (
	"math"
	"time"
)

// Flash is the highlight direction for a changed price.
type Flash int

const (
	FlashNone Flash = iota
	FlashUp
	FlashDown
)

func (f Flash) String() string {
	switch f {
	case FlashUp:
		return "up"
	case FlashDown:
		return "down"
	default:
		return ""
	}
}

// DefaultFlashDuration is how long a flash stays lit.
const DefaultFlashDuration = 800 * time.Millisecond

// FlashTracker compares each observed value to the previous finite one.
type FlashTracker struct {
	Duration time.Duration

	prev  float64
	seen  bool
	last  Flash
	until time.Time
}

// Observe records v at now and returns the flash it triggers. Non-finite
// values are ignored and the first observation only sets the baseline.
func (f *FlashTracker) Observe(v float64, now time.Time) Flash {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FlashNone
	}
	if !f.seen {
		f.prev, f.seen = v, true
		return FlashNone
	}
	if v == f.prev {
		return FlashNone
	}

	dir := FlashDown
	if v > f.prev {
		dir = FlashUp
	}
	f.prev = v
	d := f.Duration
	if d <= 0 {
		d = DefaultFlashDuration
	}
	f.last, f.until = dir, now.Add(d)
	return dir
}

// Current returns the flash still lit at now.
func (f *FlashTracker) Current(now time.Time) Flash {
	if now.Before(f.until) {
		return f.last
	}
	return FlashNone
}
