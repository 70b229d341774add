// Package scanner consumes the camera's stream of decoded codes. A
// single physical scan yields several frame-decode events in quick
// succession, so detections inside the throttle window are dropped
// before they reach the resolve pipeline.
package scanner

import "time"

// DefaultWindow matches the cadence of handheld scanning: long enough
// to swallow repeat frames, short enough not to miss the next article.
const DefaultWindow = 800 * time.Millisecond

// Handler processes one accepted detection.
type Handler func(code string)

// Throttle is a time-window gate for scan detections. Not safe for
// concurrent use; the feed is a single consumer.
type Throttle struct {
	window time.Duration
	last   time.Time
	now    func() time.Time
}

func NewThrottle(window time.Duration) *Throttle {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Throttle{window: window, now: time.Now}
}

// Allow reports whether a detection arriving now should be handled, and
// if so marks the window as consumed.
func (t *Throttle) Allow() bool {
	now := t.now()
	if now.Sub(t.last) < t.window {
		return false
	}
	t.last = now
	return true
}

// Feed drains detections from ch, applying the throttle, until ch is
// closed. Empty detections are ignored.
func Feed(ch <-chan string, window time.Duration, h Handler) {
	t := NewThrottle(window)
	for code := range ch {
		if code == "" {
			continue
		}
		if !t.Allow() {
			continue
		}
		h(code)
	}
}
