package scanner

import (
	"testing"
	"time"
)

func TestThrottleSuppressesBurst(t *testing.T) {
	now := time.Unix(0, 0)
	tr := NewThrottle(800 * time.Millisecond)
	tr.now = func() time.Time { return now }

	if !tr.Allow() {
		t.Fatal("first detection must pass")
	}
	now = now.Add(200 * time.Millisecond)
	if tr.Allow() {
		t.Error("duplicate frame inside the window passed")
	}
	now = now.Add(700 * time.Millisecond)
	if !tr.Allow() {
		t.Error("detection after the window was dropped")
	}
	// the window restarts at the last accepted detection
	now = now.Add(100 * time.Millisecond)
	if tr.Allow() {
		t.Error("window did not restart after acceptance")
	}
}

func TestFeedDrainsChannel(t *testing.T) {
	ch := make(chan string, 4)
	ch <- "2100510006657"
	ch <- "" // ignored
	ch <- "2100510006657"
	ch <- "2100510006657"
	close(ch)

	var handled []string
	Feed(ch, 800*time.Millisecond, func(code string) {
		handled = append(handled, code)
	})

	// the burst arrives within one window: only the first survives
	if len(handled) != 1 || handled[0] != "2100510006657" {
		t.Errorf("handled = %v, want one detection", handled)
	}
}

func TestFeedZeroWindowDefaults(t *testing.T) {
	tr := NewThrottle(0)
	if tr.window != DefaultWindow {
		t.Errorf("window = %v, want default", tr.window)
	}
}
