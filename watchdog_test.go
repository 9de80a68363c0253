package brainstorm

import (
	"sync"
	"testing"
	"time"
)

func TestWatchdogScanExpiresOverdue(t *testing.T) {
	m := NewPerformanceMonitor(0)
	m.startQuestionAt("slow", "q", time.Now().Add(-time.Hour))
	m.startQuestionAt("fast", "q", time.Now())

	var mu sync.Mutex
	var notified []string
	w := NewResponseWatchdog(m, 5*time.Minute, time.Minute, func(userID string) {
		mu.Lock()
		notified = append(notified, userID)
		mu.Unlock()
	})

	if n := w.Scan(); n != 1 {
		t.Fatalf("Scan = %d, want 1", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(notified) != 1 || notified[0] != "slow" {
		t.Errorf("notified = %v, want [slow]", notified)
	}
	if m.UserStats("slow").TimeoutCount != 1 {
		t.Error("expiry must count as a timeout")
	}
	if !m.HasOpenQuestion("fast") {
		t.Error("fresh question must survive the scan")
	}
}

func TestWatchdogNilCallback(t *testing.T) {
	m := NewPerformanceMonitor(0)
	m.startQuestionAt("u1", "q", time.Now().Add(-time.Hour))

	w := NewResponseWatchdog(m, 5*time.Minute, time.Minute, nil)
	if n := w.Scan(); n != 1 {
		t.Fatalf("Scan = %d, want 1", n)
	}
}

func TestWatchdogStartStop(t *testing.T) {
	m := NewPerformanceMonitor(0)
	w := NewResponseWatchdog(m, time.Minute, 10*time.Millisecond, nil)

	w.Start()
	if !w.Running() {
		t.Fatal("watchdog should be running after Start")
	}
	w.Start() // no-op

	w.Stop()
	if w.Running() {
		t.Fatal("watchdog should be stopped after Stop")
	}
	w.Stop() // no-op

	// Restartable.
	w.Start()
	if !w.Running() {
		t.Fatal("watchdog should restart")
	}
	w.Stop()
}

func TestWatchdogDefaults(t *testing.T) {
	w := NewResponseWatchdog(NewPerformanceMonitor(0), 0, 0, nil)
	if w.timeout != DefaultQuestionTimeout {
		t.Errorf("timeout = %s, want %s", w.timeout, DefaultQuestionTimeout)
	}
	if w.interval != DefaultWatchdogInterval {
		t.Errorf("interval = %s, want %s", w.interval, DefaultWatchdogInterval)
	}
}
