package brainstorm

import (
	"log"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Response Watchdog — detects unanswered questions
// ──────────────────────────────────────────────

const (
	// DefaultQuestionTimeout is how long a question may stay unanswered
	// before it counts as a timeout.
	DefaultQuestionTimeout = 5 * time.Minute
	// DefaultWatchdogInterval is how often the watchdog scans for
	// overdue questions.
	DefaultWatchdogInterval = 30 * time.Second
)

// TimeoutFunc is invoked once per expired question, outside any lock.
type TimeoutFunc func(userID string)

// ResponseWatchdog periodically expires questions that have been open
// longer than the configured timeout. Expiry feeds the performance
// monitor's timeout statistics; an optional callback lets the host nudge
// the user over the transport.
type ResponseWatchdog struct {
	monitor   *PerformanceMonitor
	timeout   time.Duration
	interval  time.Duration
	onTimeout TimeoutFunc

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewResponseWatchdog creates a watchdog. Zero timeout or interval fall
// back to the defaults; onTimeout may be nil.
func NewResponseWatchdog(monitor *PerformanceMonitor, timeout, interval time.Duration, onTimeout TimeoutFunc) *ResponseWatchdog {
	if timeout <= 0 {
		timeout = DefaultQuestionTimeout
	}
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	return &ResponseWatchdog{
		monitor:   monitor,
		timeout:   timeout,
		interval:  interval,
		onTimeout: onTimeout,
	}
}

// Start launches the scan loop. Calling Start on a running watchdog is a no-op.
func (w *ResponseWatchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})

	go w.loop(w.stopCh)
	log.Printf("[Watchdog] Started | timeout=%s interval=%s", w.timeout, w.interval)
}

// Stop terminates the scan loop. Safe to call multiple times.
func (w *ResponseWatchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	log.Printf("[Watchdog] Stopped")
}

// Running reports whether the loop is active.
func (w *ResponseWatchdog) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ResponseWatchdog) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan expires every question open longer than the timeout and fires the
// callback for each affected user. Exposed so hosts and tests can trigger
// a pass without waiting for the ticker.
func (w *ResponseWatchdog) Scan() int {
	expired := w.monitor.ExpireOverdue(w.timeout)
	for _, userID := range expired {
		log.Printf("[Watchdog] Question timed out | user=%s timeout=%s", userID, w.timeout)
		if w.onTimeout != nil {
			w.onTimeout(userID)
		}
	}
	return len(expired)
}
