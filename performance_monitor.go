package brainstorm

import (
	"fmt"
	"log"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// Performance Monitor — per-question response latency tracking
// ──────────────────────────────────────────────

// DefaultTargetResponseTime is the latency target used by Suggestions.
const DefaultTargetResponseTime = 2 * time.Second

// globalWindowSize bounds the rolling latency window for the global average.
const globalWindowSize = 100

// openQuestion is the single pending question timer for a user.
type openQuestion struct {
	text    string
	startAt time.Time
}

// userMetrics holds one user's latency history. Each entry carries its own
// lock so different users never contend.
type userMetrics struct {
	mu       sync.Mutex
	open     *openQuestion
	samples  []float64 // latencies in seconds, answered questions only
	timeouts int
}

// UserStats is a per-user statistics snapshot. QuestionCount counts answered
// questions; TimeoutRate is timeouts / (answered + timeouts).
type UserStats struct {
	QuestionCount int     `json:"question_count"`
	AvgLatency    float64 `json:"avg_latency"`
	MinLatency    float64 `json:"min_latency"`
	MaxLatency    float64 `json:"max_latency"`
	TimeoutCount  int     `json:"timeout_count"`
	TimeoutRate   float64 `json:"timeout_rate"`
}

// GlobalStats aggregates across all users. AvgLatency is computed over the
// rolling window of the most recent 100 responses.
type GlobalStats struct {
	QuestionCount int     `json:"question_count"`
	ResponseCount int     `json:"response_count"`
	TimeoutCount  int     `json:"timeout_count"`
	AvgLatency    float64 `json:"avg_latency"`
	ResponseRate  float64 `json:"response_rate"`
}

// PerformanceMonitor instruments the question/answer cadence per user and
// globally. Safe for concurrent use across users.
type PerformanceMonitor struct {
	target time.Duration

	mu    sync.RWMutex
	users map[string]*userMetrics

	totalQuestions atomic.Int64
	totalResponses atomic.Int64
	totalTimeouts  atomic.Int64

	windowMu sync.Mutex
	window   []float64

	debug bool
}

// NewPerformanceMonitor creates a monitor. A non-positive target uses
// DefaultTargetResponseTime.
func NewPerformanceMonitor(target time.Duration) *PerformanceMonitor {
	if target <= 0 {
		target = DefaultTargetResponseTime
	}
	return &PerformanceMonitor{
		target: target,
		users:  make(map[string]*userMetrics),
	}
}

// SetDebug toggles verbose logging.
func (m *PerformanceMonitor) SetDebug(debug bool) { m.debug = debug }

// entry returns the metrics record for a user, creating it lazily on first
// question so users that never get asked anything are not counted.
func (m *PerformanceMonitor) entry(userID string, create bool) *userMetrics {
	m.mu.RLock()
	u := m.users[userID]
	m.mu.RUnlock()
	if u != nil || !create {
		return u
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u = m.users[userID]; u == nil {
		u = &userMetrics{}
		m.users[userID] = u
	}
	return u
}

// StartQuestion records a newly emitted question. At most one question is
// outstanding per user: a previous open timer is silently discarded, matching
// the single-threaded question/answer cadence of the planner.
func (m *PerformanceMonitor) StartQuestion(userID, text string) {
	m.startQuestionAt(userID, text, time.Now())
}

func (m *PerformanceMonitor) startQuestionAt(userID, text string, now time.Time) {
	u := m.entry(userID, true)
	u.mu.Lock()
	if u.open != nil && m.debug {
		log.Printf("[PerfMonitor] Discarding unanswered timer | user=%s", userID)
	}
	u.open = &openQuestion{text: text, startAt: now}
	u.mu.Unlock()
	m.totalQuestions.Inc()
}

// HasOpenQuestion reports whether a question timer is pending for the user.
func (m *PerformanceMonitor) HasOpenQuestion(userID string) bool {
	u := m.entry(userID, false)
	if u == nil {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.open != nil
}

// RecordResponse closes the user's open timer and returns the latency in
// seconds. With no open timer it logs a warning and returns 0 (non-fatal).
func (m *PerformanceMonitor) RecordResponse(userID, text string) float64 {
	return m.recordResponseAt(userID, text, time.Now())
}

func (m *PerformanceMonitor) recordResponseAt(userID, text string, now time.Time) float64 {
	u := m.entry(userID, false)
	if u == nil {
		log.Printf("[PerfMonitor] No pending question | user=%s", userID)
		return 0
	}

	u.mu.Lock()
	if u.open == nil {
		u.mu.Unlock()
		log.Printf("[PerfMonitor] No pending question | user=%s", userID)
		return 0
	}
	latency := now.Sub(u.open.startAt).Seconds()
	if latency < 0 {
		latency = 0
	}
	u.samples = append(u.samples, latency)
	u.open = nil
	u.mu.Unlock()

	m.totalResponses.Inc()
	m.pushWindow(latency)

	if latency > m.target.Seconds() {
		log.Printf("[PerfMonitor] Slow response | user=%s latency=%.2fs target=%.2fs",
			userID, latency, m.target.Seconds())
	} else if m.debug {
		log.Printf("[PerfMonitor] Response | user=%s latency=%.2fs", userID, latency)
	}
	return latency
}

// RecordTimeout counts a timed-out question and clears the open timer
// without recording a latency sample.
func (m *PerformanceMonitor) RecordTimeout(userID string) {
	if u := m.entry(userID, false); u != nil {
		u.mu.Lock()
		u.timeouts++
		u.open = nil
		u.mu.Unlock()
	}
	m.totalTimeouts.Inc()
	log.Printf("[PerfMonitor] Question timeout | user=%s", userID)
}

// ExpireOverdue scans all open timers and expires those older than maxAge,
// counting each as a timeout. It returns the affected user IDs. The
// check-and-clear is atomic per user, so a racing response never double
// counts.
func (m *PerformanceMonitor) ExpireOverdue(maxAge time.Duration) []string {
	now := time.Now()

	m.mu.RLock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var expired []string
	for _, id := range ids {
		u := m.entry(id, false)
		if u == nil {
			continue
		}
		u.mu.Lock()
		if u.open != nil && now.Sub(u.open.startAt) > maxAge {
			u.timeouts++
			u.open = nil
			u.mu.Unlock()
			m.totalTimeouts.Inc()
			expired = append(expired, id)
			log.Printf("[PerfMonitor] Question timeout | user=%s age>%s", id, maxAge)
			continue
		}
		u.mu.Unlock()
	}
	return expired
}

func (m *PerformanceMonitor) pushWindow(latency float64) {
	m.windowMu.Lock()
	defer m.windowMu.Unlock()
	m.window = append(m.window, latency)
	if len(m.window) > globalWindowSize {
		m.window = m.window[len(m.window)-globalWindowSize:]
	}
}

// UserStats returns the statistics snapshot for one user.
// All-zero values for unknown users.
func (m *PerformanceMonitor) UserStats(userID string) UserStats {
	u := m.entry(userID, false)
	if u == nil {
		return UserStats{}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	stats := UserStats{
		QuestionCount: len(u.samples),
		TimeoutCount:  u.timeouts,
	}
	if denom := len(u.samples) + u.timeouts; denom > 0 {
		stats.TimeoutRate = float64(u.timeouts) / float64(denom)
	}
	if len(u.samples) == 0 {
		return stats
	}

	min, max, sum := u.samples[0], u.samples[0], 0.0
	for _, s := range u.samples {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		sum += s
	}
	stats.AvgLatency = sum / float64(len(u.samples))
	stats.MinLatency = min
	stats.MaxLatency = max
	return stats
}

// GlobalStats returns the cross-user aggregate.
func (m *PerformanceMonitor) GlobalStats() GlobalStats {
	stats := GlobalStats{
		QuestionCount: int(m.totalQuestions.Load()),
		ResponseCount: int(m.totalResponses.Load()),
		TimeoutCount:  int(m.totalTimeouts.Load()),
	}
	if stats.QuestionCount > 0 {
		stats.ResponseRate = float64(stats.ResponseCount) / float64(stats.QuestionCount)
	}

	m.windowMu.Lock()
	if len(m.window) > 0 {
		sum := 0.0
		for _, s := range m.window {
			sum += s
		}
		stats.AvgLatency = sum / float64(len(m.window))
	}
	m.windowMu.Unlock()

	return stats
}

// WindowLen returns the current rolling window size.
func (m *PerformanceMonitor) WindowLen() int {
	m.windowMu.Lock()
	defer m.windowMu.Unlock()
	return len(m.window)
}

// Suggestions returns rule-based diagnostics about conversational health.
func (m *PerformanceMonitor) Suggestions() []string {
	stats := m.GlobalStats()
	target := m.target.Seconds()

	var out []string
	if stats.AvgLatency > target*2 {
		out = append(out, fmt.Sprintf(
			"average response time %.1fs is above 2x target (%.1fs): shorten questions and consider a tighter timeout",
			stats.AvgLatency, target))
	}
	if float64(stats.TimeoutCount) > float64(stats.ResponseCount)*0.2 {
		out = append(out, "high timeout rate: make questions clearer and add quick-reply suggestions")
	}
	if stats.QuestionCount > 0 && stats.ResponseRate < 0.8 {
		out = append(out, fmt.Sprintf(
			"low response rate (%.0f%%): questions may need more context or engagement",
			stats.ResponseRate*100))
	}
	if len(out) == 0 {
		out = append(out, "performance is nominal")
	}
	return out
}
