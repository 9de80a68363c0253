package brainstorm

import (
	"strings"
	"testing"
	"time"
)

func TestEngineConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"AGENT_ID", "TARGET_RESPONSE_TIME", "QUESTION_TIMEOUT",
		"WATCHDOG_INTERVAL", "SESSION_IDLE_TTL", "REDIS_ADDR", "DEBUG",
	} {
		t.Setenv(key, "")
	}

	cfg, err := NewEngineConfigFromEnv()
	if err != nil {
		t.Fatalf("NewEngineConfigFromEnv: %v", err)
	}
	if cfg.AgentID != "brainstorm" {
		t.Errorf("AgentID = %q, want %q", cfg.AgentID, "brainstorm")
	}
	if cfg.TargetResponseTime != DefaultTargetResponseTime {
		t.Errorf("TargetResponseTime = %s, want %s", cfg.TargetResponseTime, DefaultTargetResponseTime)
	}
	if cfg.QuestionTimeout != DefaultQuestionTimeout {
		t.Errorf("QuestionTimeout = %s, want %s", cfg.QuestionTimeout, DefaultQuestionTimeout)
	}
	if cfg.SessionIdleTTL != 0 {
		t.Errorf("SessionIdleTTL = %s, want 0 (disabled)", cfg.SessionIdleTTL)
	}
	if cfg.RedisAddr != "" || cfg.Debug {
		t.Errorf("cfg = %+v, want in-memory non-debug defaults", cfg)
	}
}

func TestEngineConfigFromEnv(t *testing.T) {
	t.Setenv("AGENT_ID", "writer")
	t.Setenv("TARGET_RESPONSE_TIME", "5s")
	t.Setenv("QUESTION_TIMEOUT", "2m")
	t.Setenv("SESSION_IDLE_TTL", "1h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DEBUG", "true")

	cfg, err := NewEngineConfigFromEnv()
	if err != nil {
		t.Fatalf("NewEngineConfigFromEnv: %v", err)
	}
	if cfg.AgentID != "writer" {
		t.Errorf("AgentID = %q", cfg.AgentID)
	}
	if cfg.TargetResponseTime != 5*time.Second {
		t.Errorf("TargetResponseTime = %s, want 5s", cfg.TargetResponseTime)
	}
	if cfg.QuestionTimeout != 2*time.Minute {
		t.Errorf("QuestionTimeout = %s, want 2m", cfg.QuestionTimeout)
	}
	if cfg.SessionIdleTTL != time.Hour {
		t.Errorf("SessionIdleTTL = %s, want 1h", cfg.SessionIdleTTL)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}

	summary := cfg.Summary()
	if !strings.Contains(summary, "writer") || !strings.Contains(summary, "redis@localhost:6379") {
		t.Errorf("Summary = %q", summary)
	}
}

func TestEngineConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("QUESTION_TIMEOUT", "not-a-duration")
	if _, err := NewEngineConfigFromEnv(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestToBool(t *testing.T) {
	for _, s := range []string{"true", "1", "yes", "on", "TRUE", " Yes "} {
		if !toBool(s) {
			t.Errorf("toBool(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"false", "0", "no", "off", "", "maybe"} {
		if toBool(s) {
			t.Errorf("toBool(%q) = true, want false", s)
		}
	}
}
