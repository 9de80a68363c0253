package brainstorm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EngineConfig holds everything needed to assemble a brainstorming engine.
// Use NewEngineConfigFromEnv() to load from environment variables (.env file).
type EngineConfig struct {
	// AgentID namespaces archived artifacts (default "brainstorm").
	AgentID string
	// TargetResponseTime is the monitor's latency target.
	TargetResponseTime time.Duration
	// QuestionTimeout is how long a question may stay unanswered.
	QuestionTimeout time.Duration
	// WatchdogInterval is how often the watchdog scans for overdue questions.
	WatchdogInterval time.Duration
	// SessionIdleTTL evicts sessions idle longer than this (0 = never).
	SessionIdleTTL time.Duration
	// RedisAddr enables the Redis archive backend when non-empty.
	RedisAddr string
	// RedisPassword for the Redis backend (optional).
	RedisPassword string
	// RedisDB selects the Redis database (default 0).
	RedisDB int
	// Debug enables verbose logging
	Debug bool
}

// NewEngineConfigFromEnv loads configuration from environment variables,
// with .env file support. Every field has a working default, so an empty
// environment yields a usable in-memory configuration.
func NewEngineConfigFromEnv() (*EngineConfig, error) {
	// Try to load .env file (ignore error if not found)
	loadDotEnv()

	cfg := &EngineConfig{
		AgentID:       getEnv("AGENT_ID", "brainstorm"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		Debug:         toBool(getEnv("DEBUG", "false")),
	}

	var err error
	if cfg.TargetResponseTime, err = parseDurationEnv("TARGET_RESPONSE_TIME", DefaultTargetResponseTime); err != nil {
		return nil, err
	}
	if cfg.QuestionTimeout, err = parseDurationEnv("QUESTION_TIMEOUT", DefaultQuestionTimeout); err != nil {
		return nil, err
	}
	if cfg.WatchdogInterval, err = parseDurationEnv("WATCHDOG_INTERVAL", DefaultWatchdogInterval); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = parseDurationEnv("SESSION_IDLE_TTL", 0); err != nil {
		return nil, err
	}
	cfg.RedisDB, _ = strconv.Atoi(getEnv("REDIS_DB", "0"))

	return cfg, nil
}

// Summary returns a human-readable configuration summary with sensitive data masked.
func (c *EngineConfig) Summary() string {
	archive := "in-memory"
	if c.RedisAddr != "" {
		archive = "redis@" + c.RedisAddr
	}
	idle := "off"
	if c.SessionIdleTTL > 0 {
		idle = c.SessionIdleTTL.String()
	}
	return fmt.Sprintf(
		"Agent: %s | Target: %s | Timeout: %s | Watchdog: %s | IdleTTL: %s | Archive: %s | Debug: %v",
		c.AgentID,
		c.TargetResponseTime,
		c.QuestionTimeout,
		c.WatchdogInterval,
		idle,
		archive,
		c.Debug,
	)
}

// --- internal helpers ---

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.TrimSpace(val)
}

func toBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// loadDotEnv attempts to load a .env file from the current directory.
// It silently ignores errors (file not found, parse errors).
func loadDotEnv() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}
