package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	PollTimeout   time.Duration // Wall-clock budget for async HTTP long-polls
	PollInterval  time.Duration // Sleep between 202 responses while polling
	ProbeTimeout  time.Duration // Per-request timeout for the connectivity probe
	ProbeAttempts int           // Attempts for the best-effort connectivity probe
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - AZDEMO_TIMEOUT_POLL (default: 5m)
//   - AZDEMO_POLL_INTERVAL (default: 5s)
//   - AZDEMO_TIMEOUT_PROBE (default: 30s)
//   - AZDEMO_PROBE_ATTEMPTS (default: 3)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollTimeout:   parseDuration("AZDEMO_TIMEOUT_POLL", 5*time.Minute),
		PollInterval:  parseDuration("AZDEMO_POLL_INTERVAL", 5*time.Second),
		ProbeTimeout:  parseDuration("AZDEMO_TIMEOUT_PROBE", 30*time.Second),
		ProbeAttempts: parseInt("AZDEMO_PROBE_ATTEMPTS", 3),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
