package orchestrator

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Timeout constants for different operations
var (
	// DefaultRunTimeout bounds a whole run when the config leaves run_timeout unset
	DefaultRunTimeout = getTimeoutOrDefault("RUN_TIMEOUT", 5*time.Minute, 5*time.Second)
	// CompensationTimeout is the timeout for restoring the previous version
	CompensationTimeout = getTimeoutOrDefault("COMPENSATION_TIMEOUT", 30*time.Second, 100*time.Millisecond)
	// CompensationRetryCount is the number of retries for a failed compensation
	CompensationRetryCount = uint64(getRetryCountOrDefault("COMPENSATION_RETRY_COUNT", 3, 1))
	// CompensationRetryDelay is the initial delay for exponential backoff
	CompensationRetryDelay = getTimeoutOrDefault("COMPENSATION_RETRY_DELAY", 500*time.Millisecond, 10*time.Millisecond)
)

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// getTimeoutOrDefault returns production timeout or test timeout based on environment
func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

// getRetryCountOrDefault returns production retry count or test retry count based on environment
func getRetryCountOrDefault(envVar string, prodDefault, testDefault int) int {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.Atoi(env); err == nil && count >= 0 {
			return count
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
