package directory

import (
	"sync"
	"time"
)

// RateLimiter throttles IO to stay under a configured MB/s ceiling. Callers
// accumulate bytes written/read and invoke Pause once they've crossed
// MinPauseCheckBytes.
type RateLimiter struct {
	mu          sync.Mutex
	mbPerSec    float64
	minPauseBytes int64
	lastNS      int64
}

// NewRateLimiter builds a limiter capped at mbPerSec megabytes/second. A
// non-positive rate disables throttling.
func NewRateLimiter(mbPerSec float64) *RateLimiter {
	rl := &RateLimiter{mbPerSec: mbPerSec}
	rl.recomputeMinPauseBytes()
	return rl
}

func (rl *RateLimiter) recomputeMinPauseBytes() {
	// Aim to check in roughly every 50ms worth of bytes.
	if rl.mbPerSec <= 0 {
		rl.minPauseBytes = 1 << 30
		return
	}
	rl.minPauseBytes = int64(rl.mbPerSec * 1024 * 1024 * 0.05)
	if rl.minPauseBytes < 4096 {
		rl.minPauseBytes = 4096
	}
}

func (rl *RateLimiter) SetMBPerSec(mbPerSec float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.mbPerSec = mbPerSec
	rl.recomputeMinPauseBytes()
}

func (rl *RateLimiter) MBPerSec() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.mbPerSec
}

func (rl *RateLimiter) MinPauseCheckBytes() int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.minPauseBytes
}

// Pause blocks the caller long enough to keep the instantaneous rate at or
// below the configured ceiling, returning how long it slept.
func (rl *RateLimiter) Pause(bytes int64) time.Duration {
	rl.mu.Lock()
	mbPerSec := rl.mbPerSec
	rl.mu.Unlock()

	if mbPerSec <= 0 {
		return 0
	}

	secondsNeeded := float64(bytes) / (mbPerSec * 1024 * 1024)
	d := time.Duration(secondsNeeded * float64(time.Second))
	if d > 0 {
		time.Sleep(d)
	}
	return d
}
