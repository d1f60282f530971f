package hub

import "time"

// TokenBucket gates how fast new transports are accepted. Not safe for
// concurrent use; the accept loop is its only caller.
type TokenBucket struct {
	rate   float64 // tokens added per second
	burst  float64
	tokens float64
	last   time.Time
	now    func() time.Time // for tests
}

func NewTokenBucket(ratePerSec, burst int) *TokenBucket {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst <= 0 {
		burst = ratePerSec
	}
	b := &TokenBucket{
		rate:  float64(ratePerSec),
		burst: float64(burst),
		now:   time.Now,
	}
	b.tokens = b.burst
	b.last = b.now()
	return b
}

// Allow consumes a token if one is available.
func (t *TokenBucket) Allow() bool {
	t.refill()
	if t.tokens < 1 {
		return false
	}
	t.tokens--
	return true
}

func (t *TokenBucket) refill() {
	now := t.now()
	t.tokens += now.Sub(t.last).Seconds() * t.rate
	if t.tokens > t.burst {
		t.tokens = t.burst
	}
	t.last = now
}
