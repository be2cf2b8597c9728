package dispatcher

import (
	"math"
	"math/rand"
	"time"
)

const (
	backoffBase = 5 * time.Second
	backoffMax  = time.Hour
)

// computeBackoff returns base·2^(attempt-1) with ±25% jitter, capped at backoffMax.
func computeBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	exp := math.Pow(2, float64(attempt-1))
	d := time.Duration(float64(backoffBase) * exp)
	if d <= 0 || d > backoffMax {
		d = backoffMax
	}

	jitter := (rand.Float64()*0.5 - 0.25) * float64(d)
	d += time.Duration(jitter)
	if d > backoffMax {
		d = backoffMax
	}
	return d
}
