package scheduler

import "time"

// Backoff yields the delay before the next retry. With Max set it grows
// exponentially from Base up to Max; with Max zero it is a fixed delay.
// The unbounded-retry behavior is deliberate: chronic low budget starves
// the loop rather than failing it.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	attempt int
}

func (b *Backoff) Next() time.Duration {
	if b.Max == 0 || b.Max <= b.Base {
		return b.Base
	}

	d := b.Base << b.attempt
	if d >= b.Max || d < b.Base { // overflow guard
		return b.Max
	}
	b.attempt++
	return d
}

func (b *Backoff) Reset() {
	b.attempt = 0
}
