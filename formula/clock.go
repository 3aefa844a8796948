package formula

import (
	"math/rand/v2"
	"time"
)

// Clock supplies wall-clock time to TODAY/NOW, injected so date functions
// are deterministically testable (spec §5, §9 Design Notes).
type Clock interface {
	Now() time.Time
}

// WallClock is the default Clock, backed by the system clock.
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

// RandomSource supplies entropy to RAND/RANDBETWEEN/RANDARRAY, injected for
// the same reason as Clock.
type RandomSource interface {
	Float64() float64
}

// DefaultRandomSource is the default RandomSource, backed by math/rand/v2.
type DefaultRandomSource struct{}

func (DefaultRandomSource) Float64() float64 { return rand.Float64() }
