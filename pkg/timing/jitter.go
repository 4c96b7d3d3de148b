// Package timing produces the randomized, human-like delays used between
// browser actions.
package timing

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// Sample draws one value from a normal distribution with the given mean and
// standard deviation, clamped so it is never negative.
func Sample(mean, stdev float64) (float64, error) {
	return SampleWith(rand.NormFloat64, mean, stdev)
}

// SampleWith is Sample with an explicit standard normal source.
func SampleWith(norm func() float64, mean, stdev float64) (float64, error) {
	if stdev < 0 || math.IsNaN(stdev) || math.IsInf(stdev, 0) || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, fmt.Errorf("%w: mean=%v stdev=%v", types.ErrInvalidDistributionParameters, mean, stdev)
	}
	return math.Max(0, norm()*stdev+mean), nil
}

// Delay resolves an optional (delay, stdev) pair into seconds to wait. A nil
// stdev yields the fixed delay.
func Delay(seconds float64, stdev *float64) (float64, error) {
	if stdev == nil {
		return seconds, nil
	}
	return Sample(seconds, *stdev)
}

// Seconds converts fractional seconds to a duration, treating negatives as zero.
func Seconds(s float64) time.Duration {
	if s <= 0 || math.IsNaN(s) {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// Sleeper pauses execution. It returns early with ctx.Err() when the context
// is cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
