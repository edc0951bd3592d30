package dispatch

import (
	"context"
	"time"

	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

// Fix is one geolocation sample from a position watch.
type Fix struct {
	Lat       float64
	Lng       float64
	AccuracyM float64
	At        time.Time
	// Definitive marks a single-shot success; acquisition commits to it
	// immediately instead of waiting out the timeout.
	Definitive bool
}

// Acquire implements best-of-N-within-a-timeout fix selection: it drains the
// watch channel, keeps the highest-accuracy sample seen, and returns either
// the first definitive fix or the best one once the timeout fires. The watch
// never blocks the caller past the timeout, but a better fix that arrives
// early still wins over the first rough one.
func Acquire(ctx context.Context, samples <-chan Fix, timeout time.Duration) (*Fix, error) {
	if timeout <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acquire timeout must be positive")
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var best *Fix
	for {
		select {
		case <-ctx.Done():
			if best != nil {
				return best, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "location acquisition cancelled")
		case <-timer.C:
			if best == nil {
				return nil, pkgerrors.New(pkgerrors.CodeDependency, "no location fix within timeout")
			}
			return best, nil
		case fix, ok := <-samples:
			if !ok {
				if best != nil {
					return best, nil
				}
				return nil, pkgerrors.New(pkgerrors.CodeDependency, "location watch ended without a fix")
			}
			if fix.Definitive {
				return &fix, nil
			}
			if best == nil || fix.AccuracyM < best.AccuracyM {
				candidate := fix
				best = &candidate
			}
		}
	}
}
