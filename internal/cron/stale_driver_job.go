package cron

import (
	"context"
	"fmt"

	"github.com/rmagbanua/kaon-backend/pkg/logger"
)

const staleDriverJobName = "stale_driver_sweep"

type driverSweeper interface {
	SweepStaleDrivers(ctx context.Context) (int, error)
}

// StaleDriverJob flips drivers offline when their last location push is older
// than the liveness window, so the claim queue never offers dead couriers.
type StaleDriverJob struct {
	logg    *logger.Logger
	sweeper driverSweeper
}

// NewStaleDriverJob builds the driver liveness sweep.
func NewStaleDriverJob(logg *logger.Logger, sweeper driverSweeper) (*StaleDriverJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if sweeper == nil {
		return nil, fmt.Errorf("driver sweeper required")
	}
	return &StaleDriverJob{logg: logg, sweeper: sweeper}, nil
}

func (j *StaleDriverJob) Name() string { return staleDriverJobName }

func (j *StaleDriverJob) Run(ctx context.Context) error {
	count, err := j.sweeper.SweepStaleDrivers(ctx)
	if err != nil {
		return fmt.Errorf("sweep stale drivers: %w", err)
	}
	if count > 0 {
		j.logg.Info(j.logg.WithField(ctx, "flipped_offline", count), "stale drivers taken off the queue")
	}
	return nil
}
