package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs background jobs on fixed intervals.
type Scheduler struct {
	cron   gocron.Scheduler
	logger *slog.Logger
}

func New(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: s, logger: logger}, nil
}

// Every registers task to run every interval, plus once right away. Each run
// gets its own context bounded by the interval.
func (s *Scheduler) Every(name string, interval time.Duration, task func(ctx context.Context) error) error {
	j, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := task(ctx); err != nil {
				s.logger.Error("job failed", "job", name, "error", err)
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	s.logger.Info("job scheduled", "job", j.Name(), "id", j.ID().String(), "interval", interval.String())
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}
