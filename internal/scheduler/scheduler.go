// Package scheduler triggers end-of-day checklist submission: a cron job
// once per day, plus a one-time catch-up at process start for the day the
// process may have been down. Both run in the same configured zone so they
// can never disagree about what "today" was.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	logpkg "github.com/jobwatch/jobwatch/internal/logger"
	"github.com/jobwatch/jobwatch/internal/models"
)

const submitTimeout = 2 * time.Minute

// Submitter performs the end-of-day submission for a date.
type Submitter interface {
	SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error)
}

// Scheduler owns the daily submit trigger and the startup catch-up. It is
// handed its zone and cron spec at construction and holds no global state.
type Scheduler struct {
	cron      *cron.Cron
	submitter Submitter
	zone      *time.Location
	spec      string
	logger    *zap.Logger

	now func() time.Time // injectable for tests
}

// New creates a scheduler that submits "today" in the given zone whenever
// the cron spec fires.
func New(submitter Submitter, spec string, zone *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(zone)),
		submitter: submitter,
		zone:      zone,
		spec:      spec,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runDaily); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler_started",
		zap.String("cron", s.spec),
		zap.String("zone", s.zone.String()),
	)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler_stopped")
}

func (s *Scheduler) runDaily() {
	today := models.DateOf(s.now().In(s.zone))
	s.submit(today, "daily_auto_submit")
}

// CatchUp submits yesterday's checklist once, covering a process that was
// down at the scheduled submit time. Failures are logged, not retried.
func (s *Scheduler) CatchUp() {
	yesterday := models.DateOf(s.now().In(s.zone)).AddDays(-1)
	s.submit(yesterday, "startup_catchup")
}

// submit runs one submission with a bounded context. Errors never propagate
// past this point; a failed scheduled run is visible in logs only.
func (s *Scheduler) submit(date models.Date, trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	advanced, err := s.submitter.SubmitDay(ctx, date)
	if err != nil {
		s.logger.Error("scheduled_submit_failed",
			zap.String("trigger", trigger),
			zap.String("date", date.String()),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return
	}

	s.logger.Info("scheduled_submit_completed",
		zap.String("trigger", trigger),
		zap.String("date", date.String()),
		zap.Int("companies_advanced", len(advanced)),
	)
}
