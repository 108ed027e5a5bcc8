package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"go.uber.org/zap"
)

// cronParser accepts standard 5-field expressions (minute through
// day-of-week), matching what the API documents.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type ScheduleService struct {
	scheduleRepo repository.ScheduleRepository
	databaseRepo repository.DatabaseRepository
	backupServ   *BackupService
	logger       *zap.Logger
}

func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	databaseRepo repository.DatabaseRepository,
	backupServ *BackupService,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		databaseRepo: databaseRepo,
		backupServ:   backupServ,
		logger:       logger,
	}
}

// NextAfter computes the first firing of a cron expression strictly
// after the given instant.
func NextAfter(expression string, after time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expression)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after), nil
}

type ScheduleSpec struct {
	DatabaseID     string
	CronExpression string
	Enabled        bool
}

func (s *ScheduleService) Create(ctx context.Context, spec ScheduleSpec) (*domain.Schedule, error) {
	if spec.DatabaseID == "" {
		return nil, Validationf("database id is required")
	}
	if _, err := cronParser.Parse(spec.CronExpression); err != nil {
		return nil, Validationf("invalid cron expression: %v", err)
	}

	conn, err := s.databaseRepo.FindByID(ctx, spec.DatabaseID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, NotFoundf("database connection not found: %s", spec.DatabaseID)
	}
	if err != nil {
		return nil, err
	}

	schedule := domain.NewSchedule(conn, spec.CronExpression, spec.Enabled)
	if spec.Enabled {
		next, _ := NextAfter(spec.CronExpression, time.Now().UTC())
		schedule.NextRun = &next
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) Get(ctx context.Context, id string) (*domain.Schedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, NotFoundf("schedule not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) List(ctx context.Context) ([]*domain.Schedule, error) {
	return s.scheduleRepo.List(ctx)
}

type ScheduleUpdate struct {
	CronExpression *string
	Enabled        *bool
}

// Update applies partial changes. Changing the expression, or flipping
// a schedule from disabled to enabled, recomputes the next run from now.
func (s *ScheduleService) Update(ctx context.Context, id string, update ScheduleUpdate) (*domain.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recompute := false
	if update.CronExpression != nil && *update.CronExpression != schedule.CronExpression {
		if _, err := cronParser.Parse(*update.CronExpression); err != nil {
			return nil, Validationf("invalid cron expression: %v", err)
		}
		schedule.CronExpression = *update.CronExpression
		recompute = true
	}
	if update.Enabled != nil && *update.Enabled != schedule.Enabled {
		schedule.Enabled = *update.Enabled
		if schedule.Enabled {
			recompute = true
		}
	}

	if recompute && schedule.Enabled {
		next, _ := NextAfter(schedule.CronExpression, time.Now().UTC())
		schedule.NextRun = &next
	}
	schedule.UpdatedAt = time.Now().UTC()

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	err := s.scheduleRepo.Delete(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return NotFoundf("schedule not found: %s", id)
	}
	return err
}

// Execute runs the schedule's backup immediately. An on-demand run is
// recorded as manual and leaves the schedule's own timing untouched.
func (s *ScheduleService) Execute(ctx context.Context, id string) (*domain.Backup, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.backupServ.Run(ctx, schedule.DatabaseID, domain.BackupOriginManual)
}

// FireDue triggers every schedule whose next run has arrived. The slot
// is consumed (last run set, next run advanced past now) whether or not
// the backup could start, so a busy connection skips the slot rather
// than retrying every tick.
func (s *ScheduleService) FireDue(ctx context.Context, now time.Time) error {
	due, err := s.scheduleRepo.FindDue(ctx, now)
	if err != nil {
		return err
	}

	for _, schedule := range due {
		if _, err := s.backupServ.Run(ctx, schedule.DatabaseID, domain.BackupOriginScheduled); err != nil {
			s.logger.Warn("scheduled backup not started",
				zap.String("schedule", schedule.ID),
				zap.String("database", schedule.DatabaseName),
				zap.Error(err),
			)
		}

		var nextPtr *time.Time
		if next, err := NextAfter(schedule.CronExpression, now); err == nil {
			nextPtr = &next
		}
		if err := s.scheduleRepo.UpdateRunTimes(ctx, schedule.ID, now, nextPtr); err != nil {
			s.logger.Error("failed to advance schedule", zap.String("schedule", schedule.ID), zap.Error(err))
		}
	}
	return nil
}
