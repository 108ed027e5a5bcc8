// Package scheduler drives time-based work: firing due backup
// schedules and watching free space on the backup volume.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/service"
	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"
)

const (
	DefaultInterval = time.Minute

	// diskWarnThreshold is the used-space fraction above which a
	// warning alert is raised for the backup volume.
	diskWarnThreshold = 90.0
)

type Scheduler struct {
	scheduleServ *service.ScheduleService
	alertServ    *service.AlertService
	interval     time.Duration
	backupDir    string
	logger       *zap.Logger

	// evalMu guards against overlapping evaluations when a tick fires
	// while the previous one is still running.
	evalMu sync.Mutex

	// diskWarned latches after a warning so the alert is raised once
	// per incident, not once per tick.
	diskWarned bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(scheduleServ *service.ScheduleService, alertServ *service.AlertService, interval time.Duration, backupDir string, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		scheduleServ: scheduleServ,
		alertServ:    alertServ,
		interval:     interval,
		backupDir:    backupDir,
		logger:       logger,
	}
}

// Start launches the tick loop. It returns immediately; use Stop to
// shut the loop down.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First evaluation happens on start so restarts do not wait a full
	// interval to catch up on overdue schedules.
	s.Tick(ctx, time.Now().UTC())

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(ctx, now.UTC())
		}
	}
}

// Tick runs one evaluation. Overlapping calls are skipped, not queued.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	if !s.evalMu.TryLock() {
		s.logger.Warn("previous evaluation still running, skipping tick")
		return
	}
	defer s.evalMu.Unlock()

	if err := s.scheduleServ.FireDue(ctx, now); err != nil {
		s.logger.Error("failed to evaluate schedules", zap.Error(err))
	}
	s.checkDiskSpace(ctx)
}

func (s *Scheduler) checkDiskSpace(ctx context.Context) {
	usage, err := disk.UsageWithContext(ctx, s.backupDir)
	if err != nil {
		s.logger.Warn("failed to read disk usage", zap.String("path", s.backupDir), zap.Error(err))
		return
	}

	if usage.UsedPercent < diskWarnThreshold {
		s.diskWarned = false
		return
	}
	if s.diskWarned {
		return
	}
	s.diskWarned = true

	s.logger.Warn("backup volume running out of space",
		zap.String("path", s.backupDir),
		zap.Float64("used_percent", usage.UsedPercent),
		zap.Uint64("free_bytes", usage.Free),
	)
	s.alertServ.Emit(ctx, domain.AlertKindWarning,
		"Low disk space",
		"The backup volume is over 90% full. Old backups may need to be pruned.",
		nil)
}

// Stop cancels the loop and waits for the current evaluation to end.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("scheduler stopped")
}
