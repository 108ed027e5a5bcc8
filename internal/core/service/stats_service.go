package service

import (
	"context"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
)

// Stats is the dashboard summary: fleet-wide counts plus the most
// recent activity.
type Stats struct {
	TotalDatabases int
	TotalBackups   int
	SuccessRate    float64 // percentage over terminal backups
	TotalSizeBytes int64
	UnreadAlerts   int
	RecentBackups  []*domain.Backup
	RecentAlerts   []*domain.Alert
	RunningBackups int
}

type StatsService struct {
	databaseRepo repository.DatabaseRepository
	backupRepo   repository.BackupRepository
	alertRepo    repository.AlertRepository
}

func NewStatsService(
	databaseRepo repository.DatabaseRepository,
	backupRepo repository.BackupRepository,
	alertRepo repository.AlertRepository,
) *StatsService {
	return &StatsService{
		databaseRepo: databaseRepo,
		backupRepo:   backupRepo,
		alertRepo:    alertRepo,
	}
}

func (s *StatsService) Dashboard(ctx context.Context) (*Stats, error) {
	totalDatabases, err := s.databaseRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalBackups, err := s.backupRepo.Count(ctx, repository.BackupFilter{})
	if err != nil {
		return nil, err
	}
	succeeded, err := s.backupRepo.CountByStatus(ctx, domain.BackupStatusSuccess)
	if err != nil {
		return nil, err
	}
	failed, err := s.backupRepo.CountByStatus(ctx, domain.BackupStatusFailed)
	if err != nil {
		return nil, err
	}
	running, err := s.backupRepo.CountByStatus(ctx, domain.BackupStatusInProgress)
	if err != nil {
		return nil, err
	}
	unread, err := s.alertRepo.UnreadCount(ctx)
	if err != nil {
		return nil, err
	}

	recentBackups, err := s.backupRepo.List(ctx, repository.BackupFilter{Limit: 5})
	if err != nil {
		return nil, err
	}
	recentAlerts, err := s.alertRepo.List(ctx, 5)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalDatabases: totalDatabases,
		TotalBackups:   totalBackups,
		UnreadAlerts:   unread,
		RecentBackups:  recentBackups,
		RecentAlerts:   recentAlerts,
		RunningBackups: running,
	}
	if terminal := succeeded + failed; terminal > 0 {
		stats.SuccessRate = float64(succeeded) / float64(terminal) * 100
	}

	databases, err := s.databaseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, db := range databases {
		stats.TotalSizeBytes += db.SizeBytes
	}

	return stats, nil
}
