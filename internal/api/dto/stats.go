package dto

import (
	"github.com/dustin/go-humanize"
	"github.com/safebase/safebase/internal/core/service"
)

// StatsResponse represents the dashboard summary
type StatsResponse struct {
	TotalDatabases int              `json:"totalDatabases"`
	TotalBackups   int              `json:"totalBackups"`
	SuccessRate    float64          `json:"successRate"`
	TotalSize      string           `json:"totalSize"`
	RunningBackups int              `json:"runningBackups"`
	UnreadAlerts   int              `json:"unreadAlerts"`
	RecentBackups  []BackupResponse `json:"recentBackups"`
	RecentAlerts   []AlertResponse  `json:"recentAlerts"`
}

func ToStatsResponse(stats *service.Stats) StatsResponse {
	return StatsResponse{
		TotalDatabases: stats.TotalDatabases,
		TotalBackups:   stats.TotalBackups,
		SuccessRate:    stats.SuccessRate,
		TotalSize:      humanize.Bytes(uint64(stats.TotalSizeBytes)),
		RunningBackups: stats.RunningBackups,
		UnreadAlerts:   stats.UnreadAlerts,
		RecentBackups:  ToBackupResponses(stats.RecentBackups),
		RecentAlerts:   ToAlertResponses(stats.RecentAlerts),
	}
}
