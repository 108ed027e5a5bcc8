package cli

import (
	"fmt"

	"github.com/safebase/safebase/internal/adapter/dump"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/core/service"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"github.com/safebase/safebase/pkg/config"
	"github.com/safebase/safebase/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "safebase",
	Short: "Safebase - Database backup management",
	Long: `Safebase is a backup management service for MySQL and PostgreSQL databases.

It provides:
- On-demand and cron-scheduled backups using the engine's native dump tools
- Restore from any successful backup
- Connection health probing
- Alerting on backup outcomes and disk pressure
- REST API for the dashboard`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/safebase/config.yml)")
}

// initServices initializes all services
func initServices(log *zap.Logger) (*Services, error) {
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	userRepo := sqlite.NewUserRepository(db)
	databaseRepo := sqlite.NewDatabaseRepository(db)
	backupRepo := sqlite.NewBackupRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	alertRepo := sqlite.NewAlertRepository(db)

	engine := dump.NewExecutor(cfg.BackupDir, cfg.ProbeTimeout)

	authService := service.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.JWTTokenTTL)
	alertService := service.NewAlertService(alertRepo, log)
	databaseService := service.NewDatabaseService(databaseRepo, scheduleRepo, engine, log)
	backupService := service.NewBackupService(backupRepo, databaseRepo, alertService, engine, cfg.DumpTimeout, log)
	scheduleService := service.NewScheduleService(scheduleRepo, databaseRepo, backupService, log)
	statsService := service.NewStatsService(databaseRepo, backupRepo, alertRepo)

	return &Services{
		DB:              db,
		UserRepo:        userRepo,
		DatabaseRepo:    databaseRepo,
		BackupRepo:      backupRepo,
		ScheduleRepo:    scheduleRepo,
		AlertRepo:       alertRepo,
		AuthService:     authService,
		AlertService:    alertService,
		DatabaseService: databaseService,
		BackupService:   backupService,
		ScheduleService: scheduleService,
		StatsService:    statsService,
	}, nil
}

// Services holds all initialized services
type Services struct {
	DB              *sqlite.DB
	UserRepo        repository.UserRepository
	DatabaseRepo    repository.DatabaseRepository
	BackupRepo      repository.BackupRepository
	ScheduleRepo    repository.ScheduleRepository
	AlertRepo       repository.AlertRepository
	AuthService     *service.AuthService
	AlertService    *service.AlertService
	DatabaseService *service.DatabaseService
	BackupService   *service.BackupService
	ScheduleService *service.ScheduleService
	StatsService    *service.StatsService
}

// Close closes all resources
func (s *Services) Close() {
	if s.BackupService != nil {
		s.BackupService.Wait()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

func newLogger() *zap.Logger {
	level := config.DefaultLogLevel
	if cfg != nil {
		level = cfg.LogLevel
	}
	return logger.New(level)
}
