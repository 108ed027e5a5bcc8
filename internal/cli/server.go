package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safebase/safebase/internal/api"
	"github.com/safebase/safebase/internal/scheduler"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  "Start the REST API server and the schedule evaluator",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		services, err := initServices(log)
		if err != nil {
			return err
		}
		defer services.Close()

		// Resolve backups left in_progress by a previous run before
		// the scheduler can fire anything new.
		if err := services.BackupService.ReconcileStale(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reconcile interrupted backups: %w", err)
		}

		sched := scheduler.New(services.ScheduleService, services.AlertService, cfg.ScheduleInterval, cfg.BackupDir, log)
		sched.Start()
		defer sched.Stop()

		server := api.NewServer(
			cfg,
			services.AuthService,
			services.DatabaseService,
			services.BackupService,
			services.ScheduleService,
			services.AlertService,
			services.StatsService,
			log,
		)

		serverErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case <-sigChan:
			log.Info("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
