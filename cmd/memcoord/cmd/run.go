package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memcoord/memcoord/coordinator"
	"github.com/memcoord/memcoord/internal/config"
	"github.com/memcoord/memcoord/internal/maintenance"
	"github.com/memcoord/memcoord/internal/slogutil"
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the coordinator with background sync and cleanup",
		Long: `Keep the coordinator open with the auto-sync loop and the scheduled
cleanup sweep running until interrupted.`,
		RunE: runRun,
	}

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		slog.Default().Error("failed to load config", "err", err)
		return err
	}

	logger := slogutil.Setup(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("Starting memcoord",
		"base_path", cfg.BasePath,
		"namespaces", len(cfg.Namespaces),
		"auto_sync", cfg.AutoSync.Enabled,
		"cleanup_schedule", cfg.Maintenance.CleanupSchedule)

	runtimeCfg := cfg.ToCoordinator()
	runtimeCfg.Logger = logger

	c, err := coordinator.Default(runtimeCfg)
	if err != nil {
		return err
	}
	defer coordinator.ResetDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.StartAutoSync(ctx); err != nil {
		return err
	}
	defer c.StopAutoSync()

	if cfg.Maintenance.CleanupSchedule != "" {
		scheduler := maintenance.NewScheduler(c, logger)
		if err := scheduler.Start(cfg.Maintenance.CleanupSchedule); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	<-ctx.Done()
	logger.Info("Shutting down")
	return nil
}
