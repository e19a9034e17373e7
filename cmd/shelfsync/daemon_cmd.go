package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync/internal/backup"
	"github.com/shelfsync/shelfsync/internal/daemon"
	"github.com/shelfsync/shelfsync/internal/version"
)

func init() {
	rootCmd.AddCommand(newDaemonCmd())
}

func newDaemonCmd() *cobra.Command {
	var interval time.Duration

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run backups on a fixed interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			slog.Info("shelfsync daemon", "version", version.Short(), "interval", interval)

			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			// held for the daemon's lifetime so one-shot runs on this
			// machine are refused while it is active
			lock, err := backup.AcquireRunLock(cfg.BackupDir)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					slog.Warn("release run lock", "error", err)
				}
			}()

			sched, err := daemon.NewScheduler(backup.NewProducer(cfg), interval)
			if err != nil {
				return err
			}

			defer slog.Info("Bye!")
			return sched.Run(cmd.Context())
		},
	}

	daemonCmd.Flags().DurationVarP(&interval, "interval", "i", time.Hour, "time between backup runs")

	return daemonCmd
}
