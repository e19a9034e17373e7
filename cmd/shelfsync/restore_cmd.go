package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync/internal/backup"
	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/internal/version"
)

func init() {
	rootCmd.AddCommand(newRestoreCmd())
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Mirror changed libraries from their latest backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			slog.Info("shelfsync restore", "version", version.Short())

			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			lock, err := backup.AcquireRunLock(cfg.BackupDir)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					slog.Warn("release run lock", "error", err)
				}
			}()

			svc := service.NewController(cfg.ServiceName)
			return backup.NewConsumer(cfg, svc).Run(cmd.Context())
		},
	}
}
