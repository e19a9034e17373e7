package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync/internal/backup"
	"github.com/shelfsync/shelfsync/internal/version"
)

func init() {
	rootCmd.AddCommand(newBackupCmd())
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Archive changed libraries and prune old backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			slog.Info("shelfsync backup", "version", version.Short())

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

			return backup.NewProducer(cfg).Run(cmd.Context())
		},
	}
}
