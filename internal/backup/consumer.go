package backup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfsync/shelfsync/internal/archive"
	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/library"
	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/internal/utils"
)

// Consumer mirrors each library from its newest recent archive whenever
// the producer's published fingerprint differs from the one last restored
// here. The dependent service is stopped once before the first restore of
// the run and started once after the whole batch, never per library.
type Consumer struct {
	cfg    *config.Config
	states *library.StateStore
	svc    service.Controller
}

func NewConsumer(cfg *config.Config, svc service.Controller) *Consumer {
	return &Consumer{
		cfg:    cfg,
		states: library.NewStateStore(cfg.BackupDir),
		svc:    svc,
	}
}

// Run processes every library in turn. Per-library failures are logged
// and contained; a stopped service is restarted even when restores
// failed. An inaccessible backup dir aborts the run.
func (c *Consumer) Run(ctx context.Context) error {
	if !utils.DirExists(c.cfg.BackupDir) {
		return fmt.Errorf("backup dir does not exist: %s", c.cfg.BackupDir)
	}

	stopped := false
	defer func() {
		if !stopped {
			slog.Info("no libraries changed, service left as-is")
			return
		}
		if err := c.svc.Start(ctx); err != nil {
			slog.Warn("service start failed", "error", err)
		}
	}()

	var restored, inSync, skipped int
	for _, prefix := range sortedPrefixes(c.cfg.Libraries) {
		if err := ctx.Err(); err != nil {
			return err
		}

		remote, err := c.states.Read(prefix, library.RoleProducer)
		if err != nil {
			slog.Error("read producer state failed", "library", prefix, "error", err)
			skipped++
			continue
		}
		if remote == "" {
			slog.Info("library never backed up, skipping", "library", prefix)
			skipped++
			continue
		}

		local, err := c.states.Read(prefix, library.RoleConsumer)
		if err != nil {
			slog.Error("read restored state failed", "library", prefix, "error", err)
			skipped++
			continue
		}
		if local == remote {
			slog.Info("already in sync", "library", prefix)
			inSync++
			continue
		}

		// First pending library of the run: quiesce the service before
		// touching any library on disk.
		if !stopped {
			if err := c.svc.Stop(ctx); err != nil {
				slog.Warn("service stop failed", "error", err)
			}
			stopped = true
		}

		if err := c.restoreLibrary(prefix, remote); err != nil {
			slog.Error("restore failed", "library", prefix, "error", err)
			skipped++
			continue
		}
		restored++
	}

	slog.Info("restore run complete", "restored", restored, "in_sync", inSync, "skipped", skipped)
	return nil
}

func (c *Consumer) restoreLibrary(prefix, remote string) error {
	root, ok := c.cfg.Libraries[prefix]
	if !ok {
		return fmt.Errorf("no root configured for %q", prefix)
	}

	artifacts, err := ScanArtifacts(c.cfg.BackupDir, prefix)
	if err != nil {
		return err
	}
	newest, found := NewestRecent(artifacts)
	if !found {
		return fmt.Errorf("no recent archive found for %q", prefix)
	}

	slog.Info("restoring library", "library", prefix, "archive", newest.Path, "root", root)
	if err := archive.Unpack(newest.Path, root); err != nil {
		return err
	}

	// Only a fully extracted library records the remote fingerprint as
	// restored; a failed restore stays pending for the next run.
	if err := c.states.Write(prefix, library.RoleConsumer, remote); err != nil {
		return err
	}

	slog.Info("restore complete", "library", prefix)
	return nil
}
