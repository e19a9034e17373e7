package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shelfsync/shelfsync/internal/archive"
	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/library"
	"github.com/shelfsync/shelfsync/internal/utils"
)

// Producer fingerprints each configured library and archives it when the
// fingerprint differs from the last archived one, then maintains monthly
// snapshots and prunes per retention limits.
type Producer struct {
	cfg    *config.Config
	states *library.StateStore
	now    func() time.Time
}

func NewProducer(cfg *config.Config) *Producer {
	return &Producer{
		cfg:    cfg,
		states: library.NewStateStore(cfg.BackupDir),
		now:    time.Now,
	}
}

// Run processes every library in turn. Per-library failures are logged
// and contained; only a backup-dir-level failure aborts the run.
func (p *Producer) Run(ctx context.Context) error {
	if err := utils.EnsureDir(p.cfg.BackupDir); err != nil {
		return fmt.Errorf("backup dir %s: %w", p.cfg.BackupDir, err)
	}

	var archived, unchanged, skipped int
	for _, prefix := range sortedPrefixes(p.cfg.Libraries) {
		if err := ctx.Err(); err != nil {
			return err
		}

		root := p.cfg.Libraries[prefix]
		if !utils.DirExists(root) {
			slog.Warn("library root missing, skipping", "library", prefix, "root", root)
			skipped++
			continue
		}

		changed, err := p.processLibrary(prefix, root)
		switch {
		case err != nil:
			slog.Error("backup failed", "library", prefix, "error", err)
			skipped++
		case changed:
			archived++
		default:
			unchanged++
		}
	}

	slog.Info("backup run complete", "archived", archived, "unchanged", unchanged, "skipped", skipped)
	return nil
}

// processLibrary reports whether a new archive was created.
//
// The stored fingerprint is persisted only after the archive succeeds:
// a crash mid-archive means the next run re-detects the change and
// retries (at-least-once archiving). Retention prunes any duplicate
// recents such a retry produces.
func (p *Producer) processLibrary(prefix, root string) (bool, error) {
	current, err := library.Fingerprint(root)
	if err != nil {
		return false, err
	}

	previous, err := p.states.Read(prefix, library.RoleProducer)
	if err != nil {
		return false, err
	}
	if previous == current {
		slog.Info("no changes since last backup", "library", prefix)
		return false, nil
	}

	now := p.now()
	recentPath := filepath.Join(p.cfg.BackupDir, RecentName(prefix, now))
	slog.Info("changes detected, creating backup", "library", prefix, "archive", recentPath)
	if err := archive.Pack(root, recentPath); err != nil {
		return false, err
	}
	if info, err := os.Stat(recentPath); err == nil {
		slog.Info("backup created", "library", prefix, "size", humanize.Bytes(uint64(info.Size())))
	}

	if err := p.ensureMonthly(prefix, recentPath, now); err != nil {
		return false, err
	}
	if err := p.prune(prefix); err != nil {
		return false, err
	}

	if err := p.states.Write(prefix, library.RoleProducer, current); err != nil {
		return false, err
	}
	return true, nil
}

// ensureMonthly copies the fresh recent archive to this month's snapshot
// unless one already exists (at most one per calendar month).
func (p *Producer) ensureMonthly(prefix, recentPath string, now time.Time) error {
	monthlyPath := filepath.Join(p.cfg.BackupDir, MonthlyName(prefix, now))
	if utils.FileExists(monthlyPath) {
		slog.Debug("monthly snapshot already exists", "library", prefix, "snapshot", monthlyPath)
		return nil
	}

	slog.Info("creating monthly snapshot", "library", prefix, "snapshot", monthlyPath)
	return utils.CopyFile(recentPath, monthlyPath)
}

func (p *Producer) prune(prefix string) error {
	artifacts, err := ScanArtifacts(p.cfg.BackupDir, prefix)
	if err != nil {
		return err
	}

	doomed := SelectForDeletion(artifacts, KindRecent, p.cfg.MaxRecent)
	doomed = append(doomed, SelectForDeletion(artifacts, KindMonthly, p.cfg.MaxMonthly)...)

	for _, art := range doomed {
		slog.Info("deleting old backup", "library", prefix, "kind", art.Kind, "archive", art.Path)
		if err := os.Remove(art.Path); err != nil {
			return err
		}
	}
	return nil
}

// sortedPrefixes gives a stable processing order across runs.
func sortedPrefixes(libraries map[string]string) []string {
	prefixes := make([]string, 0, len(libraries))
	for prefix := range libraries {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}
