package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shelfsync/shelfsync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".shelfsync", "config.json")
	DefaultBackupDir  = filepath.Join(home, "shelfsync-backups")
)

const (
	DefaultMaxRecent  = 1
	DefaultMaxMonthly = 12
)

// Config holds everything a single run needs. It is built once at startup
// and passed down; there is no package-level mutable configuration.
type Config struct {
	// Libraries maps a library prefix to its root directory. Producer and
	// consumer machines may use different roots for the same prefix.
	Libraries map[string]string `json:"libraries" mapstructure:"libraries"`

	// BackupDir holds state files and archive artifacts. It is assumed to
	// be synchronized between producer and consumer machines externally.
	BackupDir string `json:"backup_dir" mapstructure:"backup_dir"`

	// MaxRecent is the number of timestamped archives kept per library.
	MaxRecent int `json:"max_recent" mapstructure:"max_recent"`

	// MaxMonthly is the number of monthly snapshots kept per library.
	MaxMonthly int `json:"max_monthly" mapstructure:"max_monthly"`

	// ServiceName is the container stopped around restores. Empty disables
	// service control.
	ServiceName string `json:"service_name" mapstructure:"service_name"`

	Path string `json:"-" mapstructure:"-"`
}

// Validate normalizes paths and applies defaults. Library roots are
// resolved but not required to exist; a missing root is a per-library
// skip at run time, not a config error.
func (c *Config) Validate() error {
	if len(c.Libraries) == 0 {
		return fmt.Errorf("config: no libraries defined")
	}

	if c.BackupDir == "" {
		c.BackupDir = DefaultBackupDir
	}
	backupDir, err := utils.ResolvePath(c.BackupDir)
	if err != nil {
		return fmt.Errorf("config: backup_dir: %w", err)
	}
	c.BackupDir = backupDir

	for prefix, root := range c.Libraries {
		if prefix == "" {
			return fmt.Errorf("config: empty library prefix")
		}
		resolved, err := utils.ResolvePath(root)
		if err != nil {
			return fmt.Errorf("config: library %q: %w", prefix, err)
		}
		c.Libraries[prefix] = resolved
	}

	if c.MaxRecent <= 0 {
		c.MaxRecent = DefaultMaxRecent
	}
	if c.MaxMonthly <= 0 {
		c.MaxMonthly = DefaultMaxMonthly
	}

	return nil
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	return &cfg, nil
}
