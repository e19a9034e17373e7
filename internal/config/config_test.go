package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_NormalizesAndDefaults(t *testing.T) {
	tmp := t.TempDir()
	cfg := &Config{
		Libraries: map[string]string{"books": filepath.Join(tmp, "books")},
		BackupDir: filepath.Join(tmp, "backups"),
	}

	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.BackupDir))
	assert.True(t, filepath.IsAbs(cfg.Libraries["books"]))
	assert.Equal(t, DefaultMaxRecent, cfg.MaxRecent)
	assert.Equal(t, DefaultMaxMonthly, cfg.MaxMonthly)
}

func TestConfig_Validate_ErrorsOnInvalidInputs(t *testing.T) {
	tmp := t.TempDir()

	t.Run("no libraries", func(t *testing.T) {
		cfg := &Config{BackupDir: tmp}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no libraries")
	})

	t.Run("empty prefix", func(t *testing.T) {
		cfg := &Config{
			Libraries: map[string]string{"": tmp},
			BackupDir: tmp,
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "prefix")
	})

	t.Run("empty library root", func(t *testing.T) {
		cfg := &Config{
			Libraries: map[string]string{"books": ""},
			BackupDir: tmp,
		}
		err := cfg.Validate()
		assert.Error(t, err)
	})
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "config.json")

	cfg := &Config{
		Libraries:   map[string]string{"books": filepath.Join(tmp, "books")},
		BackupDir:   filepath.Join(tmp, "backups"),
		MaxRecent:   3,
		MaxMonthly:  6,
		ServiceName: "calibre",
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Libraries, loaded.Libraries)
	assert.Equal(t, cfg.BackupDir, loaded.BackupDir)
	assert.Equal(t, 3, loaded.MaxRecent)
	assert.Equal(t, 6, loaded.MaxMonthly)
	assert.Equal(t, "calibre", loaded.ServiceName)
	assert.Equal(t, path, loaded.Path)
}
