package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
	debugLogs      bool
)

var rootCmd = &cobra.Command{
	Use:     "shelfsync",
	Short:   "Change-aware backup and mirrored restore for library folders",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "shelfsync config file")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if debugLogs {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".shelfsync"))
		viper.AddConfigPath(filepath.Join(home, ".config/shelfsync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.SetEnvPrefix("SHELFSYNC")
	viper.AutomaticEnv()

	return nil
}

// buildConfig assembles and validates the run configuration from whatever
// viper picked up (file, env, flags).
func buildConfig() (*config.Config, error) {
	cfg := &config.Config{
		Path:        viper.ConfigFileUsed(),
		Libraries:   viper.GetStringMapString("libraries"),
		BackupDir:   viper.GetString("backup_dir"),
		MaxRecent:   viper.GetInt("max_recent"),
		MaxMonthly:  viper.GetInt("max_monthly"),
		ServiceName: viper.GetString("service_name"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
