package main

import (
	"fmt"
	"os"

	"github.com/newthinker/copyhub/internal/config"
	"github.com/newthinker/copyhub/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "copyhub",
	Short: "copyhub - copy-trading provider browser",
	Long: `copyhub lists copy-trading and signal providers with filtering and sorting,
and resolves entry figures for open or prospective positions.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads the config file, or the defaults when none was given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults")
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section of cfg.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level := cfg.Level
	if debug {
		level = "debug"
	}
	return logger.NewWithOptions(logger.Options{
		Development: debug,
		Level:       level,
		File:        cfg.File,
		MaxSizeMB:   cfg.MaxSizeMB,
		MaxBackups:  cfg.MaxBackups,
		MaxAgeDays:  cfg.MaxAgeDays,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
