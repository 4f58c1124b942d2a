// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"harvest/internal/config"
	"harvest/internal/ui"
	"harvest/internal/youtube"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig  string
	flagOutput  string
	flagBackend string
	flagJSON    bool
	flagDebug   bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger writes diagnostics to stderr; it is replaced once the config is known.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch YouTube videos and scrape a few campus and shopping sites",
	Long: `Harvest looks up, searches and downloads YouTube videos with yt-dlp or a
built-in client, and scrapes PChome deals, the NCHU course catalog and
NCHU iLearning from the terminal.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/harvest/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output directory for downloads")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Download backend: ytdlp | native")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(ytCmd)
	rootCmd.AddCommand(dealsCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(ilearningCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	}
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err = newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	return nil
}

// newLogger builds a console logger on stderr. Without debug only warnings
// and errors are shown.
func newLogger(debug bool) (*zap.Logger, error) {
	level := zap.WarnLevel
	if debug {
		level = zap.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	zcfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       debug,
		Encoding:          "console",
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !debug,
	}
	return zcfg.Build()
}

// report prints a failure for the user. Commands return nil afterwards so
// only configuration and flag errors change the exit status.
func report(action string, err error) error {
	if errors.Is(err, ui.ErrCancelled) || errors.Is(err, youtube.ErrCancelled) || errors.Is(err, context.Canceled) {
		ui.Warn(os.Stderr, "已取消")
		return nil
	}
	logger.Debug(action+" failed", zap.Error(err))
	ui.Error(os.Stderr, "%s失敗: %v", action, err)
	return nil
}
