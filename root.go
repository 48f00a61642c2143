package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"english_analyzer/config"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "english-analyzer",
	Short: "Analyze English words and sentences with an LLM",
	Long: `english-analyzer asks an OpenAI-compatible model for a structured
analysis of an English word or sentence, validates the reply against a
fixed schema and renders it for display.

Configuration is read from ./config.yaml (or --config) and can be
overridden with ` + config.EnvPrefix + `_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level override: debug, info, warn, error",
	)
}

// loadConfig opens the config manager and builds the logger from it.
func loadConfig() (*config.Manager, *slog.Logger, error) {
	m, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := m.Get()
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger := newLogger(level, cfg.Log.Format)
	slog.SetDefault(logger)
	return m, logger, nil
}

// newLogger 初始化日志器，日志写到 stderr，stdout 留给命令输出
func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
