// Package main provides the liftview binary entry point.
// Liftview is a terminal panel for the elevator simulator: it polls the
// simulator's state endpoint on a fixed cadence, renders the floor
// buttons, queue, and event log, and submits floor requests.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/c360studio/liftview/client"
	"github.com/c360studio/liftview/config"
	"github.com/c360studio/liftview/eventlog"
	"github.com/c360studio/liftview/panel"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "liftview"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath   string
		serverURL    string
		pollInterval time.Duration
		logLevel     string
		logFile      string
		jsonMode     bool
	)

	cmd := &cobra.Command{
		Use:   "liftview",
		Short: "Terminal panel for the elevator simulator",
		Long: `Liftview is a terminal panel for the elevator simulator.

It polls GET /state twice a second, shows the floor buttons the way a
physical elevator panel would (highest floor on top), and submits
POST /request when you activate an idle floor. Failed fetches go to the
on-screen event log; the last good snapshot stays visible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, serverURL, pollInterval, logLevel, logFile, jsonMode)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Simulator base URL (overrides config)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Poll period (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Debug log file (the terminal belongs to the panel)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Fetch one snapshot, print it as JSON, and exit")

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func run(configPath, serverURL string, pollInterval time.Duration, logLevel, logFile string, jsonMode bool) error {
	cfg, err := loadConfig(configPath, serverURL, pollInterval, logLevel, logFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := buildLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	c := client.New(cfg.Server.URL,
		client.WithTimeout(time.Duration(cfg.Server.Timeout)),
		client.WithLogger(logger),
	)

	if jsonMode {
		return printSnapshot(c)
	}

	logBuf := eventlog.New(cfg.Log.Retention)
	m := panel.New(c, logBuf, cfg.Server.URL, time.Duration(cfg.Poll.Interval))
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Apply config file edits without restarting the panel.
	if configPath != "" {
		watcher, err := config.WatchFile(configPath, logger)
		if err != nil {
			logger.Warn("Config watching disabled", "error", err)
		} else {
			defer watcher.Close()
			go func() {
				for reloaded := range watcher.Reloads() {
					p.Send(panel.ReloadMsg{
						Interval:  time.Duration(reloaded.Poll.Interval),
						Retention: reloaded.Log.Retention,
					})
				}
			}()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run panel: %w", err)
	}
	return nil
}

// loadConfig layers defaults, the optional config file, and flag
// overrides, then validates the result.
func loadConfig(configPath, serverURL string, pollInterval time.Duration, logLevel, logFile string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if pollInterval > 0 {
		cfg.Poll.Interval = config.Duration(pollInterval)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildLogger returns the debug logger. Without a log file all output is
// discarded: stderr would garble the rendered panel.
func buildLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.File == "" {
		handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
		return slog.New(handler), func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), func() { f.Close() }, nil
}

// printSnapshot implements --json: one poll, indented JSON to stdout.
func printSnapshot(c *client.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := c.Poll(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
