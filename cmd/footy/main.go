// Command footy collects Botola Pro match results and serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/footyscrape/config"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg       *config.Config
	envFile   string
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "footy",
		Short:         "Collect Botola Pro match results from FootyStats",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(a.envFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
			a.cfg = config.Load()
			if a.logLevel != "" {
				a.cfg.Log.Level = a.logLevel
			}
			if a.logFormat != "" {
				a.cfg.Log.Format = a.logFormat
			}
			// serve logs to stdout; everything else keeps stdout for data
			out := cmd.ErrOrStderr()
			if cmd.Name() == "serve" {
				out = cmd.OutOrStdout()
			}
			initLogger(a.cfg.Log, out)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "file of KEY=VALUE settings loaded before the environment is read")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default from FOOTY_LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "json or text (default from FOOTY_LOG_FORMAT)")

	root.AddCommand(
		newServeCmd(a),
		newScrapeCmd(a),
		newInspectCmd(a),
		newAnalyzeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
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

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
