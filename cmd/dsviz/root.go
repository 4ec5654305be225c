package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rendis/dsviz/internal/logging"
)

type rootOpts struct {
	cfgFile  string
	logLevel string
}

var longRootCmdDescription = `dsviz traces operations on arrays, linked lists, stacks, queues and binary
search trees, and runs sorting, searching, traversal and path-finding
algorithms step by step. "dsviz serve" streams the steps to browsers over SSE
and WebSocket; the other commands run locally and print the trace.
`

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	rootCmd := &cobra.Command{
		Use:           "dsviz",
		Short:         "Step-by-step data structure and algorithm visualizer",
		Long:          longRootCmdDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "settings file (default is $HOME/.dsviz/settings.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newRunCmd(),
		newSortCmd(),
		newSearchCmd(),
		newPathCmd(),
		newMCPCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	rootCmd.DisableAutoGenTag = true
	return rootCmd
}

// config loads the layered configuration and applies flag overrides.
func (o *rootOpts) config() (Config, error) {
	cfg, err := loadConfig(viper.New(), o.cfgFile)
	if err != nil {
		return Config{}, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// newLogger writes to stderr at a level that can be changed later.
func newLogger(w io.Writer, level string) (*slog.Logger, *slog.LevelVar) {
	if w == nil {
		w = os.Stderr
	}
	lv := new(slog.LevelVar)
	lv.Set(logging.ParseLevel(level))
	return logging.NewLeveled(w, lv), lv
}
