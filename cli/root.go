// Package cli implements the progressboard command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"progressboard/config"
	"progressboard/logger"
	"progressboard/relayclient"
	"progressboard/store"
)

type rootOptions struct {
	envFile  string
	relayURL string
	cacheDir string
	logLevel string
}

// app carries what every subcommand needs. It is built in PersistentPreRunE.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	client *relayclient.Client
	store  *store.Store
	out    io.Writer
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	root := &cobra.Command{
		Use:   "progressboard",
		Short: "Task progress relay and dashboard",
		Long: `progressboard serves a JSON-file relay for spreadsheet task progress
and reads it back as task lists, statistics and timelines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load")
	root.PersistentFlags().StringVar(&opts.relayURL, "relay", "", "relay base URL (overrides RELAY_URL)")
	root.PersistentFlags().StringVar(&opts.cacheDir, "cache-dir", "", "local cache directory (overrides CACHE_DIR)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		serveCmd(a),
		tasksCmd(a),
		statsCmd(a),
		unitsCmd(a),
		timelineCmd(a),
		configCmd(a),
		refreshCmd(a),
		sampleCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.relayURL != "" {
		cfg.RelayURL = opts.relayURL
	}
	if opts.cacheDir != "" {
		cfg.CacheDir = opts.cacheDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.out = cmd.OutOrStdout()
	a.client = relayclient.New(cfg.RelayURL,
		relayclient.WithTimeout(cfg.RelayTimeout),
		relayclient.WithLogger(logger.Component(log, "relayclient")),
	)
	local := store.NewFileStorage(afero.NewOsFs(), filepath.Clean(cfg.CacheDir))
	a.store = store.New(a.client, local,
		store.WithConfig(cfg.SheetConfig()),
		store.WithLogger(logger.Component(log, "store")),
	)
	return nil
}

// loadTasks fills the store from the relay, or from the built-in sample when
// sample is set. When the relay fails but cached data exists, the cached
// data is used and a warning is printed.
func (a *app) loadTasks(ctx context.Context, sample bool) (store.State, error) {
	if sample {
		return a.store.LoadSampleData(), nil
	}
	restored, err := a.store.Restore()
	if err != nil {
		a.log.WithError(err).Warn("could not read local cache")
	}
	st, err := a.store.LoadTasks(ctx)
	if err == nil {
		return st, nil
	}
	if len(restored.Tasks) > 0 {
		fmt.Fprintf(a.out, "%s %s\n", warnStyle.Render("!"), err)
		fmt.Fprintf(a.out, "showing cached data from %s\n\n", valueOr(restored.SaveTime, "an unknown time"))
		return a.store.ClearError(), nil
	}
	return st, err
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
