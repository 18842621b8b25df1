package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// options holds the global flags
type options struct {
	configPath string
	endpoint   string
	org        string
	route      string
	timeout    time.Duration
	verbose    bool
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskboard/config.yaml)")
	fs.StringVar(&o.endpoint, "endpoint", "", "GraphQL endpoint URL")
	fs.StringVar(&o.org, "org", "", "organization slug for this run")
	fs.StringVar(&o.route, "route", "", "route to open, e.g. /tasks or /projects/<id> (default: last visited)")
	fs.DurationVar(&o.timeout, "timeout", 0, "per-request timeout, 0 for none")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log every operation")
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Terminal client for the project and task tracker",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	bindFlags(root.PersistentFlags(), opts)

	root.AddCommand(orgCmd(opts))
	root.AddCommand(configCmd(opts))
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskboard %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(o *options) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.endpoint != "" {
		cfg.Endpoint = o.endpoint
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	if cfg.DataDir == "" {
		if cfg.DataDir, err = db.DefaultDataDir(); err != nil {
			return cfg, err
		}
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "taskboard.log")
	}
	return cfg, nil
}

// newLogger opens the log file. The terminal belongs to the UI.
func newLogger(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func runTUI(ctx context.Context, o *options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	log, closer, err := newLogger(cfg.LogFile, o.verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	// Initialize database
	store, err := db.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer store.Close()

	slug, err := config.ResolveOrganizationSlug(o.org, cfg, store)
	if err != nil {
		return fmt.Errorf("resolving organization: %w", err)
	}

	client, err := api.New(api.Options{
		Endpoint:         cfg.Endpoint,
		OrganizationSlug: slug,
		HTTPClient:       &http.Client{Timeout: cfg.Timeout},
		Logger:           log,
	})
	if err != nil {
		return err
	}

	log.Info("starting",
		slog.String("version", version),
		slog.String("endpoint", client.Endpoint()),
		slog.String("organization", slug),
	)

	// Create and run the application
	app := ui.NewApp(ctx, client, store, log, o.route)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
