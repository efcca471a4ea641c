package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/canonrest/pkg/api"
	"github.com/getmockd/canonrest/pkg/config"
	"github.com/getmockd/canonrest/pkg/logging"
	"github.com/getmockd/canonrest/pkg/repository"
)

// serveFlags holds the serve flags that override the configuration file.
type serveFlags struct {
	configFile string
	addr       string
	logLevel   string
	logFormat  string
	logFile    string
	seedCount  int
	seedPrefix string
	noMetrics  bool
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server in the foreground",
		Long: `Run the HTTP server in the foreground until interrupted.

Settings are read from built-in defaults, then the --config file, then
CANONREST_* environment variables, then flags.

Examples:
  canonrest serve
  canonrest serve --addr :9000 --log-level debug
  canonrest serve --config canonrest.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configFile)
			if err != nil {
				return err
			}
			f.apply(cmd, opts, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, closeLog, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
			}
			return runServer(ctx, cfg, ln, log)
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address (e.g. :8080)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format (text, json)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().IntVar(&f.seedCount, "seed-count", 0, "Number of seeded resources")
	cmd.Flags().StringVar(&f.seedPrefix, "seed-prefix", "", "Data prefix of seeded resources")
	cmd.Flags().BoolVar(&f.noMetrics, "no-metrics", false, "Do not serve operation counters")
	return cmd
}

// apply copies explicitly set flags onto cfg.
func (f *serveFlags) apply(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if flags.Changed("base-path") {
		cfg.Server.BasePath = opts.basePath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = f.logFile
	}
	if flags.Changed("seed-count") {
		cfg.Seed.Count = f.seedCount
	}
	if flags.Changed("seed-prefix") {
		cfg.Seed.Prefix = f.seedPrefix
	}
	if f.noMetrics {
		cfg.Server.Metrics = false
	}
}

// newLogger builds the process logger. The returned func closes the log
// file, if one was opened.
func newLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, func(), error) {
	lc := logging.ParseConfig(cfg.Level, cfg.Format)
	lc.Output = stderr
	if cfg.File == "" {
		return logging.New(lc), func() {}, nil
	}

	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	lc.Tee = file
	return logging.New(lc), func() { _ = file.Close() }, nil
}

// newHandler wires the repository and API described by cfg.
func newHandler(cfg *config.Config, log *slog.Logger) (http.Handler, error) {
	repoOpts := []repository.Option{repository.WithSeed(cfg.Seed.Count, cfg.Seed.Prefix)}
	apiOpts := []api.Option{
		api.WithBasePath(cfg.Server.BasePath),
		api.WithPagination(cfg.Pagination.DefaultTake, cfg.Pagination.MaxTake),
		api.WithMaxBodySize(cfg.Server.MaxBodySize),
		api.WithLogger(log.With("component", "api")),
	}
	if cfg.Server.Metrics {
		metrics := repository.NewMetricsObserver()
		repoOpts = append(repoOpts, repository.WithObserver(metrics))
		apiOpts = append(apiOpts, api.WithMetrics(metrics))
	}

	a, err := api.New(repository.New(repoOpts...), apiOpts...)
	if err != nil {
		return nil, err
	}
	return a.Handler(), nil
}

// runServer serves on ln until ctx is cancelled, then shuts down within
// the configured timeout.
func runServer(ctx context.Context, cfg *config.Config, ln net.Listener, log *slog.Logger) error {
	handler, err := newHandler(cfg, log)
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server started", "addr", ln.Addr().String(), "basePath", cfg.Server.BasePath)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
