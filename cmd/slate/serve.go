package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/slate/internal/config"
	"github.com/vango-dev/slate/internal/dev"
	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/internal/server"
)

type serveOptions struct {
	dir   string
	host  string
	port  int
	watch bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered templates over HTTP",
		Long: `Serve the project's templates. Settings come from slate.yaml when the
working directory is inside a project; flags override them.

With --watch, template changes are recompiled and connected browsers
reload. Render and compile errors show in an overlay.

Examples:
  slate serve
  slate serve --dir templates --watch
  slate serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Template directory (default from slate.yaml)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from slate.yaml)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to run on (default from slate.yaml)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild and reload browsers on change")

	return cmd
}

// loadConfig loads slate.yaml, or the defaults relative to the working
// directory outside a project.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromWorkingDir()
	if errors.HasCode(err, errors.CodeNotProject) {
		return config.New(), nil
	}
	return cfg, err
}

func runServe(opts serveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.dir != "" {
		cfg.Paths.Templates = opts.dir
		cfg.Dev.Watch = nil
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	var reload *dev.ReloadServer
	watching := opts.watch && cfg.Dev.HotReload
	if watching && cfg.Source.Kind == config.SourceS3 {
		warn("--watch has no effect on S3 sources")
		watching = false
	}
	if watching {
		reload = dev.NewReloadServer()
		defer reload.Close()
	}

	srv := server.New(server.Options{
		Config: cfg,
		Logger: logger,
		Reload: reload,
	})
	if err := srv.Reload(ctx); err != nil {
		return err
	}

	printBanner()
	success("Serving %s", cfg.TemplatesPath())
	info("Local: %s", cfg.URL())
	if cfg.Metrics.Enabled {
		info("Metrics: %s%s", cfg.URL(), cfg.Metrics.Path)
	}
	fmt.Println()

	if watching {
		session := &dev.Session{
			Watcher: dev.NewWatcher(dev.WatcherConfig{
				Paths:    cfg.WatchPaths(),
				Debounce: cfg.DebounceDuration(),
				Logger:   logger,
			}),
			Reload:  reload,
			Rebuild: srv.Reload,
			Logger:  logger,
		}
		go func() {
			if err := session.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("watcher stopped", "error", err)
			}
		}()
		info("Watching %v", cfg.WatchPaths())
	}

	return srv.ListenAndServe(ctx)
}
