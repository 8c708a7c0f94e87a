package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/scholarsite/internal/server"
	"github.com/dgallion1/scholarsite/internal/site"
	"github.com/dgallion1/scholarsite/internal/watch"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the site and serve it, rebuilding on change",
	Long: `Build the site, serve it over HTTP and rebuild whenever a file in the
content directory changes. A failed rebuild keeps the previous build online.

The server also provides:
  - /health            - readiness and the current build
  - /api/builds        - recent builds; POST to rebuild now
  - /api/stats/render  - post render latency

Examples:
  scholarsite serve                   # Serve ./content on port 8090
  scholarsite serve --port 3000       # Serve on a custom port
  scholarsite serve --drafts          # Include draft posts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default: 8090)")
}

func serve(ctx context.Context) error {
	builder, err := newBuilder(cfg)
	if err != nil {
		return err
	}
	holder := &site.Holder{}
	if _, err := holder.Rebuild(ctx, builder); err != nil {
		// Serve the 503 page until the next change rebuilds.
		log.Error("initial build failed", "error", err)
	}

	rebuild := func(ctx context.Context, paths []string) {
		log.Info("content changed, rebuilding", "paths", paths)
		if _, err := holder.Rebuild(ctx, builder); err != nil {
			log.Error("rebuild failed", "error", err)
		}
	}
	watcher, err := watch.New(cfg.ContentDir, cfg.Debounce, rebuild, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewServer(holder, builder, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})
	g.Go(func() error {
		builder.Builds().Run(ctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		log.Info("starting scholarsite", "port", cfg.Port, "content", cfg.ContentDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
