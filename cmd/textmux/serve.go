package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/textmux/internal/botconfig"
	"github.com/vango-dev/textmux/internal/demo"
	"github.com/vango-dev/textmux/pkg/command"
	"github.com/vango-dev/textmux/pkg/dispatch"
	"github.com/vango-dev/textmux/pkg/gateway"
	"github.com/vango-dev/textmux/pkg/middleware"
	"github.com/vango-dev/textmux/pkg/router"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		listen     string
		prefix     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/WebSocket gateway",
		Long: `Start the gateway serving the demo router.

Endpoints:
  GET  /routers                  list routers
  GET  /routers/{id}/routes      list routes with docs
  POST /routers/{id}/routes      re-enable a route
  DELETE /routers/{id}/routes    disable a route
  POST /dispatch                 run one line of text
  GET  /ws                       dispatch text frames over WebSocket
  GET  /healthz, GET /metrics

Examples:
  textmux serve
  textmux serve --listen=0.0.0.0:7400
  textmux serve --prefix='!'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, listen, prefix)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to textmux.json")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from textmux.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Required command prefix")

	return cmd
}

func runServe(configPath, listen, prefix string) error {
	cfg, err := botconfig.Load(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if prefix != "" {
		cfg.Prefix = prefix
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store := router.NewStore(router.WithLogger(logger))
	cmds, err := demo.Load(store)
	if err != nil {
		return err
	}
	defs := map[string][]command.Command{demo.RouterID: cmds}

	for id, paths := range cfg.Disabled {
		routerDefs, ok := defs[id]
		if !ok {
			logger.Warn("disabled routes name unknown router", "router", id)
			continue
		}
		for _, path := range paths {
			if err := store.UnloadRoute(id, path, routerDefs); err != nil {
				return fmt.Errorf("disabling %s on router %s: %w", path, id, err)
			}
		}
	}

	observers := []dispatch.Observer{middleware.Logger(logger)}
	if cfg.Metrics {
		observers = append(observers, middleware.Prometheus())
	}
	if cfg.Tracing {
		observers = append(observers, middleware.OpenTelemetry())
	}

	d := dispatch.New(store,
		dispatch.WithPrefix(cfg.Prefix),
		dispatch.WithLogger(logger),
		dispatch.WithObservers(observers...),
	)

	g := gateway.New(d,
		gateway.WithLogger(logger),
		gateway.WithDefaultRouter(cfg.DefaultRouter),
		gateway.WithDefinitions(defs),
	)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", cfg.Listen, "router", cfg.DefaultRouter)
		errCh <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
