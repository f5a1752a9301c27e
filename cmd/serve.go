package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"colorizer/internal/api"
	"colorizer/internal/client"
	"colorizer/internal/config"
	frontui "colorizer/internal/front/ui"
	"colorizer/internal/transport"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the colorizer page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return serve(cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func serve(cfg config.Config) error {
	tc, err := transport.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	backend, err := url.Parse(tc.BaseURL())
	if err != nil {
		return err
	}

	view := frontui.NewView()
	c, err := client.New(clientOptions(cfg, view, tc))
	if err != nil {
		return err
	}
	ui, err := frontui.NewUI(c, view, frontui.Options{UploadDir: cfg.UploadDir, Backend: backend})
	if err != nil {
		return fmt.Errorf("build ui: %w", err)
	}

	router := setupRouter()
	ui.RegisterRoutes(router)

	baseCtx, baseCancel := context.WithCancel(context.Background())
	loopDone := make(chan error, 1)
	go func() { loopDone <- c.Run(baseCtx) }()

	srv := newHTTPServer(cfg.Port, router, readHeaderTimeout)
	go func() {
		log.Info().Int("port", cfg.Port).Str("backend", tc.BaseURL()).Msg("serving colorizer")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdownSignal()
	gracefulShutdown(srv, baseCancel, loopDone, shutdownTimeout)
	ui.Cleanup()
	return nil
}

func setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.ZerologLogger("/", "/processed/*name"))
	return r
}

func newHTTPServer(port int, handler http.Handler, readHeaderTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func waitForShutdownSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")
}

func gracefulShutdown(srv *http.Server, cancelLoop context.CancelFunc, loopDone <-chan error, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown warning")
	}

	cancelLoop()
	select {
	case err := <-loopDone:
		if err != nil {
			log.Warn().Err(err).Msg("client loop stopped with error")
		}
	case <-ctx.Done():
		log.Warn().Msg("client loop did not stop before timeout")
	}
	log.Info().Msg("server exited cleanly")
}
