package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hfserve/internal/config"
	"hfserve/internal/httpapi"
	"hfserve/internal/manager"
)

const shutdownGrace = 10 * time.Second

// serve starts the HTTP listener, loads the engine and blocks until SIGINT or
// SIGTERM. /healthz and /readyz answer while the engine is loading; a failed
// load stops the server with an error.
func serve(parent context.Context, s config.Settings, logOut io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(s.LogLevel, s.LogFormat, logOut)
	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(s.LogLevel)
	httpapi.SetMaxBodyBytes(s.MaxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(s.GenerateTimeoutSeconds)
	httpapi.SetCORSOptions(s.CORSEnabled,
		config.SplitCSV(s.CORSAllowedOrigins),
		config.SplitCSV(s.CORSAllowedMethods),
		config.SplitCSV(s.CORSAllowedHeaders))
	httpapi.SetBaseContext(ctx)

	mgr := manager.New(manager.Config{Settings: s, Logger: logger})
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Error().Err(err).Msg("engine close")
		}
	}()

	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr(), err)
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Str("backend", s.Backend).Str("model_id", s.ModelID).Msg("hfserve listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	loadErr := mgr.Load(ctx)
	if loadErr == nil {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutdown requested")
		case err := <-srvErr:
			if err != nil {
				loadErr = fmt.Errorf("server error: %w", err)
			}
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	if loadErr != nil && ctx.Err() != nil && errors.Is(loadErr, ctx.Err()) {
		// interrupted while loading
		return nil
	}
	return loadErr
}
