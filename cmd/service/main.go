package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/rainfall-xml-service/internal/config"
	"github.com/kjstillabower/rainfall-xml-service/internal/dataset"
	httphandler "github.com/kjstillabower/rainfall-xml-service/internal/http"
	"github.com/kjstillabower/rainfall-xml-service/internal/lifecycle"
	"github.com/kjstillabower/rainfall-xml-service/internal/observability"
	"github.com/kjstillabower/rainfall-xml-service/internal/service"
)

func main() {
	cfg, err := config.LoadWithUsage(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	feed := service.NewFeedService(dataset.NewFileLoader(cfg.InputPath))
	handler := httphandler.NewHandler(feed, &httphandler.HealthConfig{
		InputPath:        cfg.InputPath,
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
	}, logger)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		logger.Info("rate limiter enabled", zap.Int("rps", cfg.RateLimitRPS), zap.Int("burst", cfg.RateLimitBurst))
	}
	observability.RegisterTrafficGauges(cfg.DegradedWindow)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httphandler.NewFeedRouter(handler, logger, limiter, cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var adminSrv *http.Server
	if cfg.AdminAddr != "" {
		adminSrv = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           httphandler.NewAdminRouter(handler, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("admin server starting", zap.String("addr", cfg.AdminAddr))
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("admin server", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr()),
			zap.String("input", cfg.InputPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()
	lifecycle.SetPhase(lifecycle.Serving)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetPhase(lifecycle.Draining)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if adminSrv != nil {
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("admin server shutdown", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
