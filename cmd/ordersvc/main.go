// Package main запускает HTTP-сервер сервиса заказов магазина фильмов.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/filmshop-orders/internal/cache"
	"github.com/mmeshcher/filmshop-orders/internal/config"
	"github.com/mmeshcher/filmshop-orders/internal/events"
	"github.com/mmeshcher/filmshop-orders/internal/handler"
	"github.com/mmeshcher/filmshop-orders/internal/middleware"
	"github.com/mmeshcher/filmshop-orders/internal/paypal"
	"github.com/mmeshcher/filmshop-orders/internal/repository"
	"github.com/mmeshcher/filmshop-orders/internal/service"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	var ppOpts []paypal.Option
	if cfg.RedisAddr != "" {
		tokenCache := cache.NewRedisTokenCache(cfg.RedisAddr, cache.TokenKey(cfg.PayPalAPIBase(), cfg.PayPalClientID))
		defer tokenCache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := tokenCache.Ping(pingCtx); err != nil {
			sugar.Warnw("redis unavailable, paypal token cache disabled", "error", err.Error())
		} else {
			ppOpts = append(ppOpts, paypal.WithTokenCache(tokenCache))
		}
		cancel()
	}

	if cfg.PayPalClientID == "" || cfg.PayPalSecret == "" {
		sugar.Warn("paypal credentials are not set, payment verification will fail")
	}

	ppClient := paypal.NewClient(paypal.Config{
		ClientID: cfg.PayPalClientID,
		Secret:   cfg.PayPalSecret,
		BaseURL:  cfg.PayPalAPIBase(),
		Timeout:  cfg.PayPalTimeout,
	}, logger, ppOpts...)

	var publisher service.EventPublisher = events.Nop{}
	if cfg.RabbitURL != "" {
		rabbit, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			sugar.Warnw("rabbitmq unavailable, order events disabled", "error", err.Error())
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	svc := service.NewService(repo, ppClient, logger,
		service.WithPublisher(publisher),
		service.WithCurrency(cfg.PayPalCurrency),
	)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, repo)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting orders server",
			"addr", cfg.RunAddress,
			"env", cfg.Environment,
			"paypalBase", cfg.PayPalAPIBase(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
