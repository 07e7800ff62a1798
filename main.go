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

	subscriber "orderhub/internal/adapters/primary/redis"
	"orderhub/internal/adapters/primary/rest"
	"orderhub/internal/adapters/primary/ws"
	"orderhub/internal/adapters/secondary/broadcaster"
	kafkapublisher "orderhub/internal/adapters/secondary/kafka"
	"orderhub/internal/adapters/secondary/postgres"
	"orderhub/internal/adapters/secondary/qr"
	"orderhub/internal/adapters/secondary/store"
	"orderhub/internal/domain"
	"orderhub/internal/infrastructure/config"
	infrakafka "orderhub/internal/infrastructure/kafka"
	"orderhub/internal/infrastructure/log"
	infrapostgres "orderhub/internal/infrastructure/postgres"
	"orderhub/internal/infrastructure/redis"
	"orderhub/internal/infrastructure/runner"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sig
		slog.DebugContext(ctx, "received signal, initiating shutdown")
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "error running server", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log.Config(ctx, cfg.LogLevel)

	db, err := infrapostgres.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres.Open: %w", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(cfg.RedisAddr)
	defer redisClient.Close()

	orderStore := postgres.NewOrderStore(db)
	registry := store.NewMemoryRegistry()

	opts := []domain.HubOption{
		domain.WithBroadcaster(broadcaster.NewBroadcaster(redisClient), cfg.EventsChannel),
	}

	if cfg.KafkaBroker != "" {
		writer := infrakafka.NewWriter(cfg.KafkaBroker, cfg.KafkaTopic)
		defer writer.Close()

		opts = append(opts, domain.WithAuditPublisher(kafkapublisher.NewPublisher(writer)))
	}

	hub := domain.NewHub(registry, orderStore, opts...)

	restHandler := rest.NewHandler(hub, qr.NewGenerator(cfg.QRBaseURL))

	httpMux := http.NewServeMux()
	httpMux.Handle("/ws", ws.NewHandler(hub, cfg.AllowedOrigins))
	httpMux.Handle("/", rest.NewRouter(restHandler, cfg.AllowedOrigins))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpMux,
	}

	r := runner.New(ctx)
	r.Go(func() error {
		errCh := make(chan error, 1)

		go func() {
			slog.InfoContext(ctx, "starting server", "address", cfg.HTTPAddr)

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("srv.ListenAndServe: %w", err)
				return
			}

			errCh <- nil
		}()

		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "context done, stopping server")
			return ctx.Err()
		case err := <-errCh:
			return err
		}
	})

	r.Go(func() error {
		sub := subscriber.NewSubscriber(redisClient, hub)
		errCh := make(chan error, 1)

		go func() {
			errCh <- sub.Subscribe(ctx, cfg.EventsChannel)
		}()

		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "context done, stopping subscriber")
			return ctx.Err()
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("sub.Subscribe: %w", err)
			}
		}

		return nil
	})

	if err := r.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("runner.Wait: %w", err)
	}

	slog.DebugContext(ctx, "initiating server shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := hub.Close(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "error closing hub", "error", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	return nil
}
