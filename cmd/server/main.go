package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexfin/internal/config"
	"lexfin/internal/infra"
	"lexfin/internal/router"
	"lexfin/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SMS deliveries go through the gateway sidecar behind a circuit breaker
	// shared between the worker pool and the health endpoint.
	smsCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	r, deps := router.New(cfg, db, rdb, smsCB)

	// Async reminder delivery pool — handlers wired here (composition root)
	// so the pool has full access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	smsClient := infra.NewSMSClient(cfg.SMSGatewayURL)
	handlers := worker.Handlers{
		Recordatorio: worker.NewRecordatorioWorker(mailer, smsClient, smsCB, deps.RecRepo, rdb),
	}
	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	// Hourly sweep: overdue invoices and past-due installments.
	worker.StartVencimientosCron(ctx, worker.VencimientosCronConfig{
		RecomputarFacturas: deps.Facturas.RecomputarVencidas,
		BarrerCuotas:       deps.PlanesPago.BarrerCuotasVencidas,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("lexfin backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
