package worker

// vencimientos_cron.go
// Background goroutine that periodically recomputes overdue invoices and
// sweeps past-due installments of active payment plans. Overdue detection is
// otherwise pull-based (list endpoints recompute on read); the cron keeps
// day counters fresh even when nobody is looking.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const vencimientosTickInterval = 1 * time.Hour

// VencimientosCronConfig carries the sweep callbacks so the cron does not
// depend on the service layer directly.
type VencimientosCronConfig struct {
	RecomputarFacturas func(ctx context.Context) (int, error)
	BarrerCuotas       func(ctx context.Context) (int, error)
	// Interval overrides the default hourly tick (tests use a short one).
	Interval time.Duration
}

// StartVencimientosCron launches the background sweep goroutine. It runs one
// pass immediately and then on every tick, and respects the context for
// graceful shutdown.
func StartVencimientosCron(ctx context.Context, cfg VencimientosCronConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = vencimientosTickInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Msg("vencimientos_cron: started")
		runSweep(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("vencimientos_cron: shutting down")
				return
			case <-ticker.C:
				runSweep(ctx, cfg)
			}
		}
	}()
}

func runSweep(ctx context.Context, cfg VencimientosCronConfig) {
	if cfg.RecomputarFacturas != nil {
		n, err := cfg.RecomputarFacturas(ctx)
		if err != nil {
			log.Error().Err(err).Msg("vencimientos_cron: recomputo de facturas falló")
		} else if n > 0 {
			log.Info().Int("facturas", n).Msg("vencimientos_cron: facturas marcadas vencidas")
		}
	}
	if cfg.BarrerCuotas != nil {
		n, err := cfg.BarrerCuotas(ctx)
		if err != nil {
			log.Error().Err(err).Msg("vencimientos_cron: barrido de cuotas falló")
		} else if n > 0 {
			log.Info().Int("cuotas", n).Msg("vencimientos_cron: cuotas marcadas vencidas")
		}
	}
}
