package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/model"
	"lexfin/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const snapshotCacheTTL = 5 * time.Minute

// RentabilidadService derives per-case financial rollups and cross-case cost
// benchmarks from the treasury ledger. All computations are pure functions of
// ledger + case registry state; the Redis cache is only a read accelerator and
// is invalidated by the ledger whenever a movement's case link changes.
type RentabilidadService interface {
	SnapshotExpediente(ctx context.Context, expedienteID uuid.UUID) (*dto.SnapshotExpedienteResponse, error)
	PerfilCostosPorTipo(ctx context.Context) ([]dto.PerfilCostoTipoResponse, error)
	InvalidarSnapshot(ctx context.Context, expedienteID uuid.UUID)
}

type rentabilidadService struct {
	movRepo repository.MovimientoRepository
	expRepo repository.ExpedienteRepository
	rdb     *redis.Client // nil disables caching (unit test mode)
}

func NewRentabilidadService(
	movRepo repository.MovimientoRepository,
	expRepo repository.ExpedienteRepository,
	rdb *redis.Client,
) RentabilidadService {
	return &rentabilidadService{movRepo: movRepo, expRepo: expRepo, rdb: rdb}
}

func snapshotCacheKey(expedienteID uuid.UUID) string {
	return "rentabilidad:snapshot:" + expedienteID.String()
}

// ── SnapshotExpediente ────────────────────────────────────────────────────────
// A case with no financial activity is valid: it yields an all-zero snapshot,
// never an error.

func (s *rentabilidadService) SnapshotExpediente(ctx context.Context, expedienteID uuid.UUID) (*dto.SnapshotExpedienteResponse, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, snapshotCacheKey(expedienteID)).Result(); err == nil {
			var cached dto.SnapshotExpedienteResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	exp, err := s.expRepo.FindByID(ctx, expedienteID)
	if err != nil {
		return nil, apierror.NotFound("expediente", expedienteID.String())
	}

	movs, err := s.movRepo.ListByExpediente(ctx, expedienteID)
	if err != nil {
		// Degrade gracefully: an unreadable ledger yields an empty snapshot
		// rather than failing the whole read path.
		log.Error().Err(err).Str("expediente_id", expedienteID.String()).
			Msg("rentabilidad: no se pudieron leer movimientos, snapshot vacío")
		movs = nil
	}

	snap := buildSnapshot(exp, movs, time.Now())

	if s.rdb != nil {
		if data, err := json.Marshal(snap); err == nil {
			_ = s.rdb.Set(ctx, snapshotCacheKey(expedienteID), data, snapshotCacheTTL).Err()
		}
	}
	return snap, nil
}

// buildSnapshot computes the rollup over non-voided movements. Only completed
// movements add to realized income/expense; pending ones are listed as
// contributors but stay out of the sums.
func buildSnapshot(exp *model.Expediente, movs []model.Movimiento, ahora time.Time) *dto.SnapshotExpedienteResponse {
	ingresos := decimal.Zero
	egresos := decimal.Zero
	ids := make([]string, 0, len(movs))

	for i := range movs {
		m := &movs[i]
		ids = append(ids, m.ID.String())
		if m.Estado != "completado" {
			continue
		}
		if m.Tipo == "ingreso" {
			ingresos = ingresos.Add(m.Monto)
		} else {
			egresos = egresos.Add(m.Monto)
		}
	}

	balance := ingresos.Sub(egresos)

	fin := ahora
	if exp.FechaCierre != nil {
		fin = *exp.FechaCierre
	}
	dias := diasEntre(exp.FechaInicio, fin)

	eficiencia := decimal.Zero
	if dias > 0 {
		eficiencia = balance.Div(decimal.NewFromInt(int64(dias))).Round(2)
	}

	rentabilidad := decimal.Zero
	if egresos.IsPositive() {
		rentabilidad = ingresos.Sub(egresos).Div(egresos).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &dto.SnapshotExpedienteResponse{
		ExpedienteID:      exp.ID.String(),
		Ingresos:          ingresos,
		Egresos:           egresos,
		Balance:           balance,
		MovimientoIDs:     ids,
		RentabilidadPct:   rentabilidad,
		DiasTranscurridos: dias,
		EficienciaDiaria:  eficiencia,
	}
}

// ── PerfilCostosPorTipo ───────────────────────────────────────────────────────
// Groups cases by declared type and averages expense, elapsed days and daily
// efficiency. Cases with zero movements do not dilute the averages.

func (s *rentabilidadService) PerfilCostosPorTipo(ctx context.Context) ([]dto.PerfilCostoTipoResponse, error) {
	expedientes, err := s.expRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	movs, err := s.movRepo.ListVinculados(ctx)
	if err != nil {
		return nil, err
	}

	porExpediente := make(map[uuid.UUID][]model.Movimiento)
	for _, m := range movs {
		porExpediente[*m.ExpedienteID] = append(porExpediente[*m.ExpedienteID], m)
	}

	type acumulador struct {
		cantidad   int
		egresos    decimal.Decimal
		dias       decimal.Decimal
		eficiencia decimal.Decimal
	}
	ahora := time.Now()
	porTipo := make(map[string]*acumulador)

	for i := range expedientes {
		exp := &expedientes[i]
		expMovs, tiene := porExpediente[exp.ID]
		if !tiene || len(expMovs) == 0 {
			continue
		}
		snap := buildSnapshot(exp, expMovs, ahora)

		acc, ok := porTipo[exp.Tipo]
		if !ok {
			acc = &acumulador{}
			porTipo[exp.Tipo] = acc
		}
		acc.cantidad++
		acc.egresos = acc.egresos.Add(snap.Egresos)
		acc.dias = acc.dias.Add(decimal.NewFromInt(int64(snap.DiasTranscurridos)))
		acc.eficiencia = acc.eficiencia.Add(snap.EficienciaDiaria)
	}

	perfiles := make([]dto.PerfilCostoTipoResponse, 0, len(porTipo))
	for tipo, acc := range porTipo {
		n := decimal.NewFromInt(int64(acc.cantidad))
		perfiles = append(perfiles, dto.PerfilCostoTipoResponse{
			Tipo:                tipo,
			CantidadExpedientes: acc.cantidad,
			EgresoPromedio:      acc.egresos.Div(n).Round(2),
			DiasPromedio:        acc.dias.Div(n).Round(2),
			EficienciaPromedio:  acc.eficiencia.Div(n).Round(2),
		})
	}
	sort.Slice(perfiles, func(i, j int) bool { return perfiles[i].Tipo < perfiles[j].Tipo })
	return perfiles, nil
}

// ── InvalidarSnapshot ─────────────────────────────────────────────────────────

func (s *rentabilidadService) InvalidarSnapshot(ctx context.Context, expedienteID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, snapshotCacheKey(expedienteID)).Err(); err != nil {
		log.Warn().Err(err).
			Str("expediente_id", expedienteID.String()).
			Msg("rentabilidad: no se pudo invalidar el snapshot en cache")
	}
}

// diasEntre returns whole days between two instants, never negative.
func diasEntre(desde, hasta time.Time) int {
	if hasta.Before(desde) {
		return 0
	}
	return int(hasta.Sub(desde).Hours() / 24)
}
