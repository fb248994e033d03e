package service

import (
	"context"
	"time"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/model"
	"lexfin/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PlanPagoService interface {
	Crear(ctx context.Context, facturaID uuid.UUID, req dto.CrearPlanPagoRequest) (*dto.PlanPagoResponse, error)
	ObtenerPorFactura(ctx context.Context, facturaID uuid.UUID) (*dto.PlanPagoResponse, error)
	PagarCuota(ctx context.Context, planID, cuotaID uuid.UUID) (*dto.PlanPagoResponse, error)
	// BarrerCuotasVencidas marks past-due pending installments of active plans
	// as vencida. Returns how many were flipped; run by the cron.
	BarrerCuotasVencidas(ctx context.Context) (int, error)
}

type planPagoService struct {
	repo        repository.PlanPagoRepository
	facturaRepo repository.FacturaRepository
	movRepo     repository.MovimientoRepository
}

func NewPlanPagoService(
	repo repository.PlanPagoRepository,
	facturaRepo repository.FacturaRepository,
	movRepo repository.MovimientoRepository,
) PlanPagoService {
	return &planPagoService{repo: repo, facturaRepo: facturaRepo, movRepo: movRepo}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// Splits the invoice total into n equal installments rounded to 2 decimals;
// the last one absorbs the remainder so the sum matches the total exactly.
// Due dates run 30, 60, 90... days from creation.

func (s *planPagoService) Crear(ctx context.Context, facturaID uuid.UUID, req dto.CrearPlanPagoRequest) (*dto.PlanPagoResponse, error) {
	if req.CantidadCuotas < 1 || req.CantidadCuotas > 12 {
		return nil, apierror.Validation("la cantidad de cuotas debe estar entre 1 y 12")
	}
	factura, err := s.facturaRepo.FindByID(ctx, facturaID)
	if err != nil {
		return nil, apierror.NotFound("factura", facturaID.String())
	}
	if factura.Estado != "emitida" && factura.Estado != "vencida" {
		return nil, apierror.Conflict(factura.Estado,
			"solo facturas emitidas o vencidas admiten plan de pago")
	}
	if existente, err := s.repo.FindByFacturaID(ctx, facturaID); err == nil {
		return nil, apierror.Conflict(existente.Estado,
			"la factura ya tiene un plan de pago")
	}

	n := req.CantidadCuotas
	cuotas, err := dividirEnCuotas(factura.Total, n, time.Now())
	if err != nil {
		return nil, err
	}

	plan := model.PlanDePago{
		FacturaID:      facturaID,
		FechaCreacion:  time.Now(),
		CantidadCuotas: n,
		Notas:          req.Notas,
		Estado:         "activo",
		Cuotas:         cuotas,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &plan); err != nil {
			return err
		}
		planID := plan.ID
		factura.PlanDePagoID = &planID
		return s.facturaRepo.UpdateTx(tx, factura)
	})
	if txErr != nil {
		return nil, txErr
	}
	return planToResponse(&plan), nil
}

// dividirEnCuotas builds the installment rows. A Consistency error here means
// decimal arithmetic drifted, which must never happen.
func dividirEnCuotas(total decimal.Decimal, n int, desde time.Time) ([]model.Cuota, error) {
	porCuota := total.Div(decimal.NewFromInt(int64(n))).Round(2)

	cuotas := make([]model.Cuota, 0, n)
	acumulado := decimal.Zero
	for i := 1; i <= n; i++ {
		monto := porCuota
		if i == n {
			monto = total.Sub(acumulado)
		}
		acumulado = acumulado.Add(monto)
		cuotas = append(cuotas, model.Cuota{
			Numero:           i,
			Monto:            monto,
			FechaVencimiento: desde.AddDate(0, 0, 30*i),
			Estado:           "pendiente",
		})
	}
	if !acumulado.Equal(total) {
		return nil, apierror.Consistency(
			"la suma de cuotas (%s) no coincide con el total de la factura (%s)",
			acumulado, total)
	}
	return cuotas, nil
}

// ── ObtenerPorFactura ─────────────────────────────────────────────────────────

func (s *planPagoService) ObtenerPorFactura(ctx context.Context, facturaID uuid.UUID) (*dto.PlanPagoResponse, error) {
	plan, err := s.repo.FindByFacturaID(ctx, facturaID)
	if err != nil {
		return nil, apierror.NotFound("plan de pago", facturaID.String())
	}
	return planToResponse(plan), nil
}

// ── PagarCuota ────────────────────────────────────────────────────────────────
// Marks one installment paid. When the last pending installment is paid the
// plan completes and the invoice (plus its source movement, if any) is settled
// in the same transaction.

func (s *planPagoService) PagarCuota(ctx context.Context, planID, cuotaID uuid.UUID) (*dto.PlanPagoResponse, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, apierror.NotFound("plan de pago", planID.String())
	}
	if plan.Estado != "activo" {
		return nil, apierror.Conflict(plan.Estado, "el plan de pago no está activo")
	}

	var cuota *model.Cuota
	for i := range plan.Cuotas {
		if plan.Cuotas[i].ID == cuotaID {
			cuota = &plan.Cuotas[i]
			break
		}
	}
	if cuota == nil {
		return nil, apierror.NotFound("cuota", cuotaID.String())
	}
	if cuota.Estado == "pagada" {
		return nil, apierror.Conflict(cuota.Estado, "la cuota %d ya está pagada", cuota.Numero)
	}

	ahora := time.Now()
	cuota.Estado = "pagada"
	cuota.FechaPago = &ahora

	todasPagadas := true
	for i := range plan.Cuotas {
		if plan.Cuotas[i].Estado != "pagada" {
			todasPagadas = false
			break
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateCuotaTx(tx, cuota); err != nil {
			return err
		}
		if !todasPagadas {
			return nil
		}

		plan.Estado = "completado"
		if err := s.repo.UpdateTx(tx, plan); err != nil {
			return err
		}

		factura, err := s.facturaRepo.FindByID(ctx, plan.FacturaID)
		if err != nil {
			return apierror.Consistency("plan %s sin factura asociada (%s)", plan.ID, plan.FacturaID)
		}
		if factura.Estado == "emitida" || factura.Estado == "vencida" {
			factura.Estado = "pagada"
			if err := s.facturaRepo.UpdateTx(tx, factura); err != nil {
				return err
			}
		}
		if factura.MovimientoID != nil {
			mov, err := s.movRepo.FindByID(ctx, *factura.MovimientoID)
			if err != nil {
				return apierror.Consistency("factura %s referencia un movimiento inexistente", factura.Numero)
			}
			if mov.Estado != "completado" {
				mov.Estado = "completado"
				return s.movRepo.UpdateTx(tx, mov)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return planToResponse(plan), nil
}

// ── BarrerCuotasVencidas ──────────────────────────────────────────────────────

func (s *planPagoService) BarrerCuotasVencidas(ctx context.Context) (int, error) {
	planes, err := s.repo.ListActivos(ctx)
	if err != nil {
		return 0, err
	}
	ahora := time.Now()
	marcadas := 0
	for i := range planes {
		for j := range planes[i].Cuotas {
			c := &planes[i].Cuotas[j]
			if c.Estado == "pendiente" && c.FechaVencimiento.Before(ahora) {
				c.Estado = "vencida"
				if err := s.repo.UpdateCuota(ctx, c); err != nil {
					return marcadas, err
				}
				marcadas++
			}
		}
	}
	return marcadas, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func planToResponse(p *model.PlanDePago) *dto.PlanPagoResponse {
	cuotas := make([]dto.CuotaResponse, 0, len(p.Cuotas))
	for _, c := range p.Cuotas {
		cr := dto.CuotaResponse{
			ID:               c.ID.String(),
			Numero:           c.Numero,
			Monto:            c.Monto,
			FechaVencimiento: c.FechaVencimiento.Format("2006-01-02"),
			Estado:           c.Estado,
		}
		if c.FechaPago != nil {
			f := c.FechaPago.Format("2006-01-02")
			cr.FechaPago = &f
		}
		cuotas = append(cuotas, cr)
	}
	return &dto.PlanPagoResponse{
		ID:             p.ID.String(),
		FacturaID:      p.FacturaID.String(),
		FechaCreacion:  p.FechaCreacion.Format("2006-01-02"),
		CantidadCuotas: p.CantidadCuotas,
		Notas:          p.Notas,
		Estado:         p.Estado,
		Cuotas:         cuotas,
	}
}
