package service

import (
	"context"
	"time"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/model"
	"lexfin/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TesoreriaService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearMovimientoRequest) (*dto.MovimientoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarMovimientoRequest) (*dto.MovimientoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	// Balance aggregates the whole ledger, or a single case when expedienteID is set.
	Balance(ctx context.Context, expedienteID *uuid.UUID) (*dto.BalanceResponse, error)
}

type tesoreriaService struct {
	repo         repository.MovimientoRepository
	facturaRepo  repository.FacturaRepository
	rentabilidad RentabilidadService
}

func NewTesoreriaService(
	repo repository.MovimientoRepository,
	facturaRepo repository.FacturaRepository,
	rentabilidad RentabilidadService,
) TesoreriaService {
	return &tesoreriaService{repo: repo, facturaRepo: facturaRepo, rentabilidad: rentabilidad}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *tesoreriaService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearMovimientoRequest) (*dto.MovimientoResponse, error) {
	if !model.CategoriaValida(req.Tipo, req.Categoria) {
		return nil, apierror.Validation("la categoría %q no es válida para movimientos de tipo %q", req.Categoria, req.Tipo)
	}

	fecha := time.Now()
	if req.Fecha != "" {
		f, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			return nil, apierror.Validation("fecha inválida: %s", req.Fecha)
		}
		fecha = f
	}

	estado := req.Estado
	if estado == "" {
		estado = "completado"
	}
	metodo := req.MetodoPago
	if metodo == "" {
		metodo = "transferencia"
	}

	mov := &model.Movimiento{
		Fecha:          fecha,
		Tipo:           req.Tipo,
		Categoria:      req.Categoria,
		Descripcion:    req.Descripcion,
		Monto:          req.Monto,
		Estado:         estado,
		MetodoPago:     metodo,
		ComprobanteRef: req.ComprobanteRef,
		Notas:          req.Notas,
		CreadoPor:      usuarioID,
	}
	if req.ExpedienteID != nil {
		eid, err := uuid.Parse(*req.ExpedienteID)
		if err != nil {
			return nil, apierror.Validation("expediente_id inválido")
		}
		mov.ExpedienteID = &eid
	}
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, apierror.Validation("cliente_id inválido")
		}
		mov.ClienteID = &cid
	}

	if err := s.repo.Create(ctx, mov); err != nil {
		return nil, err
	}

	if mov.ExpedienteID != nil {
		s.rentabilidad.InvalidarSnapshot(ctx, *mov.ExpedienteID)
	}
	return movimientoToResponse(mov), nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Partial update. When the case link changes, the cached snapshots of BOTH the
// old and the new case must be invalidated so the next read recomputes them.

func (s *tesoreriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarMovimientoRequest) (*dto.MovimientoResponse, error) {
	mov, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("movimiento", id.String())
	}

	expedienteAnterior := mov.ExpedienteID

	if req.Fecha != nil {
		f, err := time.Parse("2006-01-02", *req.Fecha)
		if err != nil {
			return nil, apierror.Validation("fecha inválida: %s", *req.Fecha)
		}
		mov.Fecha = f
	}
	if req.Categoria != nil {
		if !model.CategoriaValida(mov.Tipo, *req.Categoria) {
			return nil, apierror.Validation("la categoría %q no es válida para movimientos de tipo %q", *req.Categoria, mov.Tipo)
		}
		mov.Categoria = *req.Categoria
	}
	if req.Descripcion != nil {
		mov.Descripcion = *req.Descripcion
	}
	if req.Monto != nil {
		if !req.Monto.IsPositive() {
			return nil, apierror.Validation("el monto debe ser mayor a cero")
		}
		mov.Monto = *req.Monto
	}
	if req.Estado != nil {
		// Voiding a movement that was already invoiced does NOT retroactively
		// void the invoice; the billing document stands on its own.
		if *req.Estado == "anulado" {
			if factura, err := s.facturaRepo.FindByMovimientoID(ctx, mov.ID); err == nil {
				log.Warn().
					Str("movimiento_id", mov.ID.String()).
					Str("factura", factura.Numero).
					Msg("movimiento anulado con factura asociada — la factura se mantiene")
			}
		}
		mov.Estado = *req.Estado
	}
	if req.ExpedienteID != nil {
		if *req.ExpedienteID == "" {
			mov.ExpedienteID = nil
		} else {
			eid, err := uuid.Parse(*req.ExpedienteID)
			if err != nil {
				return nil, apierror.Validation("expediente_id inválido")
			}
			mov.ExpedienteID = &eid
		}
	}
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, apierror.Validation("cliente_id inválido")
		}
		mov.ClienteID = &cid
	}
	if req.MetodoPago != nil {
		mov.MetodoPago = *req.MetodoPago
	}
	if req.ComprobanteRef != nil {
		mov.ComprobanteRef = req.ComprobanteRef
	}
	if req.Notas != nil {
		mov.Notas = req.Notas
	}

	if err := s.repo.Update(ctx, mov); err != nil {
		return nil, err
	}

	if expedienteAnterior != nil {
		s.rentabilidad.InvalidarSnapshot(ctx, *expedienteAnterior)
	}
	if mov.ExpedienteID != nil && (expedienteAnterior == nil || *mov.ExpedienteID != *expedienteAnterior) {
		s.rentabilidad.InvalidarSnapshot(ctx, *mov.ExpedienteID)
	}
	return movimientoToResponse(mov), nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// Terminal operation: the movement disappears from every aggregate. Refused
// while an invoice still references it — the caller must void the invoice first.

func (s *tesoreriaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	mov, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("movimiento", id.String())
	}

	if factura, err := s.facturaRepo.FindByMovimientoID(ctx, id); err == nil {
		return apierror.Conflict(factura.Estado,
			"el movimiento está facturado (%s) y no puede eliminarse", factura.Numero)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if mov.ExpedienteID != nil {
		s.rentabilidad.InvalidarSnapshot(ctx, *mov.ExpedienteID)
	}
	return nil
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *tesoreriaService) Listar(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		items = append(items, *movimientoToResponse(&movs[i]))
	}
	return &dto.MovimientoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Balance ───────────────────────────────────────────────────────────────────
// income = Σ completed ingresos; expense = Σ completed egresos;
// projected = signed Σ of pending movements; total = income - expense.
// Voided movements never count.

func (s *tesoreriaService) Balance(ctx context.Context, expedienteID *uuid.UUID) (*dto.BalanceResponse, error) {
	sums, err := s.repo.Sums(ctx, expedienteID)
	if err != nil {
		return nil, err
	}
	resp := &dto.BalanceResponse{
		Ingresos:   sums.Ingresos,
		Egresos:    sums.Egresos,
		Proyectado: sums.Proyectado,
		Total:      sums.Ingresos.Sub(sums.Egresos),
	}
	if expedienteID != nil {
		eid := expedienteID.String()
		resp.ExpedienteID = &eid
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func movimientoToResponse(m *model.Movimiento) *dto.MovimientoResponse {
	resp := &dto.MovimientoResponse{
		ID:             m.ID.String(),
		Fecha:          m.Fecha.Format("2006-01-02"),
		Tipo:           m.Tipo,
		Categoria:      m.Categoria,
		Descripcion:    m.Descripcion,
		Monto:          m.Monto,
		Estado:         m.Estado,
		MetodoPago:     m.MetodoPago,
		ComprobanteRef: m.ComprobanteRef,
		Notas:          m.Notas,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      m.UpdatedAt.Format(time.RFC3339),
	}
	if m.ExpedienteID != nil {
		e := m.ExpedienteID.String()
		resp.ExpedienteID = &e
	}
	if m.ClienteID != nil {
		c := m.ClienteID.String()
		resp.ClienteID = &c
	}
	return resp
}
