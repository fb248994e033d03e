package service

import (
	"context"
	"time"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/model"
	"lexfin/internal/repository"
	"lexfin/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecordatorioService is the dunning log: it records every payment reminder
// against an invoice and hands delivery off to the async worker pool. The
// reminder row is written synchronously so the audit trail never depends on
// the delivery channel being up.
type RecordatorioService interface {
	Enviar(ctx context.Context, facturaID uuid.UUID, req dto.EnviarRecordatorioRequest) (*dto.RecordatorioResponse, error)
	ListarPorFactura(ctx context.Context, facturaID uuid.UUID) ([]dto.RecordatorioResponse, error)
	// CandidatasPorVencer lists open invoices due within the window (default 7 days).
	CandidatasPorVencer(ctx context.Context, dias int) ([]dto.FacturaResponse, error)
	// CandidatasVencidas lists invoices overdue by at least minDias days.
	CandidatasVencidas(ctx context.Context, minDias int) ([]dto.FacturaResponse, error)
}

type recordatorioService struct {
	repo        repository.RecordatorioRepository
	facturaRepo repository.FacturaRepository
	clienteRepo repository.ClienteRepository
	facturas    FacturaService
	dispatcher  *worker.Dispatcher
}

func NewRecordatorioService(
	repo repository.RecordatorioRepository,
	facturaRepo repository.FacturaRepository,
	clienteRepo repository.ClienteRepository,
	facturas FacturaService,
	dispatcher *worker.Dispatcher,
) RecordatorioService {
	return &recordatorioService{
		repo:        repo,
		facturaRepo: facturaRepo,
		clienteRepo: clienteRepo,
		facturas:    facturas,
		dispatcher:  dispatcher,
	}
}

// ── Enviar ────────────────────────────────────────────────────────────────────
// Only open invoices (emitida, vencida) admit reminders; dunning a draft,
// a paid or a voided invoice is a state conflict.

func (s *recordatorioService) Enviar(ctx context.Context, facturaID uuid.UUID, req dto.EnviarRecordatorioRequest) (*dto.RecordatorioResponse, error) {
	factura, err := s.facturaRepo.FindByID(ctx, facturaID)
	if err != nil {
		return nil, apierror.NotFound("factura", facturaID.String())
	}
	if factura.Estado != "emitida" && factura.Estado != "vencida" {
		return nil, apierror.Conflict(factura.Estado,
			"solo facturas emitidas o vencidas admiten recordatorios")
	}

	cliente, err := s.clienteRepo.FindByID(ctx, factura.ClienteID)
	if err != nil {
		return nil, apierror.NotFound("cliente", factura.ClienteID.String())
	}

	rec := &model.Recordatorio{
		FacturaID: facturaID,
		Canal:     req.Canal,
		Estado:    "enviado",
		Mensaje:   req.Mensaje,
		EnviadoAt: time.Now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.facturaRepo.IncrementRecordatorios(ctx, facturaID); err != nil {
		log.Warn().Err(err).
			Str("factura", factura.Numero).
			Msg("recordatorios: no se pudo incrementar el contador")
	}

	// Delivery is fire-and-forget: the log entry stands even if the queue
	// is unreachable, with the estado flip handled by the worker.
	if s.dispatcher != nil {
		job := worker.RecordatorioJobPayload{
			RecordatorioID: rec.ID.String(),
			FacturaID:      facturaID.String(),
			NumeroFactura:  factura.Numero,
			Canal:          req.Canal,
			Mensaje:        req.Mensaje,
			Email:          cliente.Email,
			Telefono:       cliente.Telefono,
		}
		if err := s.dispatcher.EnqueueRecordatorio(ctx, job); err != nil {
			log.Error().Err(err).
				Str("factura", factura.Numero).
				Str("canal", req.Canal).
				Msg("recordatorios: no se pudo encolar la entrega")
		}
	}

	return recordatorioToResponse(rec), nil
}

// ── Listados ──────────────────────────────────────────────────────────────────

func (s *recordatorioService) ListarPorFactura(ctx context.Context, facturaID uuid.UUID) ([]dto.RecordatorioResponse, error) {
	if _, err := s.facturaRepo.FindByID(ctx, facturaID); err != nil {
		return nil, apierror.NotFound("factura", facturaID.String())
	}
	recs, err := s.repo.ListByFactura(ctx, facturaID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RecordatorioResponse, 0, len(recs))
	for i := range recs {
		resp = append(resp, *recordatorioToResponse(&recs[i]))
	}
	return resp, nil
}

func (s *recordatorioService) CandidatasPorVencer(ctx context.Context, dias int) ([]dto.FacturaResponse, error) {
	if dias < 1 {
		dias = 7
	}
	return s.facturas.ListarPorVencer(ctx, dias)
}

func (s *recordatorioService) CandidatasVencidas(ctx context.Context, minDias int) ([]dto.FacturaResponse, error) {
	if minDias < 0 {
		minDias = 0
	}
	return s.facturas.ListarVencidas(ctx, minDias)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func recordatorioToResponse(r *model.Recordatorio) *dto.RecordatorioResponse {
	return &dto.RecordatorioResponse{
		ID:        r.ID.String(),
		FacturaID: r.FacturaID.String(),
		Canal:     r.Canal,
		Estado:    r.Estado,
		Mensaje:   r.Mensaje,
		EnviadoAt: r.EnviadoAt.Format(time.RFC3339),
	}
}
