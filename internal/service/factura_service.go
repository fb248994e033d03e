package service

import (
	"context"
	"fmt"
	"time"

	"lexfin/internal/apierror"
	"lexfin/internal/config"
	"lexfin/internal/dto"
	"lexfin/internal/infra"
	"lexfin/internal/model"
	"lexfin/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FacturaService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearFacturaRequest) (*dto.FacturaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
	// GenerarDesdeMovimiento is idempotent by movement: a second call for the
	// same income movement returns the already-created invoice.
	GenerarDesdeMovimiento(ctx context.Context, usuarioID, movimientoID uuid.UUID) (*dto.FacturaResponse, error)
	GenerarDesdeMovimientos(ctx context.Context, usuarioID uuid.UUID, movimientoIDs []uuid.UUID) (*dto.FacturaResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, nuevoEstado string) (*dto.FacturaResponse, error)
	// RecomputarVencidas transitions overdue emitida invoices to vencida and
	// refreshes dias_vencida; pull-based, invoked on list paths and by the cron.
	RecomputarVencidas(ctx context.Context) (int, error)
	Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error)
	ListarVencidas(ctx context.Context, minDias int) ([]dto.FacturaResponse, error)
	ListarPorVencer(ctx context.Context, dias int) ([]dto.FacturaResponse, error)
	GenerarPDF(ctx context.Context, id uuid.UUID) (string, error)
}

// transicionesFactura encodes the invoice state machine. Absent target = rejected.
// pagada and anulada are terminal.
var transicionesFactura = map[string][]string{
	"borrador": {"emitida", "anulada"},
	"emitida":  {"pagada", "vencida", "anulada"},
	"vencida":  {"pagada", "anulada"},
	"pagada":   {},
	"anulada":  {},
}

func transicionValida(desde, hacia string) bool {
	for _, t := range transicionesFactura[desde] {
		if t == hacia {
			return true
		}
	}
	return false
}

type facturaService struct {
	repo        repository.FacturaRepository
	movRepo     repository.MovimientoRepository
	clienteRepo repository.ClienteRepository
	cfg         *config.Config
}

func NewFacturaService(
	repo repository.FacturaRepository,
	movRepo repository.MovimientoRepository,
	clienteRepo repository.ClienteRepository,
	cfg *config.Config,
) FacturaService {
	return &facturaService{repo: repo, movRepo: movRepo, clienteRepo: clienteRepo, cfg: cfg}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *facturaService) ivaDefault() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.IVADefault)
}

func (s *facturaService) diasVencimiento() int {
	if s.cfg.DiasVencimientoFactura > 0 {
		return s.cfg.DiasVencimientoFactura
	}
	return 30
}

// calcularTotales recomputes subtotal / IVA / total from the line items,
// rounding each line to 2 decimals. Client-supplied totals are never trusted.
func calcularTotales(items []model.FacturaItem) (subtotal, iva, total decimal.Decimal) {
	cien := decimal.NewFromInt(100)
	for i := range items {
		lineaNeta := items[i].Cantidad.Mul(items[i].PrecioUnitario).Round(2)
		items[i].Subtotal = lineaNeta
		subtotal = subtotal.Add(lineaNeta)
		iva = iva.Add(lineaNeta.Mul(items[i].AlicuotaIVA).Div(cien).Round(2))
	}
	total = subtotal.Add(iva)
	return subtotal, iva, total
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *facturaService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearFacturaRequest) (*dto.FacturaResponse, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validation("la factura debe tener al menos un ítem")
	}
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, apierror.Validation("cliente_id inválido")
	}
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return nil, apierror.NotFound("cliente", req.ClienteID)
	}

	fechaEmision := time.Now()
	if req.FechaEmision != "" {
		if f, err := time.Parse("2006-01-02", req.FechaEmision); err == nil {
			fechaEmision = f
		}
	}
	fechaVencimiento := fechaEmision.AddDate(0, 0, s.diasVencimiento())
	if req.FechaVencimiento != "" {
		if f, err := time.Parse("2006-01-02", req.FechaVencimiento); err == nil {
			fechaVencimiento = f
		}
	}

	items := make([]model.FacturaItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.FacturaItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			AlicuotaIVA:    it.AlicuotaIVA,
		})
	}
	subtotal, iva, total := calcularTotales(items)

	estado := req.Estado
	if estado == "" {
		estado = "borrador"
	}

	factura := model.Factura{
		FechaEmision:     fechaEmision,
		FechaVencimiento: fechaVencimiento,
		ClienteID:        clienteID,
		Notas:            req.Notas,
		Subtotal:         subtotal,
		MontoIVA:         iva,
		Total:            total,
		Estado:           estado,
		Items:            items,
		CreadoPor:        usuarioID,
	}
	if req.ExpedienteID != nil {
		eid, err := uuid.Parse(*req.ExpedienteID)
		if err != nil {
			return nil, apierror.Validation("expediente_id inválido")
		}
		factura.ExpedienteID = &eid
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx, fechaEmision.Year())
		if err != nil {
			return err
		}
		factura.Numero = formatNumeroFactura(fechaEmision.Year(), numero)
		return s.repo.Create(ctx, tx, &factura)
	})
	if txErr != nil {
		return nil, txErr
	}
	return facturaToResponse(&factura), nil
}

// ── ObtenerPorID ──────────────────────────────────────────────────────────────

func (s *facturaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	factura, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("factura", id.String())
	}
	return facturaToResponse(factura), nil
}

// ── GenerarDesdeMovimiento ────────────────────────────────────────────────────
// Builds a one-line invoice from an income movement. If the movement was
// pendiente it is promoted to completado in the same transaction.

func (s *facturaService) GenerarDesdeMovimiento(ctx context.Context, usuarioID, movimientoID uuid.UUID) (*dto.FacturaResponse, error) {
	mov, err := s.movRepo.FindByID(ctx, movimientoID)
	if err != nil {
		return nil, apierror.NotFound("movimiento", movimientoID.String())
	}

	// Idempotent by movement: return the existing invoice instead of erroring.
	if existente, err := s.repo.FindByMovimientoID(ctx, movimientoID); err == nil {
		return facturaToResponse(existente), nil
	}

	if mov.Tipo != "ingreso" {
		return nil, apierror.Validation("solo se pueden facturar movimientos de ingreso")
	}
	if mov.Estado == "anulado" {
		return nil, apierror.Conflict(mov.Estado, "el movimiento está anulado y no puede facturarse")
	}
	if mov.ClienteID == nil {
		return nil, apierror.Validation("el movimiento no tiene cliente asociado")
	}

	fechaEmision := time.Now()
	estado := "emitida"
	if mov.Estado == "completado" {
		estado = "pagada"
	}

	items := []model.FacturaItem{{
		Descripcion:    mov.Descripcion,
		Cantidad:       decimal.NewFromInt(1),
		PrecioUnitario: mov.Monto,
		AlicuotaIVA:    s.ivaDefault(),
	}}
	subtotal, iva, total := calcularTotales(items)

	movID := mov.ID
	factura := model.Factura{
		FechaEmision:     fechaEmision,
		FechaVencimiento: fechaEmision.AddDate(0, 0, s.diasVencimiento()),
		ClienteID:        *mov.ClienteID,
		Subtotal:         subtotal,
		MontoIVA:         iva,
		Total:            total,
		Estado:           estado,
		MovimientoID:     &movID,
		ExpedienteID:     mov.ExpedienteID,
		Items:            items,
		CreadoPor:        usuarioID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx, fechaEmision.Year())
		if err != nil {
			return err
		}
		factura.Numero = formatNumeroFactura(fechaEmision.Year(), numero)
		if err := s.repo.Create(ctx, tx, &factura); err != nil {
			return err
		}
		if mov.Estado == "pendiente" {
			mov.Estado = "completado"
			return s.movRepo.UpdateTx(tx, mov)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return facturaToResponse(&factura), nil
}

// ── GenerarDesdeMovimientos ───────────────────────────────────────────────────
// One invoice in borrador covering several income movements of one client,
// one line item per movement, due date = latest movement date + 30 days.

func (s *facturaService) GenerarDesdeMovimientos(ctx context.Context, usuarioID uuid.UUID, movimientoIDs []uuid.UUID) (*dto.FacturaResponse, error) {
	if len(movimientoIDs) == 0 {
		return nil, apierror.Validation("se requiere al menos un movimiento")
	}

	movs, err := s.movRepo.FindByIDs(ctx, movimientoIDs)
	if err != nil {
		return nil, err
	}
	if len(movs) != len(movimientoIDs) {
		encontrados := make(map[uuid.UUID]bool, len(movs))
		for _, m := range movs {
			encontrados[m.ID] = true
		}
		for _, id := range movimientoIDs {
			if !encontrados[id] {
				return nil, apierror.NotFound("movimiento", id.String())
			}
		}
	}

	var clienteID *uuid.UUID
	var ultimaFecha time.Time
	items := make([]model.FacturaItem, 0, len(movs))

	for i := range movs {
		m := &movs[i]
		if m.Tipo != "ingreso" {
			return nil, apierror.Validation("el movimiento %s no es un ingreso", m.ID)
		}
		if m.Estado == "anulado" {
			return nil, apierror.Conflict(m.Estado, "el movimiento %s está anulado", m.ID)
		}
		if _, err := s.repo.FindByMovimientoID(ctx, m.ID); err == nil {
			return nil, apierror.Conflict("facturado", "el movimiento %s ya está facturado", m.ID)
		}
		if m.ClienteID == nil {
			return nil, apierror.Validation("el movimiento %s no tiene cliente asociado", m.ID)
		}
		if clienteID == nil {
			clienteID = m.ClienteID
		} else if *clienteID != *m.ClienteID {
			return nil, apierror.Validation("todos los movimientos deben pertenecer al mismo cliente")
		}
		if m.Fecha.After(ultimaFecha) {
			ultimaFecha = m.Fecha
		}
		items = append(items, model.FacturaItem{
			Descripcion:    m.Descripcion,
			Cantidad:       decimal.NewFromInt(1),
			PrecioUnitario: m.Monto,
			AlicuotaIVA:    s.ivaDefault(),
		})
	}

	subtotal, iva, total := calcularTotales(items)
	fechaEmision := time.Now()

	factura := model.Factura{
		FechaEmision:     fechaEmision,
		FechaVencimiento: ultimaFecha.AddDate(0, 0, s.diasVencimiento()),
		ClienteID:        *clienteID,
		Subtotal:         subtotal,
		MontoIVA:         iva,
		Total:            total,
		Estado:           "borrador",
		Items:            items,
		CreadoPor:        usuarioID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx, fechaEmision.Year())
		if err != nil {
			return err
		}
		factura.Numero = formatNumeroFactura(fechaEmision.Year(), numero)
		return s.repo.Create(ctx, tx, &factura)
	})
	if txErr != nil {
		return nil, txErr
	}
	return facturaToResponse(&factura), nil
}

// ── CambiarEstado ─────────────────────────────────────────────────────────────
// Enforces the state machine; paying an invoice also completes its originating
// movement inside the same transaction.

func (s *facturaService) CambiarEstado(ctx context.Context, id uuid.UUID, nuevoEstado string) (*dto.FacturaResponse, error) {
	factura, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("factura", id.String())
	}
	if !transicionValida(factura.Estado, nuevoEstado) {
		return nil, apierror.Conflict(factura.Estado,
			"transición de estado inválida: %s → %s", factura.Estado, nuevoEstado)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		factura.Estado = nuevoEstado
		if nuevoEstado == "vencida" {
			factura.DiasVencida = diasEntre(factura.FechaVencimiento, time.Now())
		}
		if err := s.repo.UpdateTx(tx, factura); err != nil {
			return err
		}
		if nuevoEstado == "pagada" && factura.MovimientoID != nil {
			mov, err := s.movRepo.FindByID(ctx, *factura.MovimientoID)
			if err != nil {
				return apierror.NotFound("movimiento", factura.MovimientoID.String())
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
	return facturaToResponse(factura), nil
}

// ── RecomputarVencidas ────────────────────────────────────────────────────────

func (s *facturaService) RecomputarVencidas(ctx context.Context) (int, error) {
	ahora := time.Now()

	emitidas, err := s.repo.ListEmitidasVencidas(ctx, ahora)
	if err != nil {
		return 0, err
	}
	transicionadas := 0
	for i := range emitidas {
		f := &emitidas[i]
		f.Estado = "vencida"
		f.DiasVencida = diasEntre(f.FechaVencimiento, ahora)
		if err := s.repo.Update(ctx, f); err != nil {
			return transicionadas, err
		}
		transicionadas++
	}

	// Refresh the day counter of invoices already vencida.
	vencidas, err := s.repo.ListPorEstado(ctx, "vencida")
	if err != nil {
		return transicionadas, err
	}
	for i := range vencidas {
		f := &vencidas[i]
		dias := diasEntre(f.FechaVencimiento, ahora)
		if dias != f.DiasVencida {
			f.DiasVencida = dias
			if err := s.repo.Update(ctx, f); err != nil {
				return transicionadas, err
			}
		}
	}
	return transicionadas, nil
}

// ── Listados ──────────────────────────────────────────────────────────────────

func (s *facturaService) Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error) {
	// Overdue detection is pull-based: every listing path recomputes first.
	if _, err := s.RecomputarVencidas(ctx); err != nil {
		log.Warn().Err(err).Msg("facturas: recomputo de vencidas falló antes del listado")
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	facturas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		items = append(items, *facturaToResponse(&facturas[i]))
	}
	return &dto.FacturaListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *facturaService) ListarVencidas(ctx context.Context, minDias int) ([]dto.FacturaResponse, error) {
	if _, err := s.RecomputarVencidas(ctx); err != nil {
		return nil, err
	}
	facturas, err := s.repo.ListVencidas(ctx, minDias)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		resp = append(resp, *facturaToResponse(&facturas[i]))
	}
	return resp, nil
}

func (s *facturaService) ListarPorVencer(ctx context.Context, dias int) ([]dto.FacturaResponse, error) {
	if dias < 1 {
		dias = 7
	}
	if _, err := s.RecomputarVencidas(ctx); err != nil {
		return nil, err
	}
	facturas, err := s.repo.ListPorVencer(ctx, dias)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		resp = append(resp, *facturaToResponse(&facturas[i]))
	}
	return resp, nil
}

// ── GenerarPDF ────────────────────────────────────────────────────────────────

func (s *facturaService) GenerarPDF(ctx context.Context, id uuid.UUID) (string, error) {
	factura, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", apierror.NotFound("factura", id.String())
	}
	cliente, err := s.clienteRepo.FindByID(ctx, factura.ClienteID)
	if err != nil {
		return "", apierror.NotFound("cliente", factura.ClienteID.String())
	}
	return infra.GenerateFacturaPDF(factura, cliente, s.cfg.PDFStoragePath)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func formatNumeroFactura(anio, seq int) string {
	return fmt.Sprintf("F-%d-%03d", anio, seq)
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	items := make([]dto.FacturaItemResponse, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, dto.FacturaItemResponse{
			ID:             it.ID.String(),
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			AlicuotaIVA:    it.AlicuotaIVA,
			Subtotal:       it.Subtotal,
		})
	}
	resp := &dto.FacturaResponse{
		ID:                    f.ID.String(),
		Numero:                f.Numero,
		FechaEmision:          f.FechaEmision.Format("2006-01-02"),
		FechaVencimiento:      f.FechaVencimiento.Format("2006-01-02"),
		ClienteID:             f.ClienteID.String(),
		Items:                 items,
		Notas:                 f.Notas,
		Subtotal:              f.Subtotal,
		MontoIVA:              f.MontoIVA,
		Total:                 f.Total,
		Estado:                f.Estado,
		DiasVencida:           f.DiasVencida,
		RecordatoriosEnviados: f.RecordatoriosEnviados,
		CreatedAt:             f.CreatedAt.Format(time.RFC3339),
	}
	if f.ExpedienteID != nil {
		e := f.ExpedienteID.String()
		resp.ExpedienteID = &e
	}
	if f.MovimientoID != nil {
		m := f.MovimientoID.String()
		resp.MovimientoID = &m
	}
	if f.PlanDePagoID != nil {
		p := f.PlanDePagoID.String()
		resp.PlanDePagoID = &p
	}
	return resp
}
