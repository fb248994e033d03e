package service_test

// Shared in-memory repository stubs for the service tests. The services run
// with nil *gorm.DB handles, so every Tx variant tolerates a nil tx.

import (
	"context"
	"errors"
	"sort"
	"time"

	"lexfin/internal/config"
	"lexfin/internal/dto"
	"lexfin/internal/model"
	"lexfin/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

// ── Movimientos ───────────────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movs map[uuid.UUID]*model.Movimiento
}

func newStubMovimientoRepo() *stubMovimientoRepo {
	return &stubMovimientoRepo{movs: make(map[uuid.UUID]*model.Movimiento)}
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.Movimiento) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.movs[m.ID] = &cp
	return nil
}

func (r *stubMovimientoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Movimiento, error) {
	m, ok := r.movs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMovimientoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Movimiento, error) {
	out := make([]model.Movimiento, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.movs[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) Update(_ context.Context, m *model.Movimiento) error {
	if _, ok := r.movs[m.ID]; !ok {
		return errNotFound
	}
	cp := *m
	r.movs[m.ID] = &cp
	return nil
}

func (r *stubMovimientoRepo) UpdateTx(_ *gorm.DB, m *model.Movimiento) error {
	return r.Update(context.Background(), m)
}

func (r *stubMovimientoRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.movs, id)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	var out []model.Movimiento
	for _, m := range r.movs {
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		if filter.Estado != "" && m.Estado != filter.Estado {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out, int64(len(out)), nil
}

func (r *stubMovimientoRepo) ListByExpediente(_ context.Context, expedienteID uuid.UUID) ([]model.Movimiento, error) {
	var out []model.Movimiento
	for _, m := range r.movs {
		if m.ExpedienteID != nil && *m.ExpedienteID == expedienteID && m.Estado != "anulado" {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *stubMovimientoRepo) ListVinculados(_ context.Context) ([]model.Movimiento, error) {
	var out []model.Movimiento
	for _, m := range r.movs {
		if m.ExpedienteID != nil && m.Estado != "anulado" {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) Sums(_ context.Context, expedienteID *uuid.UUID) (repository.BalanceSums, error) {
	var sums repository.BalanceSums
	for _, m := range r.movs {
		if m.Estado == "anulado" {
			continue
		}
		if expedienteID != nil && (m.ExpedienteID == nil || *m.ExpedienteID != *expedienteID) {
			continue
		}
		switch m.Estado {
		case "completado":
			if m.Tipo == "ingreso" {
				sums.Ingresos = sums.Ingresos.Add(m.Monto)
			} else {
				sums.Egresos = sums.Egresos.Add(m.Monto)
			}
		case "pendiente":
			if m.Tipo == "ingreso" {
				sums.Proyectado = sums.Proyectado.Add(m.Monto)
			} else {
				sums.Proyectado = sums.Proyectado.Sub(m.Monto)
			}
		}
	}
	return sums, nil
}

func (r *stubMovimientoRepo) DB() *gorm.DB { return nil }

var _ repository.MovimientoRepository = (*stubMovimientoRepo)(nil)

// ── Facturas ──────────────────────────────────────────────────────────────────

type stubFacturaRepo struct {
	facturas map[uuid.UUID]*model.Factura
	seqs     map[int]int
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{
		facturas: make(map[uuid.UUID]*model.Factura),
		seqs:     make(map[int]int),
	}
}

func (r *stubFacturaRepo) Create(_ context.Context, _ *gorm.DB, f *model.Factura) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	for i := range f.Items {
		if f.Items[i].ID == uuid.Nil {
			f.Items[i].ID = uuid.New()
		}
	}
	cp := *f
	r.facturas[f.ID] = &cp
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *stubFacturaRepo) FindByMovimientoID(_ context.Context, movimientoID uuid.UUID) (*model.Factura, error) {
	for _, f := range r.facturas {
		if f.MovimientoID != nil && *f.MovimientoID == movimientoID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *stubFacturaRepo) Update(_ context.Context, f *model.Factura) error {
	if _, ok := r.facturas[f.ID]; !ok {
		return errNotFound
	}
	cp := *f
	r.facturas[f.ID] = &cp
	return nil
}

func (r *stubFacturaRepo) UpdateTx(_ *gorm.DB, f *model.Factura) error {
	return r.Update(context.Background(), f)
}

func (r *stubFacturaRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.facturas, id)
	return nil
}

func (r *stubFacturaRepo) List(_ context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	var out []model.Factura
	for _, f := range r.facturas {
		if filter.Estado != "" && filter.Estado != "all" && f.Estado != filter.Estado {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, int64(len(out)), nil
}

func (r *stubFacturaRepo) ListVencidas(_ context.Context, minDias int) ([]model.Factura, error) {
	var out []model.Factura
	for _, f := range r.facturas {
		if f.Estado == "vencida" && f.DiasVencida >= minDias {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *stubFacturaRepo) ListPorVencer(_ context.Context, dias int) ([]model.Factura, error) {
	limite := time.Now().AddDate(0, 0, dias)
	var out []model.Factura
	for _, f := range r.facturas {
		if f.Estado == "emitida" && !f.FechaVencimiento.After(limite) && !f.FechaVencimiento.Before(time.Now()) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *stubFacturaRepo) ListEmitidasVencidas(_ context.Context, ahora time.Time) ([]model.Factura, error) {
	var out []model.Factura
	for _, f := range r.facturas {
		if f.Estado == "emitida" && f.FechaVencimiento.Before(ahora) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *stubFacturaRepo) ListPorEstado(_ context.Context, estado string) ([]model.Factura, error) {
	var out []model.Factura
	for _, f := range r.facturas {
		if f.Estado == estado {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *stubFacturaRepo) NextNumero(_ context.Context, _ *gorm.DB, anio int) (int, error) {
	r.seqs[anio]++
	return r.seqs[anio], nil
}

func (r *stubFacturaRepo) IncrementRecordatorios(_ context.Context, id uuid.UUID) error {
	f, ok := r.facturas[id]
	if !ok {
		return errNotFound
	}
	f.RecordatoriosEnviados++
	return nil
}

func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

// ── Planes de pago ────────────────────────────────────────────────────────────

type stubPlanPagoRepo struct {
	planes map[uuid.UUID]*model.PlanDePago
}

func newStubPlanPagoRepo() *stubPlanPagoRepo {
	return &stubPlanPagoRepo{planes: make(map[uuid.UUID]*model.PlanDePago)}
}

func (r *stubPlanPagoRepo) CreateTx(_ *gorm.DB, p *model.PlanDePago) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Cuotas {
		if p.Cuotas[i].ID == uuid.Nil {
			p.Cuotas[i].ID = uuid.New()
		}
		p.Cuotas[i].PlanDePagoID = p.ID
	}
	cp := clonePlan(p)
	r.planes[p.ID] = cp
	return nil
}

func (r *stubPlanPagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PlanDePago, error) {
	p, ok := r.planes[id]
	if !ok {
		return nil, errNotFound
	}
	return clonePlan(p), nil
}

func (r *stubPlanPagoRepo) FindByFacturaID(_ context.Context, facturaID uuid.UUID) (*model.PlanDePago, error) {
	for _, p := range r.planes {
		if p.FacturaID == facturaID {
			return clonePlan(p), nil
		}
	}
	return nil, errNotFound
}

func (r *stubPlanPagoRepo) Update(_ context.Context, p *model.PlanDePago) error {
	if _, ok := r.planes[p.ID]; !ok {
		return errNotFound
	}
	r.planes[p.ID] = clonePlan(p)
	return nil
}

func (r *stubPlanPagoRepo) UpdateTx(_ *gorm.DB, p *model.PlanDePago) error {
	stored, ok := r.planes[p.ID]
	if !ok {
		return errNotFound
	}
	cuotas := stored.Cuotas // UpdateTx omits cuotas, as the real repo does
	r.planes[p.ID] = clonePlan(p)
	r.planes[p.ID].Cuotas = cuotas
	return nil
}

func (r *stubPlanPagoRepo) UpdateCuotaTx(_ *gorm.DB, c *model.Cuota) error {
	return r.UpdateCuota(context.Background(), c)
}

func (r *stubPlanPagoRepo) UpdateCuota(_ context.Context, c *model.Cuota) error {
	p, ok := r.planes[c.PlanDePagoID]
	if !ok {
		return errNotFound
	}
	for i := range p.Cuotas {
		if p.Cuotas[i].ID == c.ID {
			p.Cuotas[i] = *c
			return nil
		}
	}
	return errNotFound
}

func (r *stubPlanPagoRepo) ListActivos(_ context.Context) ([]model.PlanDePago, error) {
	var out []model.PlanDePago
	for _, p := range r.planes {
		if p.Estado == "activo" {
			out = append(out, *clonePlan(p))
		}
	}
	return out, nil
}

func (r *stubPlanPagoRepo) DB() *gorm.DB { return nil }

func clonePlan(p *model.PlanDePago) *model.PlanDePago {
	cp := *p
	cp.Cuotas = make([]model.Cuota, len(p.Cuotas))
	copy(cp.Cuotas, p.Cuotas)
	return &cp
}

var _ repository.PlanPagoRepository = (*stubPlanPagoRepo)(nil)

// ── Recordatorios ─────────────────────────────────────────────────────────────

type stubRecordatorioRepo struct {
	recs []model.Recordatorio
}

func (r *stubRecordatorioRepo) Create(_ context.Context, rec *model.Recordatorio) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.recs = append(r.recs, *rec)
	return nil
}

func (r *stubRecordatorioRepo) ListByFactura(_ context.Context, facturaID uuid.UUID) ([]model.Recordatorio, error) {
	var out []model.Recordatorio
	for _, rec := range r.recs {
		if rec.FacturaID == facturaID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *stubRecordatorioRepo) UpdateEstado(_ context.Context, id uuid.UUID, estado string) error {
	for i := range r.recs {
		if r.recs[i].ID == id {
			r.recs[i].Estado = estado
			return nil
		}
	}
	return errNotFound
}

var _ repository.RecordatorioRepository = (*stubRecordatorioRepo)(nil)

// ── Expedientes y clientes ────────────────────────────────────────────────────

type stubExpedienteRepo struct {
	exps map[uuid.UUID]*model.Expediente
}

func newStubExpedienteRepo() *stubExpedienteRepo {
	return &stubExpedienteRepo{exps: make(map[uuid.UUID]*model.Expediente)}
}

func (r *stubExpedienteRepo) Create(_ context.Context, e *model.Expediente) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	r.exps[e.ID] = &cp
	return nil
}

func (r *stubExpedienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expediente, error) {
	e, ok := r.exps[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubExpedienteRepo) ListAll(_ context.Context) ([]model.Expediente, error) {
	out := make([]model.Expediente, 0, len(r.exps))
	for _, e := range r.exps {
		out = append(out, *e)
	}
	return out, nil
}

var _ repository.ExpedienteRepository = (*stubExpedienteRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	return &cp, nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{IVADefault: 21.0, DiasVencimientoFactura: 30}
}

func seedCliente(repo *stubClienteRepo) *model.Cliente {
	email := "cliente@ejemplo.com"
	tel := "+54 11 5555-0000"
	c := &model.Cliente{Nombre: "Cliente Demo", Email: &email, Telefono: &tel}
	_ = repo.Create(context.Background(), c)
	return c
}

func seedMovimiento(repo *stubMovimientoRepo, tipo, categoria, estado string, monto int64, expedienteID, clienteID *uuid.UUID) *model.Movimiento {
	m := &model.Movimiento{
		Fecha:        time.Now().AddDate(0, 0, -1),
		Tipo:         tipo,
		Categoria:    categoria,
		Descripcion:  "movimiento de prueba",
		Monto:        decimal.NewFromInt(monto),
		Estado:       estado,
		MetodoPago:   "transferencia",
		ExpedienteID: expedienteID,
		ClienteID:    clienteID,
		CreadoPor:    uuid.New(),
	}
	_ = repo.Create(context.Background(), m)
	return m
}
