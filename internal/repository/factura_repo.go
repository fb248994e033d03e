package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexfin/internal/dto"
	"lexfin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FacturaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	FindByMovimientoID(ctx context.Context, movimientoID uuid.UUID) (*model.Factura, error)
	Update(ctx context.Context, f *model.Factura) error
	UpdateTx(tx *gorm.DB, f *model.Factura) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error)
	// ListVencidas returns invoices in estado vencida with at least minDias days late.
	ListVencidas(ctx context.Context, minDias int) ([]model.Factura, error)
	// ListPorVencer returns emitida invoices whose due date falls within the next N days.
	ListPorVencer(ctx context.Context, dias int) ([]model.Factura, error)
	// ListEmitidasVencidas returns emitida invoices whose due date has already passed.
	ListEmitidasVencidas(ctx context.Context, ahora time.Time) ([]model.Factura, error)
	ListPorEstado(ctx context.Context, estado string) ([]model.Factura, error)
	// NextNumero increments the per-year sequence under a row lock and returns
	// the next number. Must run inside the invoice-creating transaction.
	NextNumero(ctx context.Context, tx *gorm.DB, anio int) (int, error)
	IncrementRecordatorios(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) DB() *gorm.DB { return r.db }

func (r *facturaRepo) Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error {
	return tx.WithContext(ctx).Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Items").First(&f, id).Error
	return &f, err
}

func (r *facturaRepo) FindByMovimientoID(ctx context.Context, movimientoID uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Items").
		Where("movimiento_id = ?", movimientoID).First(&f).Error
	return &f, err
}

func (r *facturaRepo) Update(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *facturaRepo) UpdateTx(tx *gorm.DB, f *model.Factura) error {
	return tx.Save(f).Error
}

func (r *facturaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&model.Factura{ID: id}).Error
}

func (r *facturaRepo) List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	var facturas []model.Factura
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Factura{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.ExpedienteID != "" {
		q = q.Where("expediente_id = ?", filter.ExpedienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("fecha_emision DESC, numero DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&facturas).Error
	return facturas, total, err
}

func (r *facturaRepo) ListVencidas(ctx context.Context, minDias int) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).Preload("Items").
		Where("estado = 'vencida' AND dias_vencida >= ?", minDias).
		Order("dias_vencida DESC").
		Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) ListPorVencer(ctx context.Context, dias int) ([]model.Factura, error) {
	var facturas []model.Factura
	limite := time.Now().AddDate(0, 0, dias)
	err := r.db.WithContext(ctx).Preload("Items").
		Where("estado = 'emitida' AND fecha_vencimiento <= ? AND fecha_vencimiento >= ?", limite, time.Now()).
		Order("fecha_vencimiento ASC").
		Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) ListEmitidasVencidas(ctx context.Context, ahora time.Time) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).
		Where("estado = 'emitida' AND fecha_vencimiento < ?", ahora).
		Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) ListPorEstado(ctx context.Context, estado string) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).Where("estado = ?", estado).Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) NextNumero(ctx context.Context, tx *gorm.DB, anio int) (int, error) {
	var seq model.SecuenciaFactura
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("anio = ?", anio).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First invoice of the year: seed from the highest existing number so
		// sequences survive a fresh secuencias_factura table on legacy data.
		var ultimo int
		seedErr := tx.WithContext(ctx).Model(&model.Factura{}).
			Select("COALESCE(MAX(CAST(SPLIT_PART(numero, '-', 3) AS INT)), 0)").
			Where("numero LIKE ?", fmt.Sprintf("F-%d-%%", anio)).
			Scan(&ultimo).Error
		if seedErr != nil {
			return 0, seedErr
		}
		seq = model.SecuenciaFactura{Anio: anio, UltimoNumero: ultimo}
		if err := tx.WithContext(ctx).Create(&seq).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	seq.UltimoNumero++
	if err := tx.WithContext(ctx).Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.UltimoNumero, nil
}

func (r *facturaRepo) IncrementRecordatorios(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Factura{}).
		Where("id = ?", id).
		UpdateColumn("recordatorios_enviados", gorm.Expr("recordatorios_enviados + 1")).Error
}
