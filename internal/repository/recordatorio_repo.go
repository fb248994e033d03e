package repository

import (
	"context"

	"lexfin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordatorioRepository interface {
	Create(ctx context.Context, r *model.Recordatorio) error
	ListByFactura(ctx context.Context, facturaID uuid.UUID) ([]model.Recordatorio, error)
	// UpdateEstado is the only permitted mutation — the delivery-status
	// callback flips enviado → fallido (or back) idempotently.
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
}

type recordatorioRepo struct{ db *gorm.DB }

func NewRecordatorioRepository(db *gorm.DB) RecordatorioRepository {
	return &recordatorioRepo{db: db}
}

func (r *recordatorioRepo) Create(ctx context.Context, rec *model.Recordatorio) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recordatorioRepo) ListByFactura(ctx context.Context, facturaID uuid.UUID) ([]model.Recordatorio, error) {
	var recs []model.Recordatorio
	err := r.db.WithContext(ctx).
		Where("factura_id = ?", facturaID).
		Order("enviado_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *recordatorioRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Recordatorio{}).
		Where("id = ?", id).Update("estado", estado).Error
}
