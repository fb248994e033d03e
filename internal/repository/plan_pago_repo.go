package repository

import (
	"context"

	"lexfin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanPagoRepository interface {
	CreateTx(tx *gorm.DB, p *model.PlanDePago) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PlanDePago, error)
	FindByFacturaID(ctx context.Context, facturaID uuid.UUID) (*model.PlanDePago, error)
	Update(ctx context.Context, p *model.PlanDePago) error
	UpdateTx(tx *gorm.DB, p *model.PlanDePago) error
	UpdateCuotaTx(tx *gorm.DB, c *model.Cuota) error
	UpdateCuota(ctx context.Context, c *model.Cuota) error
	ListActivos(ctx context.Context) ([]model.PlanDePago, error)
	DB() *gorm.DB
}

type planPagoRepo struct{ db *gorm.DB }

func NewPlanPagoRepository(db *gorm.DB) PlanPagoRepository { return &planPagoRepo{db: db} }

func (r *planPagoRepo) DB() *gorm.DB { return r.db }

func (r *planPagoRepo) CreateTx(tx *gorm.DB, p *model.PlanDePago) error {
	return tx.Create(p).Error
}

func (r *planPagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PlanDePago, error) {
	var p model.PlanDePago
	err := r.db.WithContext(ctx).
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		First(&p, id).Error
	return &p, err
}

func (r *planPagoRepo) FindByFacturaID(ctx context.Context, facturaID uuid.UUID) (*model.PlanDePago, error) {
	var p model.PlanDePago
	err := r.db.WithContext(ctx).
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		Where("factura_id = ?", facturaID).First(&p).Error
	return &p, err
}

func (r *planPagoRepo) Update(ctx context.Context, p *model.PlanDePago) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *planPagoRepo) UpdateTx(tx *gorm.DB, p *model.PlanDePago) error {
	return tx.Omit("Cuotas").Save(p).Error
}

func (r *planPagoRepo) UpdateCuotaTx(tx *gorm.DB, c *model.Cuota) error {
	return tx.Save(c).Error
}

func (r *planPagoRepo) UpdateCuota(ctx context.Context, c *model.Cuota) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *planPagoRepo) ListActivos(ctx context.Context) ([]model.PlanDePago, error) {
	var planes []model.PlanDePago
	err := r.db.WithContext(ctx).
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		Where("estado = 'activo'").
		Find(&planes).Error
	return planes, err
}
