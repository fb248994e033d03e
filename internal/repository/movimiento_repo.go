package repository

import (
	"context"

	"lexfin/internal/dto"
	"lexfin/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceSums carries the ledger aggregation computed in SQL.
type BalanceSums struct {
	Ingresos   decimal.Decimal
	Egresos    decimal.Decimal
	Proyectado decimal.Decimal
}

type MovimientoRepository interface {
	Create(ctx context.Context, m *model.Movimiento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Movimiento, error)
	Update(ctx context.Context, m *model.Movimiento) error
	UpdateTx(tx *gorm.DB, m *model.Movimiento) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error)
	// ListByExpediente returns every non-voided movement of one case.
	ListByExpediente(ctx context.Context, expedienteID uuid.UUID) ([]model.Movimiento, error)
	// ListVinculados returns every non-voided movement linked to some case.
	ListVinculados(ctx context.Context) ([]model.Movimiento, error)
	Sums(ctx context.Context, expedienteID *uuid.UUID) (BalanceSums, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) DB() *gorm.DB { return r.db }

func (r *movimientoRepo) Create(ctx context.Context, m *model.Movimiento) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimientoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error) {
	var m model.Movimiento
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *movimientoRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Movimiento, error) {
	var movs []model.Movimiento
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) Update(ctx context.Context, m *model.Movimiento) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *movimientoRepo) UpdateTx(tx *gorm.DB, m *model.Movimiento) error {
	return tx.Save(m).Error
}

func (r *movimientoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Movimiento{}, id).Error
}

func (r *movimientoRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	var movs []model.Movimiento
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Movimiento{})

	if filter.Desde != "" {
		q = q.Where("fecha >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha <= ?", filter.Hasta)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ExpedienteID != "" {
		q = q.Where("expediente_id = ?", filter.ExpedienteID)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Buscar != "" {
		q = q.Where("descripcion ILIKE ?", "%"+filter.Buscar+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("fecha DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&movs).Error
	return movs, total, err
}

func (r *movimientoRepo) ListByExpediente(ctx context.Context, expedienteID uuid.UUID) ([]model.Movimiento, error) {
	var movs []model.Movimiento
	err := r.db.WithContext(ctx).
		Where("expediente_id = ? AND estado <> 'anulado'", expedienteID).
		Order("fecha ASC").
		Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) ListVinculados(ctx context.Context) ([]model.Movimiento, error) {
	var movs []model.Movimiento
	err := r.db.WithContext(ctx).
		Where("expediente_id IS NOT NULL AND estado <> 'anulado'").
		Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) Sums(ctx context.Context, expedienteID *uuid.UUID) (BalanceSums, error) {
	var row struct {
		Ingresos   decimal.Decimal
		Egresos    decimal.Decimal
		Proyectado decimal.Decimal
	}
	q := r.db.WithContext(ctx).Model(&model.Movimiento{}).
		Select(`
			COALESCE(SUM(CASE WHEN tipo = 'ingreso' AND estado = 'completado' THEN monto END), 0) AS ingresos,
			COALESCE(SUM(CASE WHEN tipo = 'egreso'  AND estado = 'completado' THEN monto END), 0) AS egresos,
			COALESCE(SUM(CASE WHEN estado = 'pendiente'
			               THEN CASE WHEN tipo = 'ingreso' THEN monto ELSE -monto END END), 0) AS proyectado`).
		Where("estado <> 'anulado'")
	if expedienteID != nil {
		q = q.Where("expediente_id = ?", *expedienteID)
	}
	if err := q.Scan(&row).Error; err != nil {
		return BalanceSums{}, err
	}
	return BalanceSums{Ingresos: row.Ingresos, Egresos: row.Egresos, Proyectado: row.Proyectado}, nil
}
