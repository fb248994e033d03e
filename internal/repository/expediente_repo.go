package repository

import (
	"context"

	"lexfin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpedienteRepository and ClienteRepository are read-mostly views over the
// case and client registries. The engine never mutates them; Create exists
// for seeding and tests.

type ExpedienteRepository interface {
	Create(ctx context.Context, e *model.Expediente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expediente, error)
	ListAll(ctx context.Context) ([]model.Expediente, error)
}

type expedienteRepo struct{ db *gorm.DB }

func NewExpedienteRepository(db *gorm.DB) ExpedienteRepository { return &expedienteRepo{db: db} }

func (r *expedienteRepo) Create(ctx context.Context, e *model.Expediente) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expedienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expediente, error) {
	var e model.Expediente
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *expedienteRepo) ListAll(ctx context.Context) ([]model.Expediente, error) {
	var exps []model.Expediente
	err := r.db.WithContext(ctx).Find(&exps).Error
	return exps, err
}

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}
