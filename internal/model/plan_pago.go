package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanDePago splits an invoice total into 1..12 installments.
// Estado: "activo" | "completado" | "cancelado"
//
// Invariant: Σ Cuotas.Monto == Factura.Total exactly — the last cuota absorbs
// the rounding remainder.
type PlanDePago struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FechaCreacion  time.Time `gorm:"not null"`
	CantidadCuotas int       `gorm:"not null"`
	Notas          *string
	Estado         string `gorm:"type:varchar(20);not null;default:'activo'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Cuotas []Cuota `gorm:"foreignKey:PlanDePagoID"`
}

// Cuota is a single installment of a payment plan.
// Estado: "pendiente" | "pagada" | "vencida"
// "pagada" is terminal; due dates within a plan are strictly increasing.
type Cuota struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlanDePagoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Numero           int             `gorm:"not null"`
	Monto            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaVencimiento time.Time       `gorm:"not null;index"`
	FechaPago        *time.Time
	Estado           string `gorm:"type:varchar(20);not null;default:'pendiente'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
