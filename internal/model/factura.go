package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Factura is a billing document for a client, optionally generated from a
// treasury movement and optionally tied to a legal case.
// Estado: "borrador" | "emitida" | "pagada" | "vencida" | "anulada"
//
// Monetary invariant (enforced server-side on every write):
//
//	Subtotal = Σ item.Cantidad * item.PrecioUnitario
//	MontoIVA = Σ item.Cantidad * item.PrecioUnitario * item.AlicuotaIVA / 100
//	Total    = Subtotal + MontoIVA
type Factura struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Numero follows the format F-<year>-<3-digit-seq>, e.g. F-2026-014.
	// Sequence numbers are per-year, monotonically increasing, never reused.
	Numero           string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	FechaEmision     time.Time `gorm:"not null"`
	FechaVencimiento time.Time `gorm:"not null;index"`
	ClienteID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Notas            *string
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoIVA         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:monto_iva"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'borrador';index"`
	// MovimientoID is set when the invoice was generated from a ledger movement.
	// At most one invoice may reference a given movement.
	MovimientoID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	ExpedienteID *uuid.UUID `gorm:"type:uuid;index"`
	// DiasVencida is recomputed by RecomputarVencidas, never authoritative.
	DiasVencida           int        `gorm:"not null;default:0"`
	RecordatoriosEnviados int        `gorm:"not null;default:0"`
	PlanDePagoID          *uuid.UUID `gorm:"type:uuid"`
	CreadoPor             uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Items []FacturaItem `gorm:"foreignKey:FacturaID"`
}

// FacturaItem is one billed line. Subtotal is recomputed on any field change.
type FacturaItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Descripcion string    `gorm:"not null"`
	// Cantidad is decimal to support fractional billing units (hours).
	Cantidad       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// AlicuotaIVA is a flat percentage per line (21.00 = 21%).
	AlicuotaIVA decimal.Decimal `gorm:"type:decimal(5,2);not null;column:alicuota_iva"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
}

// SecuenciaFactura holds the last issued sequence number per year.
// Incremented under a row lock inside the invoice-creating transaction so
// numbers stay monotonic even when invoices are later deleted.
type SecuenciaFactura struct {
	Anio         int `gorm:"primaryKey;autoIncrement:false"`
	UltimoNumero int `gorm:"not null"`
}

func (SecuenciaFactura) TableName() string { return "secuencias_factura" }
