package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movimiento is an atomic cash event in the firm's treasury ledger.
// Tipo: "ingreso" | "egreso"
// Estado: "pendiente" | "completado" | "anulado"
//
// Movements in estado "anulado" are excluded from every balance and rollup;
// "pendiente" movements only contribute to the projected balance.
type Movimiento struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha       time.Time       `gorm:"not null;index"`
	Tipo        string          `gorm:"type:varchar(10);not null;index"`
	Categoria   string          `gorm:"type:varchar(30);not null"`
	Descripcion string          `gorm:"not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado      string          `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	// ExpedienteID links the movement to a legal case; rollups are grouped by it.
	ExpedienteID *uuid.UUID `gorm:"type:uuid;index"`
	ClienteID    *uuid.UUID `gorm:"type:uuid;index"`
	MetodoPago   string     `gorm:"type:varchar(20);not null;default:'transferencia'"`
	// ComprobanteRef is a free-form receipt reference (bank slip, court fee stamp).
	ComprobanteRef *string
	Notas          *string
	CreadoPor      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Valid categories per direction. A movement's categoria must belong to the
// set matching its tipo.
var (
	CategoriasIngreso = []string{"honorarios", "consultas", "abonos", "acuerdos_judiciales", "otros_ingresos"}
	CategoriasEgreso  = []string{"salarios", "alquiler", "tasas_judiciales", "peritos", "insumos", "servicios", "otros_gastos"}
)

// CategoriaValida reports whether categoria is allowed for the given tipo.
func CategoriaValida(tipo, categoria string) bool {
	var set []string
	switch tipo {
	case "ingreso":
		set = CategoriasIngreso
	case "egreso":
		set = CategoriasEgreso
	default:
		return false
	}
	for _, c := range set {
		if c == categoria {
			return true
		}
	}
	return false
}
