package model

import (
	"time"

	"github.com/google/uuid"
)

// Expediente is the case registry entry consumed read-only by the financial
// engine. Ownership of the full case lifecycle lives elsewhere; the engine
// only needs dates, type and client for profitability rollups.
// Tipo: "civil" | "penal" | "laboral" | "comercial" | "familia"
type Expediente struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero      string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	Titulo      string    `gorm:"not null"`
	Tipo        string    `gorm:"type:varchar(20);not null;index"`
	ClienteID   uuid.UUID `gorm:"type:uuid;not null;index"`
	FechaInicio time.Time `gorm:"not null"`
	FechaCierre *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cliente is the client registry entry, read-only from the engine's side.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Email     *string   `gorm:"type:varchar(120)"`
	Telefono  *string   `gorm:"type:varchar(30)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
