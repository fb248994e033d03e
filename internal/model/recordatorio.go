package model

import (
	"time"

	"github.com/google/uuid"
)

// Recordatorio is one dunning dispatch against an invoice.
// Canal: "email" | "sms" | "llamada"
// Estado: "pendiente" | "enviado" | "fallido"
//
// The log is append-only: rows are never mutated after creation except for
// the estado slot, which an asynchronous delivery-status update may flip.
type Recordatorio struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID uuid.UUID `gorm:"type:uuid;index;not null"`
	Canal     string    `gorm:"type:varchar(10);not null"`
	Estado    string    `gorm:"type:varchar(10);not null;default:'enviado'"`
	Mensaje   string    `gorm:"not null"`
	EnviadoAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
