package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearMovimientoRequest struct {
	Fecha          string          `json:"fecha"           validate:"omitempty,datetime=2006-01-02"`
	Tipo           string          `json:"tipo"            validate:"required,oneof=ingreso egreso"`
	Categoria      string          `json:"categoria"       validate:"required"`
	Descripcion    string          `json:"descripcion"     validate:"required,min=3"`
	Monto          decimal.Decimal `json:"monto"           validate:"required,gt=0"`
	Estado         string          `json:"estado"          validate:"omitempty,oneof=pendiente completado"`
	ExpedienteID   *string         `json:"expediente_id"   validate:"omitempty,uuid"`
	ClienteID      *string         `json:"cliente_id"      validate:"omitempty,uuid"`
	MetodoPago     string          `json:"metodo_pago"     validate:"omitempty,oneof=efectivo transferencia cheque tarjeta"`
	ComprobanteRef *string         `json:"comprobante_ref"`
	Notas          *string         `json:"notas"`
}

// ActualizarMovimientoRequest is a partial update: nil fields are left untouched.
type ActualizarMovimientoRequest struct {
	Fecha          *string          `json:"fecha"           validate:"omitempty,datetime=2006-01-02"`
	Categoria      *string          `json:"categoria"`
	Descripcion    *string          `json:"descripcion"     validate:"omitempty,min=3"`
	Monto          *decimal.Decimal `json:"monto"`
	Estado         *string          `json:"estado"          validate:"omitempty,oneof=pendiente completado anulado"`
	ExpedienteID   *string          `json:"expediente_id"   validate:"omitempty,uuid"`
	ClienteID      *string          `json:"cliente_id"      validate:"omitempty,uuid"`
	MetodoPago     *string          `json:"metodo_pago"     validate:"omitempty,oneof=efectivo transferencia cheque tarjeta"`
	ComprobanteRef *string          `json:"comprobante_ref"`
	Notas          *string          `json:"notas"`
}

// MovimientoFilter narrows the ledger listing. Zero values mean "no filter".
type MovimientoFilter struct {
	Desde        string `form:"desde"` // inclusive, YYYY-MM-DD
	Hasta        string `form:"hasta"` // inclusive, YYYY-MM-DD
	Tipo         string `form:"tipo"`
	Categoria    string `form:"categoria"`
	Estado       string `form:"estado"`
	ExpedienteID string `form:"expediente_id"`
	ClienteID    string `form:"cliente_id"`
	Buscar       string `form:"buscar"` // free-text match on descripcion
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID             string          `json:"id"`
	Fecha          string          `json:"fecha"`
	Tipo           string          `json:"tipo"`
	Categoria      string          `json:"categoria"`
	Descripcion    string          `json:"descripcion"`
	Monto          decimal.Decimal `json:"monto"`
	Estado         string          `json:"estado"`
	ExpedienteID   *string         `json:"expediente_id"`
	ClienteID      *string         `json:"cliente_id"`
	MetodoPago     string          `json:"metodo_pago"`
	ComprobanteRef *string         `json:"comprobante_ref"`
	Notas          *string         `json:"notas"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// BalanceResponse is the realized/projected rollup of the (optionally
// case-scoped) ledger.
type BalanceResponse struct {
	Ingresos decimal.Decimal `json:"ingresos"`
	Egresos  decimal.Decimal `json:"egresos"`
	// Proyectado is the signed sum of pending movements — not yet realized.
	Proyectado   decimal.Decimal `json:"proyectado"`
	Total        decimal.Decimal `json:"total"`
	ExpedienteID *string         `json:"expediente_id,omitempty"`
}
