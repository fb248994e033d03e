package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPlanPagoRequest struct {
	CantidadCuotas int     `json:"cantidad_cuotas" validate:"required,min=1,max=12"`
	Notas          *string `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CuotaResponse struct {
	ID               string          `json:"id"`
	Numero           int             `json:"numero"`
	Monto            decimal.Decimal `json:"monto"`
	FechaVencimiento string          `json:"fecha_vencimiento"`
	FechaPago        *string         `json:"fecha_pago"`
	Estado           string          `json:"estado"`
}

type PlanPagoResponse struct {
	ID             string          `json:"id"`
	FacturaID      string          `json:"factura_id"`
	FechaCreacion  string          `json:"fecha_creacion"`
	CantidadCuotas int             `json:"cantidad_cuotas"`
	Notas          *string         `json:"notas"`
	Estado         string          `json:"estado"`
	Cuotas         []CuotaResponse `json:"cuotas"`
}
