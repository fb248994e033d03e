package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type FacturaItemRequest struct {
	Descripcion    string          `json:"descripcion"     validate:"required,min=3"`
	Cantidad       decimal.Decimal `json:"cantidad"        validate:"required,gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	AlicuotaIVA    decimal.Decimal `json:"alicuota_iva"    validate:"min=0"`
}

// CrearFacturaRequest creates an invoice from scratch. Totals supplied by the
// client are ignored — the engine always recomputes them from the items.
type CrearFacturaRequest struct {
	ClienteID        string               `json:"cliente_id"        validate:"required,uuid"`
	ExpedienteID     *string              `json:"expediente_id"     validate:"omitempty,uuid"`
	FechaEmision     string               `json:"fecha_emision"     validate:"omitempty,datetime=2006-01-02"`
	FechaVencimiento string               `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	Items            []FacturaItemRequest `json:"items"             validate:"required,min=1,dive"`
	Notas            *string              `json:"notas"`
	Estado           string               `json:"estado"            validate:"omitempty,oneof=borrador emitida"`
}

type GenerarDesdeMovimientosRequest struct {
	MovimientoIDs []string `json:"movimiento_ids" validate:"required,min=1,dive,uuid"`
}

type CambiarEstadoFacturaRequest struct {
	Estado string `json:"estado" validate:"required,oneof=borrador emitida pagada vencida anulada"`
}

type FacturaFilter struct {
	Estado       string `form:"estado"`
	ClienteID    string `form:"cliente_id"`
	ExpedienteID string `form:"expediente_id"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FacturaItemResponse struct {
	ID             string          `json:"id"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	AlicuotaIVA    decimal.Decimal `json:"alicuota_iva"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type FacturaResponse struct {
	ID                    string                `json:"id"`
	Numero                string                `json:"numero"`
	FechaEmision          string                `json:"fecha_emision"`
	FechaVencimiento      string                `json:"fecha_vencimiento"`
	ClienteID             string                `json:"cliente_id"`
	ExpedienteID          *string               `json:"expediente_id"`
	MovimientoID          *string               `json:"movimiento_id"`
	Items                 []FacturaItemResponse `json:"items"`
	Notas                 *string               `json:"notas"`
	Subtotal              decimal.Decimal       `json:"subtotal"`
	MontoIVA              decimal.Decimal       `json:"monto_iva"`
	Total                 decimal.Decimal       `json:"total"`
	Estado                string                `json:"estado"`
	DiasVencida           int                   `json:"dias_vencida"`
	RecordatoriosEnviados int                   `json:"recordatorios_enviados"`
	PlanDePagoID          *string               `json:"plan_pago_id"`
	CreatedAt             string                `json:"created_at"`
}

type FacturaListResponse struct {
	Data  []FacturaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
