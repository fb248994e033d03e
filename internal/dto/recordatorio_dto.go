package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EnviarRecordatorioRequest struct {
	Canal   string `json:"canal"   validate:"required,oneof=email sms llamada"`
	Mensaje string `json:"mensaje" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RecordatorioResponse struct {
	ID        string `json:"id"`
	FacturaID string `json:"factura_id"`
	Canal     string `json:"canal"`
	Estado    string `json:"estado"`
	Mensaje   string `json:"mensaje"`
	EnviadoAt string `json:"enviado_at"`
}
