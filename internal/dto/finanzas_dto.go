package dto

import "github.com/shopspring/decimal"

// SnapshotExpedienteResponse is the derived financial rollup of one case.
// Always recomputable from the ledger; an empty case yields an all-zero snapshot.
type SnapshotExpedienteResponse struct {
	ExpedienteID  string          `json:"expediente_id"`
	Ingresos      decimal.Decimal `json:"ingresos"`
	Egresos       decimal.Decimal `json:"egresos"`
	Balance       decimal.Decimal `json:"balance"`
	MovimientoIDs []string        `json:"movimiento_ids"`
	// RentabilidadPct = (ingresos-egresos)/egresos * 100 when egresos > 0.
	RentabilidadPct   decimal.Decimal `json:"rentabilidad_pct"`
	DiasTranscurridos int             `json:"dias_transcurridos"`
	// EficienciaDiaria = balance / dias transcurridos (0 when no days elapsed).
	EficienciaDiaria decimal.Decimal `json:"eficiencia_diaria"`
}

// PerfilCostoTipoResponse is the per-case-type benchmark. Averages only cover
// cases that have at least one non-voided movement.
type PerfilCostoTipoResponse struct {
	Tipo                string          `json:"tipo"`
	CantidadExpedientes int             `json:"cantidad_expedientes"`
	EgresoPromedio      decimal.Decimal `json:"egreso_promedio"`
	DiasPromedio        decimal.Decimal `json:"dias_promedio"`
	EficienciaPromedio  decimal.Decimal `json:"eficiencia_promedio"`
}
