package worker

// recordatorio_worker.go
// Processes reminder delivery jobs from QueueRecordatorio.
// Email goes through SMTP; SMS through the gateway sidecar behind the circuit
// breaker; "llamada" only logs a call-list entry for the paralegal team.
// Delivery failures flip the reminder row to "fallido" and park the job in
// the DLQ for manual inspection.

import (
	"context"
	"encoding/json"
	"fmt"

	"lexfin/internal/infra"
	"lexfin/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RecordatorioWorker struct {
	mailer    *infra.Mailer
	smsClient *infra.SMSClient
	cb        *infra.CircuitBreaker
	recRepo   repository.RecordatorioRepository
	rdb       *redis.Client
}

func NewRecordatorioWorker(
	mailer *infra.Mailer,
	smsClient *infra.SMSClient,
	cb *infra.CircuitBreaker,
	recRepo repository.RecordatorioRepository,
	rdb *redis.Client,
) *RecordatorioWorker {
	return &RecordatorioWorker{mailer: mailer, smsClient: smsClient, cb: cb, recRepo: recRepo, rdb: rdb}
}

// Process delivers a single reminder over its channel.
func (w *RecordatorioWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload RecordatorioJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recordatorio_worker: invalid payload")
		return
	}

	var err error
	switch payload.Canal {
	case "email":
		err = w.enviarEmail(payload)
	case "sms":
		err = w.enviarSMS(ctx, payload)
	case "llamada":
		// Phone reminders are executed by a person; we only leave the trace.
		log.Info().
			Str("factura", payload.NumeroFactura).
			Str("telefono", telOrDash(payload.Telefono)).
			Msg("recordatorio_worker: llamada registrada para seguimiento manual")
	default:
		err = fmt.Errorf("canal desconocido: %s", payload.Canal)
	}

	if err != nil {
		log.Error().Err(err).
			Str("factura", payload.NumeroFactura).
			Str("canal", payload.Canal).
			Msg("recordatorio_worker: delivery failed")
		w.marcarFallido(ctx, payload)
		SendToDLQ(ctx, w.rdb, QueueRecordatorio, "recordatorio", raw, err.Error(), 1)
		return
	}
	log.Info().
		Str("factura", payload.NumeroFactura).
		Str("canal", payload.Canal).
		Msg("recordatorio_worker: reminder delivered")
}

func (w *RecordatorioWorker) enviarEmail(p RecordatorioJobPayload) error {
	if p.Email == nil || *p.Email == "" {
		return fmt.Errorf("el cliente no tiene email registrado")
	}
	subject := "Recordatorio de pago — Factura " + p.NumeroFactura
	return w.mailer.SendRecordatorio(*p.Email, subject, p.Mensaje, p.PDFPath)
}

func (w *RecordatorioWorker) enviarSMS(ctx context.Context, p RecordatorioJobPayload) error {
	if p.Telefono == nil || *p.Telefono == "" {
		return fmt.Errorf("el cliente no tiene teléfono registrado")
	}
	return w.cb.Execute(func() error {
		resp, err := w.smsClient.Enviar(ctx, infra.SMSPayload{
			Telefono:  *p.Telefono,
			Mensaje:   p.Mensaje,
			FacturaID: p.FacturaID,
		})
		if err != nil {
			return err
		}
		if resp.Resultado != "aceptado" {
			return fmt.Errorf("gateway rechazó el SMS: %s", resp.Motivo)
		}
		return nil
	})
}

func (w *RecordatorioWorker) marcarFallido(ctx context.Context, p RecordatorioJobPayload) {
	id, err := uuid.Parse(p.RecordatorioID)
	if err != nil {
		return
	}
	if err := w.recRepo.UpdateEstado(ctx, id, "fallido"); err != nil {
		log.Error().Err(err).
			Str("recordatorio_id", p.RecordatorioID).
			Msg("recordatorio_worker: no se pudo marcar como fallido")
	}
}

func telOrDash(t *string) string {
	if t == nil {
		return "-"
	}
	return *t
}
