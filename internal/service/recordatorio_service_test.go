package service_test

import (
	"context"
	"testing"
	"time"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/model"
	"lexfin/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRecordatorioSvc() (service.RecordatorioService, *stubRecordatorioRepo, *stubFacturaRepo, *stubClienteRepo) {
	recRepo := &stubRecordatorioRepo{}
	facturaRepo := newStubFacturaRepo()
	movRepo := newStubMovimientoRepo()
	clienteRepo := newStubClienteRepo()
	facturas := service.NewFacturaService(facturaRepo, movRepo, clienteRepo, testConfig())
	svc := service.NewRecordatorioService(recRepo, facturaRepo, clienteRepo, facturas, nil)
	return svc, recRepo, facturaRepo, clienteRepo
}

func seedFacturaDunning(t *testing.T, facturaRepo *stubFacturaRepo, clienteRepo *stubClienteRepo, estado string) *model.Factura {
	t.Helper()
	cliente := seedCliente(clienteRepo)
	f := &model.Factura{
		Numero:           "F-2026-010",
		FechaEmision:     time.Now().AddDate(0, 0, -10),
		FechaVencimiento: time.Now().AddDate(0, 0, 20),
		ClienteID:        cliente.ID,
		Estado:           estado,
		Total:            decimal.NewFromInt(1000),
	}
	require.NoError(t, facturaRepo.Create(context.Background(), nil, f))
	return f
}

func TestEnviarRecordatorio_RegistraEIncrementaContador(t *testing.T) {
	svc, recRepo, facturaRepo, clienteRepo := buildRecordatorioSvc()
	factura := seedFacturaDunning(t, facturaRepo, clienteRepo, "emitida")

	resp, err := svc.Enviar(context.Background(), factura.ID, dto.EnviarRecordatorioRequest{
		Canal:   "email",
		Mensaje: "Le recordamos que la factura F-2026-010 vence pronto",
	})
	require.NoError(t, err)
	assert.Equal(t, "enviado", resp.Estado)
	assert.Equal(t, "email", resp.Canal)
	assert.Len(t, recRepo.recs, 1)

	f, err := facturaRepo.FindByID(context.Background(), factura.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.RecordatoriosEnviados)
}

func TestEnviarRecordatorio_SoloFacturasAbiertas(t *testing.T) {
	svc, recRepo, facturaRepo, clienteRepo := buildRecordatorioSvc()

	var ce *apierror.ConflictError
	for _, estado := range []string{"borrador", "pagada", "anulada"} {
		f := seedFacturaDunning(t, facturaRepo, clienteRepo, estado)
		_, err := svc.Enviar(context.Background(), f.ID, dto.EnviarRecordatorioRequest{
			Canal: "email", Mensaje: "recordatorio",
		})
		require.ErrorAs(t, err, &ce, "estado %s", estado)
		assert.Equal(t, estado, ce.EstadoActual)
	}
	assert.Empty(t, recRepo.recs, "no audit rows for rejected reminders")
}

func TestEnviarRecordatorio_FacturaInexistente(t *testing.T) {
	svc, _, _, _ := buildRecordatorioSvc()
	_, err := svc.Enviar(context.Background(), uuid.New(), dto.EnviarRecordatorioRequest{
		Canal: "sms", Mensaje: "recordatorio",
	})
	var nf *apierror.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListarPorFactura_HistorialSoloAppend(t *testing.T) {
	svc, _, facturaRepo, clienteRepo := buildRecordatorioSvc()
	factura := seedFacturaDunning(t, facturaRepo, clienteRepo, "vencida")

	for _, canal := range []string{"email", "sms", "llamada"} {
		_, err := svc.Enviar(context.Background(), factura.ID, dto.EnviarRecordatorioRequest{
			Canal: canal, Mensaje: "recordatorio por " + canal,
		})
		require.NoError(t, err)
	}

	lista, err := svc.ListarPorFactura(context.Background(), factura.ID)
	require.NoError(t, err)
	require.Len(t, lista, 3)
	assert.Equal(t, "email", lista[0].Canal)
	assert.Equal(t, "sms", lista[1].Canal)
	assert.Equal(t, "llamada", lista[2].Canal)

	f, err := facturaRepo.FindByID(context.Background(), factura.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, f.RecordatoriosEnviados)
}

func TestCandidatas_PorVencerYVencidas(t *testing.T) {
	svc, _, facturaRepo, clienteRepo := buildRecordatorioSvc()
	cliente := seedCliente(clienteRepo)

	porVencer := &model.Factura{
		Numero:           "F-2026-020",
		FechaEmision:     time.Now().AddDate(0, 0, -25),
		FechaVencimiento: time.Now().AddDate(0, 0, 5),
		ClienteID:        cliente.ID,
		Estado:           "emitida",
		Total:            decimal.NewFromInt(100),
	}
	lejana := &model.Factura{
		Numero:           "F-2026-021",
		FechaEmision:     time.Now(),
		FechaVencimiento: time.Now().AddDate(0, 0, 60),
		ClienteID:        cliente.ID,
		Estado:           "emitida",
		Total:            decimal.NewFromInt(100),
	}
	vencida := &model.Factura{
		Numero:           "F-2026-022",
		FechaEmision:     time.Now().AddDate(0, 0, -50),
		FechaVencimiento: time.Now().AddDate(0, 0, -15),
		ClienteID:        cliente.ID,
		Estado:           "vencida",
		DiasVencida:      15,
		Total:            decimal.NewFromInt(100),
	}
	for _, f := range []*model.Factura{porVencer, lejana, vencida} {
		require.NoError(t, facturaRepo.Create(context.Background(), nil, f))
	}

	// zero window falls back to the 7-day default
	proximas, err := svc.CandidatasPorVencer(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, proximas, 1)
	assert.Equal(t, "F-2026-020", proximas[0].Numero)

	morosas, err := svc.CandidatasVencidas(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, morosas, 1)
	assert.Equal(t, "F-2026-022", morosas[0].Numero)

	ninguna, err := svc.CandidatasVencidas(context.Background(), 30)
	require.NoError(t, err)
	assert.Empty(t, ninguna)
}
