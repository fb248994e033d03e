package service_test

import (
	"context"
	"testing"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/model"
	"lexfin/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTesoreriaSvc() (service.TesoreriaService, *stubMovimientoRepo, *stubFacturaRepo, *stubExpedienteRepo) {
	movRepo := newStubMovimientoRepo()
	facturaRepo := newStubFacturaRepo()
	expRepo := newStubExpedienteRepo()
	rentabilidad := service.NewRentabilidadService(movRepo, expRepo, nil)
	svc := service.NewTesoreriaService(movRepo, facturaRepo, rentabilidad)
	return svc, movRepo, facturaRepo, expRepo
}

func TestCrearMovimiento_CategoriaInvalidaParaTipo(t *testing.T) {
	svc, _, _, _ := buildTesoreriaSvc()

	// "salarios" is an expense category and cannot tag an income
	_, err := svc.Crear(context.Background(), uuid.New(), dto.CrearMovimientoRequest{
		Tipo:        "ingreso",
		Categoria:   "salarios",
		Descripcion: "honorarios caso García",
		Monto:       decimal.NewFromInt(1000),
	})
	require.Error(t, err)
	var ve *apierror.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCrearMovimiento_DefaultsCompletadoYTransferencia(t *testing.T) {
	svc, _, _, _ := buildTesoreriaSvc()

	resp, err := svc.Crear(context.Background(), uuid.New(), dto.CrearMovimientoRequest{
		Tipo:        "ingreso",
		Categoria:   "honorarios",
		Descripcion: "anticipo de honorarios",
		Monto:       decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, "completado", resp.Estado)
	assert.Equal(t, "transferencia", resp.MetodoPago)
}

func TestBalance_SoloCompletadosSumanYPendientesProyectan(t *testing.T) {
	svc, movRepo, _, _ := buildTesoreriaSvc()

	seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 10000, nil, nil)
	seedMovimiento(movRepo, "egreso", "alquiler", "completado", 4000, nil, nil)
	seedMovimiento(movRepo, "ingreso", "consultas", "pendiente", 2000, nil, nil)
	seedMovimiento(movRepo, "egreso", "insumos", "pendiente", 500, nil, nil)
	seedMovimiento(movRepo, "ingreso", "honorarios", "anulado", 99999, nil, nil)

	resp, err := svc.Balance(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, resp.Ingresos.Equal(decimal.NewFromInt(10000)), "ingresos=%s", resp.Ingresos)
	assert.True(t, resp.Egresos.Equal(decimal.NewFromInt(4000)))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(6000)))
	// 2000 pending income - 500 pending expense
	assert.True(t, resp.Proyectado.Equal(decimal.NewFromInt(1500)))
}

func TestEliminarMovimiento_FacturadoRechazado(t *testing.T) {
	svc, movRepo, facturaRepo, _ := buildTesoreriaSvc()

	clienteID := uuid.New()
	mov := seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 3000, nil, &clienteID)

	movID := mov.ID
	require.NoError(t, facturaRepo.Create(context.Background(), nil, &model.Factura{
		Numero:       "F-2026-001",
		ClienteID:    clienteID,
		Estado:       "emitida",
		MovimientoID: &movID,
		Total:        decimal.NewFromInt(3000),
	}))

	err := svc.Eliminar(context.Background(), mov.ID)
	require.Error(t, err)
	var ce *apierror.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "emitida", ce.EstadoActual)

	// still present after the rejected delete
	_, err = movRepo.FindByID(context.Background(), mov.ID)
	assert.NoError(t, err)
}

func TestActualizarMovimiento_AnularConservaFactura(t *testing.T) {
	svc, movRepo, facturaRepo, _ := buildTesoreriaSvc()

	clienteID := uuid.New()
	mov := seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 3000, nil, &clienteID)
	movID := mov.ID
	factura := &model.Factura{
		Numero:       "F-2026-001",
		ClienteID:    clienteID,
		Estado:       "pagada",
		MovimientoID: &movID,
		Total:        decimal.NewFromInt(3000),
	}
	require.NoError(t, facturaRepo.Create(context.Background(), nil, factura))

	anulado := "anulado"
	resp, err := svc.Actualizar(context.Background(), mov.ID, dto.ActualizarMovimientoRequest{Estado: &anulado})
	require.NoError(t, err)
	assert.Equal(t, "anulado", resp.Estado)

	// The billing document stands untouched
	f, err := facturaRepo.FindByID(context.Background(), factura.ID)
	require.NoError(t, err)
	assert.Equal(t, "pagada", f.Estado)
}

func TestActualizarMovimiento_MontoNoPositivoRechazado(t *testing.T) {
	svc, movRepo, _, _ := buildTesoreriaSvc()
	mov := seedMovimiento(movRepo, "egreso", "insumos", "completado", 100, nil, nil)

	cero := decimal.Zero
	_, err := svc.Actualizar(context.Background(), mov.ID, dto.ActualizarMovimientoRequest{Monto: &cero})
	var ve *apierror.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestBalance_PorExpediente(t *testing.T) {
	svc, movRepo, _, _ := buildTesoreriaSvc()

	expID := uuid.New()
	otroID := uuid.New()
	seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 8000, &expID, nil)
	seedMovimiento(movRepo, "egreso", "peritos", "completado", 3000, &expID, nil)
	seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 50000, &otroID, nil)

	resp, err := svc.Balance(context.Background(), &expID)
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(5000)))
	require.NotNil(t, resp.ExpedienteID)
	assert.Equal(t, expID.String(), *resp.ExpedienteID)
}
