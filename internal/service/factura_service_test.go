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

func buildFacturaSvc() (service.FacturaService, *stubFacturaRepo, *stubMovimientoRepo, *stubClienteRepo) {
	facturaRepo := newStubFacturaRepo()
	movRepo := newStubMovimientoRepo()
	clienteRepo := newStubClienteRepo()
	svc := service.NewFacturaService(facturaRepo, movRepo, clienteRepo, testConfig())
	return svc, facturaRepo, movRepo, clienteRepo
}

func TestCrearFactura_TotalesRecalculadosEnServidor(t *testing.T) {
	svc, _, _, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)

	// 10.5 hours at 1000 with 21% IVA: subtotal 10500, IVA 2205, total 12705
	resp, err := svc.Crear(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		ClienteID: cliente.ID.String(),
		Items: []dto.FacturaItemRequest{{
			Descripcion:    "Horas de asesoramiento societario",
			Cantidad:       decimal.NewFromFloat(10.5),
			PrecioUnitario: decimal.NewFromInt(1000),
			AlicuotaIVA:    decimal.NewFromInt(21),
		}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(10500)), "subtotal=%s", resp.Subtotal)
	assert.True(t, resp.MontoIVA.Equal(decimal.NewFromInt(2205)), "iva=%s", resp.MontoIVA)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(12705)), "total=%s", resp.Total)
	assert.Equal(t, "borrador", resp.Estado)
	assert.Equal(t, "F-"+time.Now().Format("2006")+"-001", resp.Numero)
}

func TestGenerarDesdeMovimiento_Idempotente(t *testing.T) {
	svc, _, movRepo, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)
	mov := seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 20000, nil, &cliente.ID)

	primera, err := svc.GenerarDesdeMovimiento(context.Background(), uuid.New(), mov.ID)
	require.NoError(t, err)
	// completed source movement: the invoice is born paid
	assert.Equal(t, "pagada", primera.Estado)
	require.NotNil(t, primera.MovimientoID)

	segunda, err := svc.GenerarDesdeMovimiento(context.Background(), uuid.New(), mov.ID)
	require.NoError(t, err)
	assert.Equal(t, primera.ID, segunda.ID, "second call must return the same invoice")
	assert.Equal(t, primera.Numero, segunda.Numero)
}

func TestGenerarDesdeMovimiento_PendientePromueveACompletado(t *testing.T) {
	svc, _, movRepo, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)
	mov := seedMovimiento(movRepo, "ingreso", "consultas", "pendiente", 5000, nil, &cliente.ID)

	resp, err := svc.GenerarDesdeMovimiento(context.Background(), uuid.New(), mov.ID)
	require.NoError(t, err)
	assert.Equal(t, "emitida", resp.Estado)

	actualizado, err := movRepo.FindByID(context.Background(), mov.ID)
	require.NoError(t, err)
	assert.Equal(t, "completado", actualizado.Estado)
}

func TestGenerarDesdeMovimiento_RechazaEgresoYSinCliente(t *testing.T) {
	svc, _, movRepo, _ := buildFacturaSvc()

	egreso := seedMovimiento(movRepo, "egreso", "peritos", "completado", 1000, nil, nil)
	_, err := svc.GenerarDesdeMovimiento(context.Background(), uuid.New(), egreso.ID)
	var ve *apierror.ValidationError
	assert.ErrorAs(t, err, &ve)

	sinCliente := seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 1000, nil, nil)
	_, err = svc.GenerarDesdeMovimiento(context.Background(), uuid.New(), sinCliente.ID)
	assert.ErrorAs(t, err, &ve)
}

func TestGenerarDesdeMovimientos_ClientesDistintosRechazado(t *testing.T) {
	svc, _, movRepo, clienteRepo := buildFacturaSvc()
	c1 := seedCliente(clienteRepo)
	c2 := seedCliente(clienteRepo)

	m1 := seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 1000, nil, &c1.ID)
	m2 := seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 2000, nil, &c2.ID)

	_, err := svc.GenerarDesdeMovimientos(context.Background(), uuid.New(), []uuid.UUID{m1.ID, m2.ID})
	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Detail, "mismo cliente")
}

func TestGenerarDesdeMovimientos_LoteEnBorradorConItemPorMovimiento(t *testing.T) {
	svc, _, movRepo, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)

	m1 := seedMovimiento(movRepo, "ingreso", "honorarios", "completado", 1000, nil, &cliente.ID)
	m2 := seedMovimiento(movRepo, "ingreso", "consultas", "completado", 2500, nil, &cliente.ID)

	resp, err := svc.GenerarDesdeMovimientos(context.Background(), uuid.New(), []uuid.UUID{m1.ID, m2.ID})
	require.NoError(t, err)
	assert.Equal(t, "borrador", resp.Estado)
	assert.Len(t, resp.Items, 2)
	// subtotal 3500 + 21% IVA 735
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(4235)), "total=%s", resp.Total)
}

func TestCambiarEstado_MaquinaDeEstados(t *testing.T) {
	svc, facturaRepo, _, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)

	factura := &model.Factura{
		Numero:           "F-2026-001",
		FechaEmision:     time.Now(),
		FechaVencimiento: time.Now().AddDate(0, 0, 30),
		ClienteID:        cliente.ID,
		Estado:           "borrador",
		Total:            decimal.NewFromInt(1000),
	}
	require.NoError(t, facturaRepo.Create(context.Background(), nil, factura))

	// borrador → pagada is not a legal transition
	_, err := svc.CambiarEstado(context.Background(), factura.ID, "pagada")
	var ce *apierror.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "borrador", ce.EstadoActual)

	// borrador → emitida → pagada is
	_, err = svc.CambiarEstado(context.Background(), factura.ID, "emitida")
	require.NoError(t, err)
	resp, err := svc.CambiarEstado(context.Background(), factura.ID, "pagada")
	require.NoError(t, err)
	assert.Equal(t, "pagada", resp.Estado)

	// pagada is terminal
	_, err = svc.CambiarEstado(context.Background(), factura.ID, "anulada")
	assert.ErrorAs(t, err, &ce)
}

func TestCambiarEstado_PagadaCompletaMovimientoOrigen(t *testing.T) {
	svc, facturaRepo, movRepo, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)
	mov := seedMovimiento(movRepo, "ingreso", "honorarios", "pendiente", 9000, nil, &cliente.ID)

	movID := mov.ID
	factura := &model.Factura{
		Numero:           "F-2026-002",
		FechaEmision:     time.Now(),
		FechaVencimiento: time.Now().AddDate(0, 0, 30),
		ClienteID:        cliente.ID,
		Estado:           "emitida",
		MovimientoID:     &movID,
		Total:            decimal.NewFromInt(9000),
	}
	require.NoError(t, facturaRepo.Create(context.Background(), nil, factura))

	_, err := svc.CambiarEstado(context.Background(), factura.ID, "pagada")
	require.NoError(t, err)

	actualizado, err := movRepo.FindByID(context.Background(), mov.ID)
	require.NoError(t, err)
	assert.Equal(t, "completado", actualizado.Estado)
}

func TestRecomputarVencidas_TransicionaYCalculaDias(t *testing.T) {
	svc, facturaRepo, _, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)

	vencida := &model.Factura{
		Numero:           "F-2026-003",
		FechaEmision:     time.Now().AddDate(0, 0, -40),
		FechaVencimiento: time.Now().AddDate(0, 0, -10),
		ClienteID:        cliente.ID,
		Estado:           "emitida",
		Total:            decimal.NewFromInt(100),
	}
	alDia := &model.Factura{
		Numero:           "F-2026-004",
		FechaEmision:     time.Now(),
		FechaVencimiento: time.Now().AddDate(0, 0, 20),
		ClienteID:        cliente.ID,
		Estado:           "emitida",
		Total:            decimal.NewFromInt(100),
	}
	require.NoError(t, facturaRepo.Create(context.Background(), nil, vencida))
	require.NoError(t, facturaRepo.Create(context.Background(), nil, alDia))

	n, err := svc.RecomputarVencidas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := facturaRepo.FindByID(context.Background(), vencida.ID)
	require.NoError(t, err)
	assert.Equal(t, "vencida", f.Estado)
	assert.Equal(t, 10, f.DiasVencida)

	f2, err := facturaRepo.FindByID(context.Background(), alDia.ID)
	require.NoError(t, err)
	assert.Equal(t, "emitida", f2.Estado)
}

func TestNumeracion_MonotonaAunConEliminaciones(t *testing.T) {
	svc, facturaRepo, _, clienteRepo := buildFacturaSvc()
	cliente := seedCliente(clienteRepo)

	item := dto.FacturaItemRequest{
		Descripcion:    "Consulta inicial",
		Cantidad:       decimal.NewFromInt(1),
		PrecioUnitario: decimal.NewFromInt(100),
		AlicuotaIVA:    decimal.NewFromInt(21),
	}
	anio := time.Now().Format("2006")

	f1, err := svc.Crear(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		ClienteID: cliente.ID.String(), Items: []dto.FacturaItemRequest{item},
	})
	require.NoError(t, err)
	assert.Equal(t, "F-"+anio+"-001", f1.Numero)

	// delete the first invoice; the sequence must not recycle its number
	require.NoError(t, facturaRepo.Delete(context.Background(), uuid.MustParse(f1.ID)))

	f2, err := svc.Crear(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		ClienteID: cliente.ID.String(), Items: []dto.FacturaItemRequest{item},
	})
	require.NoError(t, err)
	assert.Equal(t, "F-"+anio+"-002", f2.Numero)
}
