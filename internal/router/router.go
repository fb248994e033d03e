package router

import (
	"time"

	"lexfin/internal/config"
	"lexfin/internal/handler"
	"lexfin/internal/infra"
	"lexfin/internal/middleware"
	"lexfin/internal/repository"
	"lexfin/internal/service"
	"lexfin/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries the services the router wires, exposed so main can hand the
// sweep callbacks to the background cron without re-wiring.
type Deps struct {
	Facturas   service.FacturaService
	PlanesPago service.PlanPagoService
	RecRepo    repository.RecordatorioRepository
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smsCB *infra.CircuitBreaker) (*gin.Engine, *Deps) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	movimientoRepo := repository.NewMovimientoRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	planPagoRepo := repository.NewPlanPagoRepository(db)
	recordatorioRepo := repository.NewRecordatorioRepository(db)
	expedienteRepo := repository.NewExpedienteRepository(db)
	clienteRepo := repository.NewClienteRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	rentabilidadSvc := service.NewRentabilidadService(movimientoRepo, expedienteRepo, rdb)
	tesoreriaSvc := service.NewTesoreriaService(movimientoRepo, facturaRepo, rentabilidadSvc)
	facturaSvc := service.NewFacturaService(facturaRepo, movimientoRepo, clienteRepo, cfg)
	planPagoSvc := service.NewPlanPagoService(planPagoRepo, facturaRepo, movimientoRepo)
	recordatorioSvc := service.NewRecordatorioService(recordatorioRepo, facturaRepo, clienteRepo, facturaSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	tesoreriaH := handler.NewTesoreriaHandler(tesoreriaSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	planesH := handler.NewPlanesPagoHandler(planPagoSvc)
	recordatoriosH := handler.NewRecordatoriosHandler(recordatorioSvc)
	finanzasH := handler.NewFinanzasHandler(rentabilidadSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smsCB))

	// Protected routes — tokens come from the firm's identity service.
	// Roles: abogado (read + ledger writes), contador (full billing),
	// administrador (everything incl. deletes).
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		tes := v1.Group("/tesoreria")
		{
			tes.POST("/movimientos", middleware.RequireRole("abogado", "contador", "administrador"), tesoreriaH.CrearMovimiento)
			tes.GET("/movimientos", middleware.RequireRole("abogado", "contador", "administrador"), tesoreriaH.ListarMovimientos)
			tes.PATCH("/movimientos/:id", middleware.RequireRole("contador", "administrador"), tesoreriaH.ActualizarMovimiento)
			tes.DELETE("/movimientos/:id", middleware.RequireRole("administrador"), tesoreriaH.EliminarMovimiento)
			tes.GET("/balance", middleware.RequireRole("abogado", "contador", "administrador"), tesoreriaH.Balance)
		}

		fact := v1.Group("/facturas", middleware.RequireRole("contador", "administrador"))
		{
			fact.POST("", facturasH.CrearFactura)
			fact.GET("", facturasH.ListarFacturas)
			fact.GET("/vencidas", facturasH.ListarVencidas)
			fact.GET("/por-vencer", facturasH.ListarPorVencer)
			fact.POST("/desde-movimiento/:id", facturasH.GenerarDesdeMovimiento)
			fact.POST("/desde-movimientos", facturasH.GenerarDesdeMovimientos)
			fact.GET("/:id", facturasH.ObtenerFactura)
			fact.PATCH("/:id/estado", facturasH.CambiarEstado)
			fact.GET("/:id/pdf", facturasH.DescargarPDF)
			fact.POST("/:id/plan-pago", planesH.CrearPlan)
			fact.GET("/:id/plan-pago", planesH.ObtenerPlan)
			fact.POST("/:id/recordatorios", recordatoriosH.EnviarRecordatorio)
			fact.GET("/:id/recordatorios", recordatoriosH.ListarRecordatorios)
		}

		v1.POST("/planes-pago/:id/cuotas/:cuota_id/pagar",
			middleware.RequireRole("contador", "administrador"), planesH.PagarCuota)

		v1.GET("/recordatorios/candidatas",
			middleware.RequireRole("contador", "administrador"), recordatoriosH.Candidatas)

		exp := v1.Group("/expedientes", middleware.RequireRole("abogado", "contador", "administrador"))
		{
			exp.GET("/costos-por-tipo", finanzasH.CostosPorTipo)
			exp.GET("/:id/finanzas", finanzasH.SnapshotExpediente)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, &Deps{Facturas: facturaSvc, PlanesPago: planPagoSvc, RecRepo: recordatorioRepo}
}
