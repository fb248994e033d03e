package handler

import (
	"net/http"
	"strconv"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/middleware"
	"lexfin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// CrearFactura godoc
// @Summary      Crear factura manual
// @Description  Crea una factura desde ítems. Los totales siempre se recalculan en el servidor.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearFacturaRequest true "Detalle de la factura"
// @Success      201  {object} dto.FacturaResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/facturas [post]
func (h *FacturasHandler) CrearFactura(c *gin.Context) {
	var req dto.CrearFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Crear(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerFactura godoc
// @Summary      Obtener factura
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la factura"
// @Success      200 {object} dto.FacturaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/facturas/{id} [get]
func (h *FacturasHandler) ObtenerFactura(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerarDesdeMovimiento godoc
// @Summary      Facturar un movimiento de ingreso
// @Description  Genera la factura de un ingreso del libro. Idempotente: si el movimiento ya fue facturado devuelve la factura existente.
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del movimiento"
// @Success      201 {object} dto.FacturaResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/facturas/desde-movimiento/{id} [post]
func (h *FacturasHandler) GenerarDesdeMovimiento(c *gin.Context) {
	movID, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.GenerarDesdeMovimiento(c.Request.Context(), usuarioID, movID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GenerarDesdeMovimientos godoc
// @Summary      Facturar varios movimientos en lote
// @Description  Genera una factura borrador con un ítem por movimiento. Todos deben ser ingresos sin facturar del mismo cliente.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GenerarDesdeMovimientosRequest true "Movimientos a facturar"
// @Success      201  {object} dto.FacturaResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/facturas/desde-movimientos [post]
func (h *FacturasHandler) GenerarDesdeMovimientos(c *gin.Context) {
	var req dto.GenerarDesdeMovimientosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.MovimientoIDs))
	for _, raw := range req.MovimientoIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("movimiento_id invalido: "+raw))
			return
		}
		ids = append(ids, id)
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.GenerarDesdeMovimientos(c.Request.Context(), usuarioID, ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CambiarEstado godoc
// @Summary      Cambiar estado de factura
// @Description  Aplica una transición del ciclo de vida. Transiciones fuera de la máquina de estados devuelven 409.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la factura"
// @Param        body body dto.CambiarEstadoFacturaRequest true "Estado destino"
// @Success      200  {object} dto.FacturaResponse
// @Failure      409  {object} apierror.ConflictError
// @Router       /v1/facturas/{id}/estado [patch]
func (h *FacturasHandler) CambiarEstado(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarEstadoFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), id, req.Estado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarFacturas godoc
// @Summary      Listar facturas
// @Description  Lista paginada. Antes de responder se recomputan vencimientos.
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.FacturaListResponse
// @Router       /v1/facturas [get]
func (h *FacturasHandler) ListarFacturas(c *gin.Context) {
	var filter dto.FacturaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarVencidas godoc
// @Summary      Facturas vencidas
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        min_dias query int false "Antigüedad mínima del vencimiento en días"
// @Success      200 {array} dto.FacturaResponse
// @Router       /v1/facturas/vencidas [get]
func (h *FacturasHandler) ListarVencidas(c *gin.Context) {
	minDias, _ := strconv.Atoi(c.DefaultQuery("min_dias", "0"))
	resp, err := h.svc.ListarVencidas(c.Request.Context(), minDias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorVencer godoc
// @Summary      Facturas por vencer
// @Description  Facturas emitidas cuyo vencimiento cae dentro de la ventana.
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        dias query int false "Ventana en días hacia adelante (default 7)"
// @Success      200 {array} dto.FacturaResponse
// @Router       /v1/facturas/por-vencer [get]
func (h *FacturasHandler) ListarPorVencer(c *gin.Context) {
	dias, _ := strconv.Atoi(c.DefaultQuery("dias", "7"))
	resp, err := h.svc.ListarPorVencer(c.Request.Context(), dias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         facturas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la factura"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Router       /v1/facturas/{id}/pdf [get]
func (h *FacturasHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.GenerarPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "factura.pdf")
}
