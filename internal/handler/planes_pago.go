package handler

import (
	"net/http"

	"lexfin/internal/dto"
	"lexfin/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanesPagoHandler struct{ svc service.PlanPagoService }

func NewPlanesPagoHandler(svc service.PlanPagoService) *PlanesPagoHandler {
	return &PlanesPagoHandler{svc: svc}
}

// CrearPlan godoc
// @Summary      Crear plan de pago
// @Description  Divide el total de una factura emitida o vencida en 1..12 cuotas mensuales. La última cuota absorbe el redondeo.
// @Tags         planes-pago
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path string true "UUID de la factura"
// @Param        body body dto.CrearPlanPagoRequest true "Cantidad de cuotas"
// @Success      201  {object} dto.PlanPagoResponse
// @Failure      409  {object} apierror.ConflictError
// @Router       /v1/facturas/{id}/plan-pago [post]
func (h *PlanesPagoHandler) CrearPlan(c *gin.Context) {
	facturaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearPlanPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), facturaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerPlan godoc
// @Summary      Obtener plan de pago de una factura
// @Tags         planes-pago
// @Produce      json
// @Security     BearerAuth
// @Param        id         path string true "UUID de la factura"
// @Success      200 {object} dto.PlanPagoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/facturas/{id}/plan-pago [get]
func (h *PlanesPagoHandler) ObtenerPlan(c *gin.Context) {
	facturaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorFactura(c.Request.Context(), facturaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PagarCuota godoc
// @Summary      Registrar pago de cuota
// @Description  Marca una cuota como pagada. Al pagar la última, el plan se completa y la factura pasa a pagada.
// @Tags         planes-pago
// @Produce      json
// @Security     BearerAuth
// @Param        id       path string true "UUID del plan"
// @Param        cuota_id path string true "UUID de la cuota"
// @Success      200 {object} dto.PlanPagoResponse
// @Failure      409 {object} apierror.ConflictError
// @Router       /v1/planes-pago/{id}/cuotas/{cuota_id}/pagar [post]
func (h *PlanesPagoHandler) PagarCuota(c *gin.Context) {
	planID, ok := parseID(c, "id")
	if !ok {
		return
	}
	cuotaID, ok := parseID(c, "cuota_id")
	if !ok {
		return
	}
	resp, err := h.svc.PagarCuota(c.Request.Context(), planID, cuotaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
