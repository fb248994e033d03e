package handler

import (
	"net/http"
	"strconv"

	"lexfin/internal/dto"
	"lexfin/internal/service"

	"github.com/gin-gonic/gin"
)

type RecordatoriosHandler struct{ svc service.RecordatorioService }

func NewRecordatoriosHandler(svc service.RecordatorioService) *RecordatoriosHandler {
	return &RecordatoriosHandler{svc: svc}
}

// EnviarRecordatorio godoc
// @Summary      Enviar recordatorio de pago
// @Description  Registra el recordatorio en el historial y despacha la entrega asíncrona por el canal elegido.
// @Tags         recordatorios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path string true "UUID de la factura"
// @Param        body body dto.EnviarRecordatorioRequest true "Canal y mensaje"
// @Success      201  {object} dto.RecordatorioResponse
// @Failure      409  {object} apierror.ConflictError
// @Router       /v1/facturas/{id}/recordatorios [post]
func (h *RecordatoriosHandler) EnviarRecordatorio(c *gin.Context) {
	facturaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EnviarRecordatorioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Enviar(c.Request.Context(), facturaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarRecordatorios godoc
// @Summary      Historial de recordatorios de una factura
// @Tags         recordatorios
// @Produce      json
// @Security     BearerAuth
// @Param        id         path string true "UUID de la factura"
// @Success      200 {array} dto.RecordatorioResponse
// @Router       /v1/facturas/{id}/recordatorios [get]
func (h *RecordatoriosHandler) ListarRecordatorios(c *gin.Context) {
	facturaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorFactura(c.Request.Context(), facturaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Candidatas godoc
// @Summary      Facturas candidatas a recordatorio
// @Description  Facturas abiertas por vencer dentro de la ventana, o ya vencidas (?vencidas=true).
// @Tags         recordatorios
// @Produce      json
// @Security     BearerAuth
// @Param        vencidas query bool false "true = listar vencidas en lugar de por vencer"
// @Param        dias     query int  false "Ventana en días hacia adelante (default 7)"
// @Param        min_dias query int  false "Antigüedad mínima en días de las vencidas (default 0)"
// @Success      200 {array} dto.FacturaResponse
// @Router       /v1/recordatorios/candidatas [get]
func (h *RecordatoriosHandler) Candidatas(c *gin.Context) {
	var (
		resp []dto.FacturaResponse
		err  error
	)
	if c.Query("vencidas") == "true" {
		// Every overdue invoice is a dunning candidate unless the caller
		// narrows by minimum age.
		minDias, _ := strconv.Atoi(c.DefaultQuery("min_dias", "0"))
		resp, err = h.svc.CandidatasVencidas(c.Request.Context(), minDias)
	} else {
		dias, _ := strconv.Atoi(c.DefaultQuery("dias", "7"))
		resp, err = h.svc.CandidatasPorVencer(c.Request.Context(), dias)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
