package handler

import (
	"net/http"

	"lexfin/internal/service"

	"github.com/gin-gonic/gin"
)

type FinanzasHandler struct{ svc service.RentabilidadService }

func NewFinanzasHandler(svc service.RentabilidadService) *FinanzasHandler {
	return &FinanzasHandler{svc: svc}
}

// SnapshotExpediente godoc
// @Summary      Snapshot financiero de un expediente
// @Description  Totales realizados, balance, rentabilidad y eficiencia diaria del caso. Un expediente sin movimientos devuelve ceros.
// @Tags         finanzas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del expediente"
// @Success      200 {object} dto.SnapshotExpedienteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/expedientes/{id}/finanzas [get]
func (h *FinanzasHandler) SnapshotExpediente(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.SnapshotExpediente(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CostosPorTipo godoc
// @Summary      Perfil de costos por tipo de expediente
// @Description  Egreso, duración y eficiencia promedio por tipo de caso. Solo cuenta expedientes con actividad financiera.
// @Tags         finanzas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PerfilCostoTipoResponse
// @Router       /v1/expedientes/costos-por-tipo [get]
func (h *FinanzasHandler) CostosPorTipo(c *gin.Context) {
	resp, err := h.svc.PerfilCostosPorTipo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
