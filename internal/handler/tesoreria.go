package handler

import (
	"net/http"

	"lexfin/internal/apierror"
	"lexfin/internal/dto"
	"lexfin/internal/middleware"
	"lexfin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TesoreriaHandler struct{ svc service.TesoreriaService }

func NewTesoreriaHandler(svc service.TesoreriaService) *TesoreriaHandler {
	return &TesoreriaHandler{svc: svc}
}

// CrearMovimiento godoc
// @Summary      Registrar movimiento de tesorería
// @Description  Crea un ingreso o egreso en el libro de movimientos del estudio.
// @Tags         tesoreria
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearMovimientoRequest true "Detalle del movimiento"
// @Success      201  {object} dto.MovimientoResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/tesoreria/movimientos [post]
func (h *TesoreriaHandler) CrearMovimiento(c *gin.Context) {
	var req dto.CrearMovimientoRequest
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

// ActualizarMovimiento godoc
// @Summary      Actualizar movimiento
// @Description  Actualización parcial; los campos ausentes no se modifican.
// @Tags         tesoreria
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del movimiento"
// @Param        body body dto.ActualizarMovimientoRequest true "Campos a modificar"
// @Success      200  {object} dto.MovimientoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/tesoreria/movimientos/{id} [patch]
func (h *TesoreriaHandler) ActualizarMovimiento(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarMovimiento godoc
// @Summary      Eliminar movimiento
// @Description  Eliminación terminal. Rechazada con 409 si el movimiento está facturado.
// @Tags         tesoreria
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del movimiento"
// @Success      204
// @Failure      409 {object} apierror.ConflictError
// @Router       /v1/tesoreria/movimientos/{id} [delete]
func (h *TesoreriaHandler) EliminarMovimiento(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarMovimientos godoc
// @Summary      Listar movimientos
// @Description  Lista paginada con filtros por fecha, tipo, categoría, estado, expediente, cliente y texto libre.
// @Tags         tesoreria
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.MovimientoListResponse
// @Router       /v1/tesoreria/movimientos [get]
func (h *TesoreriaHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
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

// Balance godoc
// @Summary      Balance de tesorería
// @Description  Totales realizados (ingresos, egresos) y proyección de pendientes, global o por expediente.
// @Tags         tesoreria
// @Produce      json
// @Security     BearerAuth
// @Param        expediente_id query string false "UUID del expediente"
// @Success      200 {object} dto.BalanceResponse
// @Router       /v1/tesoreria/balance [get]
func (h *TesoreriaHandler) Balance(c *gin.Context) {
	var expedienteID *uuid.UUID
	if raw := c.Query("expediente_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("expediente_id invalido"))
			return
		}
		expedienteID = &id
	}
	resp, err := h.svc.Balance(c.Request.Context(), expedienteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
