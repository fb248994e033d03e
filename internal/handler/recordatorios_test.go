package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"lexfin/internal/dto"
	"lexfin/internal/handler"
	"lexfin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecordatorioSvc records the window arguments the handler resolves from
// the query string.
type stubRecordatorioSvc struct {
	porVencerDias []int
	vencidasMin   []int
}

func (s *stubRecordatorioSvc) Enviar(_ context.Context, _ uuid.UUID, _ dto.EnviarRecordatorioRequest) (*dto.RecordatorioResponse, error) {
	return &dto.RecordatorioResponse{}, nil
}

func (s *stubRecordatorioSvc) ListarPorFactura(_ context.Context, _ uuid.UUID) ([]dto.RecordatorioResponse, error) {
	return nil, nil
}

func (s *stubRecordatorioSvc) CandidatasPorVencer(_ context.Context, dias int) ([]dto.FacturaResponse, error) {
	s.porVencerDias = append(s.porVencerDias, dias)
	return []dto.FacturaResponse{}, nil
}

func (s *stubRecordatorioSvc) CandidatasVencidas(_ context.Context, minDias int) ([]dto.FacturaResponse, error) {
	s.vencidasMin = append(s.vencidasMin, minDias)
	return []dto.FacturaResponse{}, nil
}

var _ service.RecordatorioService = (*stubRecordatorioSvc)(nil)

func setupCandidatasRouter(svc service.RecordatorioService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/recordatorios/candidatas", handler.NewRecordatoriosHandler(svc).Candidatas)
	return r
}

func TestCandidatas_VencidasPorDefectoIncluyeTodas(t *testing.T) {
	svc := &stubRecordatorioSvc{}
	r := setupCandidatasRouter(svc)

	// Without min_dias every overdue invoice is a candidate, including those
	// overdue for less than a week.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/recordatorios/candidatas?vencidas=true", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.vencidasMin, 1)
	assert.Equal(t, 0, svc.vencidasMin[0])
	assert.Empty(t, svc.porVencerDias)
}

func TestCandidatas_VencidasConMinDias(t *testing.T) {
	svc := &stubRecordatorioSvc{}
	r := setupCandidatasRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/recordatorios/candidatas?vencidas=true&min_dias=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.vencidasMin, 1)
	assert.Equal(t, 10, svc.vencidasMin[0])
}

func TestCandidatas_PorVencerVentanaPorDefecto(t *testing.T) {
	svc := &stubRecordatorioSvc{}
	r := setupCandidatasRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/recordatorios/candidatas", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.porVencerDias, 1)
	assert.Equal(t, 7, svc.porVencerDias[0])
	assert.Empty(t, svc.vencidasMin)
}
