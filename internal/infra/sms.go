package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSPayload is sent by the worker pool to the SMS gateway sidecar, which
// holds the carrier credentials and rate limits.
type SMSPayload struct {
	Telefono  string `json:"telefono"`
	Mensaje   string `json:"mensaje"`
	FacturaID string `json:"factura_id"`
}

// SMSResponse is returned by the gateway after handing off to the carrier.
type SMSResponse struct {
	MensajeID string `json:"mensaje_id"`
	Resultado string `json:"resultado"` // "aceptado" | "rechazado"
	Motivo    string `json:"motivo,omitempty"`
}

// SMSClient is an HTTP client that delegates SMS delivery to the gateway
// sidecar. The decoupling isolates carrier failures from the core backend.
type SMSClient struct {
	gatewayURL string
	httpClient *http.Client
}

func NewSMSClient(gatewayURL string) *SMSClient {
	return &SMSClient{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enviar posts one SMS to the gateway and returns its verdict.
func (c *SMSClient) Enviar(ctx context.Context, payload SMSPayload) (*SMSResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sms: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/enviar", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sms: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sms: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sms: gateway returned %d", resp.StatusCode)
	}

	var result SMSResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("sms: decode response: %w", err)
	}
	return &result, nil
}
