package funding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

// PaystackGateway talks to the Paystack transaction API using a secret-key
// bearer token.
type PaystackGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewPaystackGateway builds a Paystack client. An empty baseURL selects the
// production API; timeout bounds every request.
func NewPaystackGateway(baseURL, secretKey string, timeout time.Duration) *PaystackGateway {
	if baseURL == "" {
		baseURL = defaultPaystackBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type paystackInitBody struct {
	Amount      int64  `json:"amount"`
	Email       string `json:"email"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

func (g *PaystackGateway) Initialize(ctx context.Context, req InitializeRequest) (InitializeResponse, error) {
	body, err := json.Marshal(paystackInitBody{
		Amount:      req.AmountMinor,
		Email:       req.Email,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return InitializeResponse{}, err
	}

	var data paystackInitData
	if err := g.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return InitializeResponse{}, err
	}
	return InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (VerifyResponse, error) {
	var data paystackVerifyData
	if err := g.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return VerifyResponse{}, err
	}
	return VerifyResponse{
		Success:       data.Status == "success",
		AmountMinor:   data.Amount,
		GatewayStatus: data.Status,
	}, nil
}

func (g *PaystackGateway) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode paystack response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		return fmt.Errorf("paystack %s %s: %s", method, path, envelope.Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode paystack data: %w", err)
		}
	}
	return nil
}
