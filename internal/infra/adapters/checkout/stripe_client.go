package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/adapter"
)

const defaultBaseURL = "https://api.stripe.com"

// Ensure implementation satisfies the port.
var _ adapter.CheckoutProvider = (*StripeClient)(nil)

// StripeClient retrieves checkout sessions using direct HTTP calls. Only
// retrieval is implemented: session creation and pricing live in the
// storefront, not here.
type StripeClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewStripeClient creates a session-retrieval client. baseURL overrides the
// API host for tests; empty means production.
func NewStripeClient(secretKey, baseURL string) *StripeClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &StripeClient{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *StripeClient) Name() string { return "stripe" }

// sessionResponse mirrors the fields of /v1/checkout/sessions we consume.
type sessionResponse struct {
	ID              string            `json:"id"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntent   string            `json:"payment_intent"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer_details"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *StripeClient) RetrieveSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	url := c.baseURL + "/v1/checkout/sessions/" + sessionID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
			return nil, fmt.Errorf("stripe error: %s (%s)", er.Error.Message, er.Error.Type)
		}
		return nil, fmt.Errorf("stripe error: status %d: %s", resp.StatusCode, string(body))
	}

	var sr sessionResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	return &model.CheckoutSession{
		ID:            sr.ID,
		PaymentStatus: sr.PaymentStatus,
		PaymentIntent: sr.PaymentIntent,
		Metadata:      sr.Metadata,
		CustomerEmail: sr.CustomerDetails.Email,
	}, nil
}
