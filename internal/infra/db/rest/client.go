package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlexJaimeH/narra-sub000/internal/config"
)

// Client is the authenticated gateway to the REST record store. Records are
// addressed by table path and field-equality filters; there is no
// transaction support, which is why the sagas lean on idempotency witnesses
// instead.
type Client struct {
	baseURL    string
	apiKey     string
	serviceKey string
	jwtSecret  []byte
	tokenTTL   time.Duration
	http       *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(cfg *config.BackendConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		serviceKey: cfg.ServiceKey,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Select fetches all rows matching the equality filters into dest, which
// must be a pointer to a slice of row structs.
func (c *Client) Select(ctx context.Context, table string, filters map[string]string, dest interface{}) error {
	u := c.baseURL + "/" + table + filterQuery(filters)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build select request: %w", err)
	}
	return c.do(req, dest)
}

// Insert posts a new row. When dest is non-nil the representation returned
// by the store is decoded into it.
func (c *Client) Insert(ctx context.Context, table string, record, dest interface{}) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s row: %w", table, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+table, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build insert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if dest != nil {
		req.Header.Set("Prefer", "return=representation")
	}
	return c.do(req, dest)
}

// Update patches all rows matching the filters.
func (c *Client) Update(ctx context.Context, table string, filters map[string]string, patch interface{}) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal %s patch: %w", table, err)
	}
	u := c.baseURL + "/" + table + filterQuery(filters)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// Delete removes all rows matching the filters.
func (c *Client) Delete(ctx context.Context, table string, filters map[string]string) error {
	u := c.baseURL + "/" + table + filterQuery(filters)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	return c.do(req, nil)
}

func filterQuery(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	q := url.Values{}
	for col, val := range filters {
		q.Set(col, "eq."+val)
	}
	return "?" + q.Encode()
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	bearer, err := c.bearer()
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, string(body))
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// bearer returns the static service key, or a cached short-lived HS256
// service token minted from the shared signing secret.
func (c *Client) bearer() (string, error) {
	if c.serviceKey != "" {
		return c.serviceKey, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Until(c.tokenExp) > 30*time.Second {
		return c.token, nil
	}

	now := time.Now()
	exp := now.Add(c.tokenTTL)
	claims := jwt.MapClaims{
		"role": "service_role",
		"iss":  "narra-backend",
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("mint service token: %w", err)
	}
	c.token = signed
	c.tokenExp = exp
	return signed, nil
}
