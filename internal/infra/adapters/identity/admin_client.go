package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/adapter"
)

// Ensure implementation satisfies the port.
var _ adapter.IdentityProvider = (*AdminClient)(nil)

// AdminClient talks to the identity service's admin REST API using the
// service key. Magic links returned by the provider point at the provider's
// own default redirect, so every link is rewritten to the product surface
// before leaving this client.
type AdminClient struct {
	baseURL    string
	serviceKey string
	redirectTo string
	client     *http.Client
}

func NewAdminClient(baseURL, serviceKey, redirectTo string) *AdminClient {
	return &AdminClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		redirectTo: redirectTo,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type listUsersResponse struct {
	Users []userResponse `json:"users"`
}

func (c *AdminClient) FindUserByEmail(ctx context.Context, email string) (*model.Identity, error) {
	u := c.baseURL + "/admin/users?email=" + url.QueryEscape(email)
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var lr listUsersResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, u := range lr.Users {
		if u.Email == email {
			return &model.Identity{ID: u.ID, Email: u.Email}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *AdminClient) CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*model.Identity, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": emailConfirm,
	}
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/admin/users", payload)
	if err != nil {
		return nil, err
	}

	var ur userResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if ur.ID == "" {
		return nil, fmt.Errorf("identity provider returned no user id")
	}
	return &model.Identity{ID: ur.ID, Email: ur.Email}, nil
}

type generateLinkResponse struct {
	ActionLink string `json:"action_link"`
}

func (c *AdminClient) GenerateMagicLink(ctx context.Context, email string) (string, error) {
	payload := map[string]interface{}{
		"type":        "magiclink",
		"email":       email,
		"redirect_to": c.redirectTo,
	}
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/admin/generate_link", payload)
	if err != nil {
		return "", err
	}

	var lr generateLinkResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if lr.ActionLink == "" {
		return "", fmt.Errorf("identity provider returned no action link")
	}
	return rewriteRedirect(lr.ActionLink, c.redirectTo)
}

// rewriteRedirect forces the redirect_to query parameter of an action link
// to the product surface, replacing whatever default the provider attached.
func rewriteRedirect(link, target string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse action link: %w", err)
	}
	q := u.Query()
	q.Set("redirect_to", target)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *AdminClient) do(ctx context.Context, method, u string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("identity provider error: status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
