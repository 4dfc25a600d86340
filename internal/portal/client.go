// Package portal is the REST client for the placement portal backend. It
// implements the collaborator contracts the dashboard core consumes: sign-in,
// the per-role record reads, and the ranking feedback sink.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/karthik/placementhub/internal/types"
)

// DefaultTimeout is the HTTP request timeout for portal calls.
const DefaultTimeout = 30 * time.Second

// Client talks to the portal backend API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a portal client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// apiEnvelope is the response wrapper every portal endpoint uses.
type apiEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// loginResponse is the /auth/login payload.
type loginResponse struct {
	apiEnvelope
	User        *userProfile `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// userProfile mirrors the backend user document subset this client needs.
type userProfile struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	Department string   `json:"department"`
	Skills     []string `json:"skills"`
}

// Session is the result of a successful login.
type Session struct {
	Identity    types.Identity
	AccessToken string
}

// Login authenticates against the portal and returns the signed-in identity
// plus its access token. A non-success envelope maps to an *APIError.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*Session, error) {
	body := map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}
	if req.Role != "" {
		body["role"] = req.Role
	}

	var resp loginResponse
	if err := c.post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("portal.Login: %w", err)
	}
	if !resp.Success || resp.User == nil {
		return nil, &APIError{Endpoint: "/auth/login", Message: resp.Message}
	}

	// An absent role is left empty for the caller to default; only a
	// present-but-unknown role is rejected.
	var role types.Role
	if resp.User.Role != "" {
		parsed, err := types.ParseRole(resp.User.Role)
		if err != nil {
			return nil, fmt.Errorf("portal.Login: %w", err)
		}
		role = parsed
	}
	c.token = resp.AccessToken
	return &Session{
		Identity: types.Identity{
			ID:         resp.User.Email,
			Email:      resp.User.Email,
			Role:       role,
			Department: resp.User.Department,
			Skills:     resp.User.Skills,
		},
		AccessToken: resp.AccessToken,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Detail != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Detail}
			}
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
