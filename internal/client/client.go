// ABOUTME: HTTP client for the report backend API
// ABOUTME: Wraps login, profile, refresh, report, and log endpoints with uniform error handling

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/markalston/fieldreport/internal/models"
)

// TokenStore supplies the bearer token and receives refreshed tokens
type TokenStore interface {
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	SetTokens(access, refresh string) error
}

// Client is the API client for the report backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets a client-side timeout; zero means none
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client. Its transport is
// wrapped with request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		cp.Transport = newLoggingTransport(hc.Transport)
		c.httpClient = &cp
	}
}

// New creates a new API client with the given base URL.
// tokens may be nil, in which case no bearer token is sent.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: newLoggingTransport(nil),
		},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type reportRequest struct {
	Images []string `json:"images"`
}

// Login calls POST /userlogin
func (c *Client) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	body, err := c.do(ctx, http.MethodPost, "/userlogin", loginRequest{Username: username, Password: password}, false)
	if err != nil {
		return nil, asAuthError(err)
	}

	var tokens models.TokenPair
	if err := body.decode(&tokens); err != nil {
		return nil, err
	}
	if tokens.Access == "" {
		return nil, fmt.Errorf("invalid response from backend: missing access token")
	}
	return &tokens, nil
}

// FetchProfile calls GET /get-data. A rejected token yields *AuthError;
// this is how a cached session is re-validated.
func (c *Client) FetchProfile(ctx context.Context) (*models.UserProfile, error) {
	body, err := c.do(ctx, http.MethodGet, "/get-data", nil, true)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isAuthStatus(apiErr.StatusCode) {
			return nil, asAuthError(apiErr)
		}
		return nil, err
	}

	var profile models.UserProfile
	if err := body.decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// RefreshAccessToken calls POST /token/refresh with the stored refresh
// token, then persists the new access token alongside the old refresh token
func (c *Client) RefreshAccessToken(ctx context.Context) (*models.AccessToken, error) {
	var refresh string
	var ok bool
	if c.tokens != nil {
		refresh, ok = c.tokens.RefreshToken()
	}
	if !ok {
		return nil, &AuthError{Message: "No refresh token available"}
	}

	body, err := c.do(ctx, http.MethodPost, "/token/refresh", refreshRequest{Refresh: refresh}, false)
	if err != nil {
		return nil, asAuthError(err)
	}

	var token models.AccessToken
	if err := body.decode(&token); err != nil {
		return nil, err
	}
	if token.Access == "" {
		return nil, fmt.Errorf("invalid response from backend: missing access token")
	}

	if err := c.tokens.SetTokens(token.Access, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refreshed token: %w", err)
	}
	return &token, nil
}

// SubmitReport calls POST /sent-report with the encoded images in order
func (c *Client) SubmitReport(ctx context.Context, images []string) (*models.Receipt, error) {
	body, err := c.do(ctx, http.MethodPost, "/sent-report", reportRequest{Images: images}, true)
	if err != nil {
		return nil, err
	}

	receipt := &models.Receipt{}
	if !body.isJSON {
		receipt.Text = string(body.data)
		return receipt, nil
	}
	if err := json.Unmarshal(body.data, &receipt.Fields); err != nil {
		// Valid JSON that is not an object is kept verbatim
		receipt.Text = string(body.data)
	}
	return receipt, nil
}

// ListLogs calls GET /get-logs. page 0 requests the first page without a
// page parameter.
func (c *Client) ListLogs(ctx context.Context, page int) (*models.LogPage, error) {
	if page < 0 {
		return nil, fmt.Errorf("page must be positive, got %d", page)
	}

	path := "/get-logs"
	if page > 0 {
		path += "?page=" + strconv.Itoa(page)
	}

	body, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}

	var logs models.LogPage
	if err := body.decode(&logs); err != nil {
		return nil, err
	}
	return &logs, nil
}

// GetLogDetail calls GET /get-logs/{uuid}
func (c *Client) GetLogDetail(ctx context.Context, id string) (*models.LogEntry, error) {
	body, err := c.do(ctx, http.MethodGet, "/get-logs/"+url.PathEscape(id), nil, true)
	if err != nil {
		return nil, err
	}

	var entry models.LogEntry
	if err := body.decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// payload is a successful response body
type payload struct {
	data   []byte
	isJSON bool
}

func (p *payload) decode(out any) error {
	if !p.isJSON {
		return fmt.Errorf("invalid response from backend: expected JSON body")
	}
	if err := json.Unmarshal(p.data, out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// do sends one request and applies the uniform response handling
func (c *Client) do(ctx context.Context, method, path string, in any, authed bool) (*payload, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed && c.tokens != nil {
		if token, ok := c.tokens.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

// handleRequestError converts transport failures to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return &NetworkError{Message: "request canceled", Err: err}
	}
	if ctx.Err() == context.DeadlineExceeded {
		return &NetworkError{Message: "request timed out", Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &NetworkError{Message: "request timed out", Err: err}
	}
	return &NetworkError{Message: fmt.Sprintf("cannot connect to backend at %s: %v", c.baseURL, err), Err: err}
}

// handleResponse parses JSON bodies, keeps other bodies as text, and turns
// non-2xx statuses into *APIError using the JSON "detail" field when present
func (c *Client) handleResponse(resp *http.Response) (*payload, error) {
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Message: fmt.Sprintf("failed to read response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := ""
		if isJSON {
			detail = extractDetail(data)
		}
		return nil, newAPIError(resp.StatusCode, detail)
	}

	return &payload{data: data, isJSON: isJSON}, nil
}

// extractDetail returns the "detail" field of a JSON error body, if any
func extractDetail(data []byte) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	switch d := body["detail"].(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		return fmt.Sprint(d)
	}
}
