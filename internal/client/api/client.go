// Package api is the gateway to the SimuOrg backend: one configured HTTP
// client exposing the typed operations the views need. Every request is
// built from (operation, arguments, current session token) and nothing
// else; the gateway performs no retries, no status-code interpretation and
// no recovery — every failure propagates to the caller as one opaque error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"simuorg/internal/client/models"
	"simuorg/internal/common"
	"simuorg/internal/logging"
)

// apiPrefix is the fixed path prefix all operations resolve under.
const apiPrefix = "/api"

// uploadFieldName is the multipart form field the server expects the
// dataset file under.
const uploadFieldName = "file"

// TokenSource yields the current bearer token, or an empty string when no
// user is logged in. The session service satisfies it.
type TokenSource interface {
	CurrentToken() string
}

// Client is the configured gateway. Construct it once and share it between
// views; it holds no per-request state.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

// New builds a Client for the API at baseURL (origin only, no /api suffix).
func New(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *Client {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.With("component", "gateway"),
	}
}

// Authenticate submits credentials and returns the profile and token the
// server issued. It does not touch the session: recording a successful
// login is the caller's decision.
func (c *Client) Authenticate(ctx context.Context, creds models.Credentials) (models.UserProfile, string, error) {
	var reply struct {
		User  json.RawMessage `json:"user"`
		Token string          `json:"token"`
	}

	if err := c.postJSON(ctx, "/login", creds, &reply); err != nil {
		return models.UserProfile{}, "", err
	}

	user, err := models.ParseUserProfile(reply.User)
	if err != nil {
		return models.UserProfile{}, "", fmt.Errorf("failed to parse user profile: %w", err)
	}
	return user, reply.Token, nil
}

// Register creates a new account. The acknowledgment body is discarded.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.postJSON(ctx, "/register", reg, nil)
}

// FetchEmployees returns the roster.
func (c *Client) FetchEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := c.getJSON(ctx, "/employees", &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// FetchSimPolicies returns the names of the available simulation policies.
func (c *Client) FetchSimPolicies(ctx context.Context) ([]string, error) {
	var reply struct {
		Policies []string `json:"policies"`
	}
	if err := c.getJSON(ctx, "/sim/policies", &reply); err != nil {
		return nil, err
	}
	return reply.Policies, nil
}

// UploadDataset submits one file as multipart form data. Only the status
// code matters to the caller; the response body is discarded.
func (c *Client) UploadDataset(ctx context.Context, filename string, file io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(uploadFieldName, filename)
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read upload file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload/dataset", &body, mw.FormDataContentType())
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json")
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

// newRequest builds the request and, reading the session once, attaches the
// bearer credential. A logout between this read and the send is not
// retried against the new session state.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	return authorize(req, c.tokens.CurrentToken()), nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(req.Context(), "request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		c.log.Error(req.Context(), "request rejected", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s; body: %s", common.ErrRequest, resp.Status, string(b))
	}

	return resp, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
