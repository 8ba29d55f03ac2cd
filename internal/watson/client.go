// Package watson is a client for the Watson Conversation v1 message API.
package watson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vokinneberg/parcel-assistant/internal/conversation"
)

const (
	DefaultURL         = "https://gateway.watsonplatform.net/conversation/api"
	DefaultVersionDate = "2017-04-21"

	// IAM API keys are sent as basic auth with this user name
	apiKeyUser = "apikey"

	// Cap on any response body, error bodies included
	maxResponseBytes = 1 << 20
)

// messageRequest is the body of a message call; the workspace goes in the URL
type messageRequest struct {
	Input   json.RawMessage `json:"input"`
	Context json.RawMessage `json:"context"`
}

// Client calls the message endpoint of a Watson Conversation instance
type Client struct {
	baseURL     string
	username    string
	password    string
	versionDate string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithVersionDate(versionDate string) Option {
	return func(c *Client) {
		if v := strings.TrimSpace(versionDate); v != "" {
			c.versionDate = v
		}
	}
}

// WithAPIKey authenticates with an IAM API key instead of a username and password
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		if k := strings.TrimSpace(apiKey); k != "" {
			c.username = apiKeyUser
			c.password = k
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient creates a new Watson Conversation client
func NewClient(baseURL, username, password string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		username:    username,
		password:    password,
		versionDate: DefaultVersionDate,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultURL
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.username == "" || c.password == "" {
		return nil, errors.New("watson: credentials are required (username and password, or an API key)")
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("watson: invalid service URL: %w", err)
	}
	return c, nil
}

func messageURL(baseURL, workspaceID, versionDate string) string {
	return fmt.Sprintf("%s/v1/workspaces/%s/message?version=%s",
		baseURL, url.PathEscape(workspaceID), url.QueryEscape(versionDate))
}

// Message sends one conversation turn. Non-2xx answers are returned as
// *conversation.BackendError carrying the upstream status and body.
func (c *Client) Message(ctx context.Context, req conversation.MessageRequest) (*conversation.MessageResponse, error) {
	if req.WorkspaceID == "" {
		return nil, errors.New("watson: workspace id must not be empty")
	}

	body, err := json.Marshal(messageRequest{
		Input:   nonEmpty(req.Input),
		Context: nonEmpty(req.Context),
	})
	if err != nil {
		return nil, fmt.Errorf("watson: marshal request: %w", err)
	}

	endpoint := messageURL(c.baseURL, req.WorkspaceID, c.versionDate)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("watson: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.username, c.password)

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &conversation.BackendError{Err: fmt.Errorf("watson: request failed: %w", err)}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
		return nil, &conversation.BackendError{
			StatusCode: res.StatusCode,
			Body:       buf,
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("watson: read response body: %w", err)
	}

	resp, err := conversation.NewMessageResponse(buf)
	if err != nil {
		return nil, fmt.Errorf("watson: decode response: %w", err)
	}
	return resp, nil
}

func nonEmpty(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}
