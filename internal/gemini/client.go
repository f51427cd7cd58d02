// Package gemini calls the generateContent REST endpoint and decodes
// JSON-mode answers.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/logger"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"
	DefaultTimeout = 30 * time.Second
	serviceName    = "gemini"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = apperrors.ServiceFailure(serviceName, 0, "gemini API key is not configured")

// Request is one JSON-mode generation.
type Request struct {
	Prompt string
	Schema *Schema
	// UseSearch grounds the answer with the search tool when the client
	// allows it.
	UseSearch bool
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	Tools            []tool           `json:"tools,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client represents a client for the generative language API
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	timeout       time.Duration
	searchAllowed bool
	httpClient    *http.Client
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSearchTool enables or disables the search grounding tool.
func WithSearchTool(enabled bool) ClientOption {
	return func(c *Client) {
		c.searchAllowed = enabled
	}
}

// NewClient creates a new gemini client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       DefaultBaseURL,
		model:         DefaultModel,
		timeout:       DefaultTimeout,
		searchAllowed: true,
		httpClient:    &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// GenerateJSON runs one generation and decodes the answer into out.
// Deadline overruns are TIMEOUT_ERROR, transport failures and non-2xx
// answers are SERVICE_ERROR, and anything that is not JSON of the expected
// shape is PARSE_ERROR.
func (c *Client) GenerateJSON(ctx context.Context, req Request, out interface{}) error {
	text, err := c.generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		logger.GetLogger().Debugw("Undecodable model output", "error", err, "length", len(text))
		return apperrors.ParseFailed(serviceName, err)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		},
	}
	if req.UseSearch && c.searchAllowed {
		body.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	log := logger.GetLogger()
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			log.Warnw("Gemini request timed out", "model", c.model, "timeout", c.timeout)
			return "", apperrors.Timeout(serviceName, err)
		}
		return "", apperrors.ServiceFailure(serviceName, 0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", apperrors.Timeout(serviceName, err)
		}
		return "", apperrors.ServiceFailure(serviceName, resp.StatusCode, err.Error())
	}

	log.Debugw("Gemini response received",
		"model", c.model,
		"statusCode", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			detail = apiErr.Error.Message
		}
		return "", apperrors.ServiceFailure(serviceName, resp.StatusCode, detail)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apperrors.ParseFailed(serviceName, err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", apperrors.ServiceFailure(serviceName, resp.StatusCode, "prompt blocked: "+out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return "", apperrors.ParseFailed(serviceName, stderrors.New("response has no candidates"))
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := stripCodeFence(sb.String())
	if text == "" {
		return "", apperrors.ParseFailed(serviceName, stderrors.New("response has no text"))
	}
	return text, nil
}

// stripCodeFence removes a surrounding ``` block, which grounded answers
// sometimes carry even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
