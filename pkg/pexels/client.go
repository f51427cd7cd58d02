package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/logger"
)

const (
	DefaultBaseURL = "https://api.pexels.com/v1"
	DefaultTimeout = 5 * time.Second
)

// ClientInterface defines the interface for Pexels client operations
type ClientInterface interface {
	SearchDestinationImage(ctx context.Context, query string) (string, error)
}

type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

type SearchResponse struct {
	Photos []Photo `json:"photos"`
}

type Photo struct {
	ID     int    `json:"id"`
	Source Source `json:"src"`
}

type Source struct {
	Landscape string `json:"landscape"`
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
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

// SearchDestinationImage returns the landscape URL of the best match for
// query, or "" when nothing matches.
func (c *Client) SearchDestinationImage(ctx context.Context, query string) (string, error) {
	log := logger.GetLogger()
	if !c.Enabled() {
		return "", errors.ServiceFailure("pexels", 0, "api key not configured")
	}
	log.Debugw("Starting Pexels image search", "query", query)

	params := url.Values{}
	params.Add("query", query)
	params.Add("per_page", "1")
	params.Add("orientation", "landscape")
	finalURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ServerError, "failed to create pexels request")
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Timeout("pexels", err)
		}
		log.Errorw("Failed to execute Pexels HTTP request", "error", err)
		return "", errors.ServiceFailure("pexels", 0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnw("Pexels API returned non-OK status", "statusCode", resp.StatusCode)
		return "", errors.ServiceFailure("pexels", resp.StatusCode, fmt.Sprintf("pexels API returned status: %d", resp.StatusCode))
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", errors.ParseFailed("pexels", err)
	}

	if len(searchResp.Photos) == 0 {
		log.Debugw("No photos found in Pexels response", "query", query)
		return "", nil
	}
	return searchResp.Photos[0].Source.Landscape, nil
}
