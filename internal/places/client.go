// Package places is a small client for the Places text search API.
package places

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
	DefaultBaseURL       = "https://places.googleapis.com"
	DefaultTimeout       = 10 * time.Second
	DefaultPhotoMaxWidth = 400
	serviceName          = "places"
)

// SearchFieldMask requests everything needed to build a suggestion.
const SearchFieldMask = "places.id,places.displayName,places.formattedAddress,places.photos," +
	"places.location,places.rating,places.priceLevel,places.googleMapsUri,places.editorialSummary"

// PhotoFieldMask is enough to resolve a single place photo.
const PhotoFieldMask = "places.id,places.displayName,places.photos,places.location"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = apperrors.ServiceFailure(serviceName, 0, "places API key is not configured")

type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Photo struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx,omitempty"`
	HeightPx int    `json:"heightPx,omitempty"`
}

// Place is the subset of a place resource the planner reads.
type Place struct {
	ID               string         `json:"id"`
	DisplayName      *LocalizedText `json:"displayName,omitempty"`
	FormattedAddress string         `json:"formattedAddress,omitempty"`
	Photos           []Photo        `json:"photos,omitempty"`
	Location         *LatLng        `json:"location,omitempty"`
	Rating           *float64       `json:"rating,omitempty"`
	PriceLevel       string         `json:"priceLevel,omitempty"`
	GoogleMapsURI    string         `json:"googleMapsUri,omitempty"`
	EditorialSummary *LocalizedText `json:"editorialSummary,omitempty"`
}

type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type LocationBias struct {
	Circle Circle `json:"circle"`
}

// SearchRequest is the searchText request body.
type SearchRequest struct {
	TextQuery      string        `json:"textQuery"`
	IncludedType   string        `json:"includedType,omitempty"`
	MaxResultCount int           `json:"maxResultCount,omitempty"`
	LanguageCode   string        `json:"languageCode,omitempty"`
	LocationBias   *LocationBias `json:"locationBias,omitempty"`
}

type searchResponse struct {
	Places []Place `json:"places"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client calls the Places API. Every call is bounded by the client timeout.
type Client struct {
	apiKey        string
	baseURL       string
	languageCode  string
	photoMaxWidth int
	timeout       time.Duration
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

// WithBaseURL points the client at another host, used by tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLanguageCode(code string) ClientOption {
	return func(c *Client) {
		if code != "" {
			c.languageCode = code
		}
	}
}

func WithPhotoMaxWidth(px int) ClientOption {
	return func(c *Client) {
		if px > 0 {
			c.photoMaxWidth = px
		}
	}
}

// NewClient creates a new places client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       DefaultBaseURL,
		languageCode:  "en",
		photoMaxWidth: DefaultPhotoMaxWidth,
		timeout:       DefaultTimeout,
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

// PhotoMaxWidth is the width used when callers do not pick one.
func (c *Client) PhotoMaxWidth() int {
	return c.photoMaxWidth
}

// SearchText runs one text search. A language code on the request wins over
// the client default. Zero matches is an empty slice and no error.
func (c *Client) SearchText(ctx context.Context, req SearchRequest, fieldMask string) ([]Place, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if req.LanguageCode == "" {
		req.LanguageCode = c.languageCode
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	log := logger.GetLogger()
	log.Debugw("Places text search", "query", req.TextQuery, "includedType", req.IncludedType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			log.Warnw("Places request timed out", "query", req.TextQuery, "timeout", c.timeout)
			return nil, apperrors.Timeout(serviceName, err)
		}
		return nil, apperrors.ServiceFailure(serviceName, 0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apperrors.Timeout(serviceName, err)
		}
		return nil, apperrors.ServiceFailure(serviceName, resp.StatusCode, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			detail = apiErr.Error.Message
		}
		log.Warnw("Places API returned non-OK status", "statusCode", resp.StatusCode, "detail", detail)
		return nil, apperrors.ServiceFailure(serviceName, resp.StatusCode, detail)
	}

	var out searchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperrors.ParseFailed(serviceName, err)
	}
	if out.Places == nil {
		return []Place{}, nil
	}
	return out.Places, nil
}

// PhotoURL turns a photo resource name into a fetchable media URL. It
// returns "" when there is no photo or no key.
func (c *Client) PhotoURL(name string, maxWidth int) string {
	if name == "" || !c.Enabled() {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = c.photoMaxWidth
	}
	return fmt.Sprintf("%s/v1/%s/media?maxWidthPx=%d&key=%s", c.baseURL, name, maxWidth, c.apiKey)
}

// FirstPhotoURL returns the media URL of the first photo of p, if any.
func (c *Client) FirstPhotoURL(p Place, maxWidth int) string {
	if len(p.Photos) == 0 {
		return ""
	}
	return c.PhotoURL(p.Photos[0].Name, maxWidth)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
