// Package geocode wraps the Nominatim API for forward and reverse geocoding,
// with rate limiting and retry.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrNoResult means no variant of the query produced a hit.
var ErrNoResult = errors.New("geocode: no result")

// Result is a resolved location.
type Result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Config controls the Nominatim client.
type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	FallbackSuffixes  []string
	RequestsPerSecond float64
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://nominatim.openstreetmap.org",
		UserAgent:         "ferredex-quote-service/1.0",
		Timeout:           10 * time.Second,
		MaxRetries:        2,
		FallbackSuffixes:  []string{"Lima, Perú", "Perú"},
		RequestsPerSecond: 1,
	}
}

// Client is a rate-limited Nominatim client.
type Client struct {
	config  Config
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewClient(config Config) *Client {
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  log.With().Str("component", "geocoder").Logger(),
	}
}

// ErrInvalidQuery reports an unusable search query.
type ErrInvalidQuery struct {
	Reason string
}

func (e ErrInvalidQuery) Error() string {
	return "invalid query: " + e.Reason
}

type searchResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search resolves a free-text address. When the raw query misses, regional
// suffixes are appended and tried in order.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return nil, ErrInvalidQuery{Reason: "empty query"}
	}

	variants := []string{query}
	for _, suffix := range c.config.FallbackSuffixes {
		variants = append(variants, query+", "+suffix)
	}

	for _, v := range variants {
		res, err := c.searchOnce(ctx, v)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrNoResult) {
			return nil, err
		}
		c.logger.Debug().Str("query", v).Msg("no geocode result, trying fallback")
	}
	return nil, ErrNoResult
}

func (c *Client) searchOnce(ctx context.Context, query string) (*Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	body, err := c.get(ctx, "/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var results []searchResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}
	return parseResult(results[0])
}

// Reverse resolves coordinates to an address. On any failure it falls back to
// a plain "lat, lon" string rather than erroring.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) *Result {
	fallback := &Result{
		Latitude:  lat,
		Longitude: lon,
		Address:   fmt.Sprintf("%.6f, %.6f", lat, lon),
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")

	body, err := c.get(ctx, "/reverse?"+q.Encode())
	if err != nil {
		c.logger.Warn().Err(err).Msg("reverse geocode failed, using coordinates")
		return fallback
	}

	var res struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &res); err != nil || res.DisplayName == "" {
		return fallback
	}

	return &Result{Latitude: lat, Longitude: lon, Address: res.DisplayName}
}

// get performs a rate-limited GET with retry on 429 and server errors.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.config.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("geocode: status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("geocode: status %d", resp.StatusCode)
		}
		return body, nil
	}
	return nil, lastErr
}

func backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt-1)) * 250 * time.Millisecond
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func parseResult(r searchResponse) (*Result, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", r.Lon, err)
	}
	return &Result{Latitude: lat, Longitude: lon, Address: r.DisplayName}, nil
}
