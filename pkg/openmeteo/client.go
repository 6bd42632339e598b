package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Domain selects which Open-Meteo data domain an outbound call targets.
type Domain int

const (
	DomainForecast Domain = iota + 1
	DomainAirQuality
)

const (
	// Flag values as clients send them.
	FlagWeather      = "weather"
	FlagAirPollution = "airPollution"

	defaultForecastBaseURL   = "https://api.open-meteo.com/v1"
	defaultAirQualityBaseURL = "https://air-quality-api.open-meteo.com/v1"
	defaultTimeout           = 10 * time.Second
)

// ParseDomain maps a client-supplied routing flag to a Domain. Unrecognized
// flags are rejected here instead of producing a base-less URL downstream.
func ParseDomain(flag string) (Domain, error) {
	switch flag {
	case FlagWeather:
		return DomainForecast, nil
	case FlagAirPollution:
		return DomainAirQuality, nil
	default:
		return 0, fmt.Errorf("unknown routing flag %q", flag)
	}
}

func (d Domain) String() string {
	switch d {
	case DomainForecast:
		return "forecast"
	case DomainAirQuality:
		return "air_quality"
	default:
		return "unknown"
	}
}

// Query carries the parameters for one outbound call. Latitude and Longitude
// are kept as the exact text the client sent; RawParams is an already-encoded
// query fragment appended verbatim, the caller is responsible for its validity.
type Query struct {
	Latitude  string
	Longitude string
	RawParams string
}

// ClientConfig overrides the default endpoints, mainly for tests.
type ClientConfig struct {
	ForecastBaseURL   string
	AirQualityBaseURL string
	UserAgent         string
	Timeout           time.Duration
}

// Client represents an Open-Meteo API client
type Client struct {
	forecastBaseURL   string
	airQualityBaseURL string
	userAgent         string
	httpClient        *http.Client
}

// NewClient creates a new Open-Meteo API client
func NewClient(cfg ClientConfig) *Client {
	if cfg.ForecastBaseURL == "" {
		cfg.ForecastBaseURL = defaultForecastBaseURL
	}
	if cfg.AirQualityBaseURL == "" {
		cfg.AirQualityBaseURL = defaultAirQualityBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		forecastBaseURL:   cfg.ForecastBaseURL,
		airQualityBaseURL: cfg.AirQualityBaseURL,
		userAgent:         cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Execute performs a single GET against the selected domain and returns the
// decoded JSON object body. One call, no retries, no caching.
func (c *Client) Execute(ctx context.Context, domain Domain, q Query) (map[string]interface{}, error) {
	requestURL, err := c.buildURL(domain, q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return payload, nil
}

// buildURL assembles base + path + "?latitude=..&longitude=..&" + RawParams.
// RawParams is appended with no further escaping.
func (c *Client) buildURL(domain Domain, q Query) (string, error) {
	var base, path string
	switch domain {
	case DomainForecast:
		base, path = c.forecastBaseURL, "/forecast"
	case DomainAirQuality:
		base, path = c.airQualityBaseURL, "/air-quality"
	default:
		return "", fmt.Errorf("unsupported domain: %d", domain)
	}

	return base + path + "?latitude=" + q.Latitude + "&longitude=" + q.Longitude + "&" + q.RawParams, nil
}
