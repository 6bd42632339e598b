package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/meteopin/internal/config"
	"github.com/valpere/meteopin/pkg/metrics"
	"github.com/valpere/meteopin/pkg/openmeteo"
)

// WeatherService fronts the Open-Meteo gateway. It deliberately collapses
// every upstream failure into ErrUpstreamUnavailable; the concrete cause is
// kept in the log only, so callers cannot branch on it.
type WeatherService struct {
	client  *openmeteo.Client
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewWeatherService(cfg *config.UpstreamConfig, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *WeatherService {
	client := openmeteo.NewClient(openmeteo.ClientConfig{
		ForecastBaseURL:   cfg.ForecastBaseURL,
		AirQualityBaseURL: cfg.AirQualityBaseURL,
		UserAgent:         cfg.UserAgent,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
	})

	return &WeatherService{
		client:  client,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Execute routes one proxied request by flag and returns the raw upstream
// payload. An unknown flag is rejected before any network call.
func (s *WeatherService) Execute(ctx context.Context, flag string, query openmeteo.Query) (map[string]interface{}, error) {
	domain, err := openmeteo.ParseDomain(flag)
	if err != nil {
		s.logger.Warn().Err(err).Str("flag", flag).Msg("Rejected unknown routing flag")
		return nil, ErrInvalidRequest
	}

	start := time.Now()
	payload, err := s.client.Execute(ctx, domain, query)
	s.metrics.ObserveHistogram("upstream_request_duration_seconds", time.Since(start).Seconds(), domain.String())

	if err != nil {
		s.metrics.IncrementCounter("upstream_requests_total", domain.String(), "error")
		s.logger.Error().
			Err(err).
			Str("domain", domain.String()).
			Str("latitude", query.Latitude).
			Str("longitude", query.Longitude).
			Msg("Upstream request failed")
		return nil, ErrUpstreamUnavailable
	}

	s.metrics.IncrementCounter("upstream_requests_total", domain.String(), "success")

	return payload, nil
}
