package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/meteopin/pkg/metrics"
	"github.com/valpere/meteopin/pkg/openmeteo"
	"github.com/valpere/meteopin/tests/fixtures"
	"github.com/valpere/meteopin/tests/helpers"
)

func newTestWeatherService() *WeatherService {
	cfg := helpers.NewTestConfig()
	logger := helpers.NewSilentTestLogger()

	return NewWeatherService(&cfg.Upstream, logger, metrics.New())
}

func TestWeatherService_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("weather flag routes to forecast endpoint", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("GET",
			"https://api.open-meteo.com/v1/forecast",
			httpmock.NewStringResponder(200, fixtures.GetMockForecastResponse()))

		service := newTestWeatherService()

		payload, err := service.Execute(ctx, "weather", openmeteo.Query{
			Latitude:  "37.5",
			Longitude: "127.0",
			RawParams: "hourly=temperature_2m",
		})

		require.NoError(t, err)
		require.NotNil(t, payload)
		assert.Equal(t, 37.5, payload["latitude"])
		assert.Contains(t, payload, "hourly")
	})

	t.Run("airPollution flag routes to air quality endpoint", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("GET",
			"https://air-quality-api.open-meteo.com/v1/air-quality",
			httpmock.NewStringResponder(200, fixtures.GetMockAirQualityResponse()))

		service := newTestWeatherService()

		payload, err := service.Execute(ctx, "airPollution", openmeteo.Query{
			Latitude:  "37.5",
			Longitude: "127.0",
			RawParams: "hourly=pm2_5",
		})

		require.NoError(t, err)
		require.NotNil(t, payload)
		assert.Contains(t, payload, "hourly")
	})

	t.Run("unknown flag is rejected without a network call", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		service := newTestWeatherService()

		payload, err := service.Execute(ctx, "ocean", openmeteo.Query{Latitude: "1", Longitude: "2"})

		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Nil(t, payload)
		assert.Zero(t, httpmock.GetTotalCallCount())
	})

	t.Run("upstream error collapses to unavailable", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("GET",
			"https://api.open-meteo.com/v1/forecast",
			httpmock.NewStringResponder(503, `{"error": true, "reason": "service temporarily unavailable"}`))

		service := newTestWeatherService()

		payload, err := service.Execute(ctx, "weather", openmeteo.Query{Latitude: "1", Longitude: "2"})

		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Nil(t, payload)
	})

	t.Run("malformed upstream body collapses to unavailable", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("GET",
			"https://api.open-meteo.com/v1/forecast",
			httpmock.NewStringResponder(200, fixtures.GetInvalidJSONResponse()))

		service := newTestWeatherService()

		payload, err := service.Execute(ctx, "weather", openmeteo.Query{Latitude: "1", Longitude: "2"})

		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Nil(t, payload)
	})

	t.Run("network failure collapses to unavailable", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("GET",
			"https://api.open-meteo.com/v1/forecast",
			httpmock.NewErrorResponder(http.ErrHandlerTimeout))

		service := newTestWeatherService()

		payload, err := service.Execute(ctx, "weather", openmeteo.Query{Latitude: "1", Longitude: "2"})

		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Nil(t, payload)
	})
}
