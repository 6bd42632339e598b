package helpers

import (
	"github.com/valpere/meteopin/internal/config"
)

// NewTestConfig creates a configuration suitable for unit tests
func NewTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         8080,
			ReadTimeout:  5,
			WriteTimeout: 5,
		},
		Database: config.DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "test",
			Name:    "meteopin_test",
			SSLMode: "disable",
		},
		Redis: config.RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Upstream: config.UpstreamConfig{
			ForecastBaseURL:   "https://api.open-meteo.com/v1",
			AirQualityBaseURL: "https://air-quality-api.open-meteo.com/v1",
			TimeoutSeconds:    2,
			UserAgent:         "MeteoPin-Test/1.0",
		},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "json",
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             100,
		},
	}
}
