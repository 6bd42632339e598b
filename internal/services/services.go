// Package services provides the business logic layer for meteopin.
// Each service encapsulates one domain: favorite locations over the store,
// and proxied Open-Meteo requests through the gateway client.
package services

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/valpere/meteopin/internal/config"
	"github.com/valpere/meteopin/pkg/metrics"
)

// Services is the central container for all business logic services.
// Services are initialized once during startup and safe for concurrent use.
type Services struct {
	Favorites *FavoritesService // Favorite location management per device
	Weather   *WeatherService   // Open-Meteo proxying (forecast + air quality)
}

// New creates a new Services container with all dependencies initialized.
func New(db *gorm.DB, redis *redis.Client, cfg *config.Config, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *Services {
	return &Services{
		Favorites: NewFavoritesService(db, redis, logger, metricsCollector),
		Weather:   NewWeatherService(&cfg.Upstream, logger, metricsCollector),
	}
}
