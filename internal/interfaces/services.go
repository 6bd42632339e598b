package interfaces

import (
	"context"

	"github.com/valpere/meteopin/internal/models"
	"github.com/valpere/meteopin/internal/services"
	"github.com/valpere/meteopin/pkg/openmeteo"
)

// FavoritesServiceInterface defines the interface for favorite location operations
type FavoritesServiceInterface interface {
	AddLocation(ctx context.Context, req *services.AddLocationRequest) (*models.FavoriteLocation, error)
	ListLocations(ctx context.Context, deviceID string) ([]models.FavoriteLocation, error)
	DeleteLocation(ctx context.Context, latitude, longitude float64, deviceID string) (string, error)
	UpdateSortOrder(ctx context.Context, latitude, longitude float64, deviceID string, sortOrder int) error
	CheckDuplicate(ctx context.Context, latitude, longitude float64, deviceID string) (bool, error)
	CountLocations(ctx context.Context, deviceID string) (int64, error)
}

// WeatherServiceInterface defines the interface for proxied Open-Meteo calls
type WeatherServiceInterface interface {
	Execute(ctx context.Context, flag string, query openmeteo.Query) (map[string]interface{}, error)
}
