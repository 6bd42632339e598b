package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/valpere/meteopin/internal/models"
	"github.com/valpere/meteopin/pkg/metrics"
)

const favoritesCacheTTL = 5 * time.Minute

// AddLocationRequest carries the client-supplied fields for one Add call.
type AddLocationRequest struct {
	AddressName       string
	Latitude          float64
	Longitude         float64
	Region1DepthName  string
	Region2DepthName  string
	Region3DepthName  string
	Region3DepthHName string
	DeviceID          string
}

// FavoritesService owns the business rules over the favorite-location store:
// duplicate prevention, device-scoped mutation and the list ordering contract.
type FavoritesService struct {
	db      *gorm.DB
	redis   *redis.Client
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewFavoritesService(db *gorm.DB, redis *redis.Client, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *FavoritesService {
	return &FavoritesService{
		db:      db,
		redis:   redis,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// AddLocation saves a new favorite for a device and returns the stored row,
// sequence id and creation timestamp included.
//
// The duplicate pre-check keeps the common case a cheap business-rule failure;
// the unique index on (device_id, latitude, longitude) decides races between
// concurrent adds, and a losing insert surfaces as the same duplicate error.
func (s *FavoritesService) AddLocation(ctx context.Context, req *AddLocationRequest) (*models.FavoriteLocation, error) {
	if req.AddressName == "" || req.DeviceID == "" {
		return nil, ErrInvalidRequest
	}

	exists, err := s.CheckDuplicate(ctx, req.Latitude, req.Longitude, req.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate location: %w", err)
	}
	if exists {
		s.metrics.IncrementCounter("favorite_operations_total", "add", "duplicate")
		return nil, ErrDuplicateLocation
	}

	location := &models.FavoriteLocation{
		DeviceID:          req.DeviceID,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		AddressName:       req.AddressName,
		Region1DepthName:  req.Region1DepthName,
		Region2DepthName:  req.Region2DepthName,
		Region3DepthName:  req.Region3DepthName,
		Region3DepthHName: req.Region3DepthHName,
	}

	result := s.db.WithContext(ctx).Create(location)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			// Lost a race against a concurrent add of the same place.
			s.metrics.IncrementCounter("favorite_operations_total", "add", "duplicate")
			return nil, ErrDuplicateLocation
		}
		s.metrics.IncrementCounter("favorite_operations_total", "add", "error")
		return nil, fmt.Errorf("failed to insert favorite location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.metrics.IncrementCounter("favorite_operations_total", "add", "error")
		return nil, ErrPersistenceFailure
	}

	s.invalidateDeviceCache(ctx, req.DeviceID)

	// Re-fetch the device's list and return the stored row for the inserted
	// coordinates. Linear scan is fine at per-device list sizes.
	locations, err := s.ListLocations(ctx, req.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch stored location: %w", err)
	}
	for i := range locations {
		if locations[i].Latitude == req.Latitude && locations[i].Longitude == req.Longitude {
			s.metrics.IncrementCounter("favorite_operations_total", "add", "success")
			return &locations[i], nil
		}
	}

	return nil, ErrPersistenceFailure
}

// ListLocations returns a device's favorites ordered by ascending sort_order
// with never-ordered rows trailing, newest first. The ordering is produced by
// the store query, not in memory.
func (s *FavoritesService) ListLocations(ctx context.Context, deviceID string) ([]models.FavoriteLocation, error) {
	cacheKey := favoritesCacheKey(deviceID)
	cached, err := s.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var locations []models.FavoriteLocation
		if err := json.Unmarshal([]byte(cached), &locations); err == nil {
			return locations, nil
		}
	}

	var locations []models.FavoriteLocation
	if err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("sort_order ASC NULLS LAST, created_at DESC").
		Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorite locations: %w", err)
	}

	locationsJSON, _ := json.Marshal(locations)
	s.redis.Set(ctx, cacheKey, locationsJSON, favoritesCacheTTL)

	return locations, nil
}

// DeleteLocation removes the device's favorite identified by the exact
// coordinate pair and returns its address name for the response message.
func (s *FavoritesService) DeleteLocation(ctx context.Context, latitude, longitude float64, deviceID string) (string, error) {
	var location models.FavoriteLocation
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND latitude = ? AND longitude = ?", deviceID, latitude, longitude).
		First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncrementCounter("favorite_operations_total", "delete", "not_found")
			return "", ErrLocationNotFound
		}
		return "", fmt.Errorf("failed to look up favorite location: %w", err)
	}

	result := s.db.WithContext(ctx).
		Where("device_id = ? AND latitude = ? AND longitude = ?", deviceID, latitude, longitude).
		Delete(&models.FavoriteLocation{})
	if result.Error != nil {
		s.metrics.IncrementCounter("favorite_operations_total", "delete", "error")
		return "", fmt.Errorf("failed to delete favorite location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.metrics.IncrementCounter("favorite_operations_total", "delete", "not_found")
		return "", ErrLocationNotFound
	}

	s.invalidateDeviceCache(ctx, deviceID)
	s.metrics.IncrementCounter("favorite_operations_total", "delete", "success")

	return location.AddressName, nil
}

// UpdateSortOrder changes only the sort_order of the targeted row.
func (s *FavoritesService) UpdateSortOrder(ctx context.Context, latitude, longitude float64, deviceID string, sortOrder int) error {
	result := s.db.WithContext(ctx).
		Model(&models.FavoriteLocation{}).
		Where("device_id = ? AND latitude = ? AND longitude = ?", deviceID, latitude, longitude).
		Update("sort_order", sortOrder)
	if result.Error != nil {
		s.metrics.IncrementCounter("favorite_operations_total", "reorder", "error")
		return fmt.Errorf("failed to update sort order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.metrics.IncrementCounter("favorite_operations_total", "reorder", "not_found")
		return ErrLocationNotFound
	}

	s.invalidateDeviceCache(ctx, deviceID)
	s.metrics.IncrementCounter("favorite_operations_total", "reorder", "success")

	return nil
}

// CheckDuplicate reports whether the device already saved this exact
// coordinate pair. Read-only, no tolerance on the comparison.
func (s *FavoritesService) CheckDuplicate(ctx context.Context, latitude, longitude float64, deviceID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FavoriteLocation{}).
		Where("device_id = ? AND latitude = ? AND longitude = ?", deviceID, latitude, longitude).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate location: %w", err)
	}

	return count > 0, nil
}

// CountLocations returns the number of favorites a device has saved.
func (s *FavoritesService) CountLocations(ctx context.Context, deviceID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FavoriteLocation{}).
		Where("device_id = ?", deviceID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count favorite locations: %w", err)
	}

	return count, nil
}

func (s *FavoritesService) invalidateDeviceCache(ctx context.Context, deviceID string) {
	if err := s.redis.Del(ctx, favoritesCacheKey(deviceID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to invalidate favorites cache")
	}
}

func favoritesCacheKey(deviceID string) string {
	return fmt.Sprintf("favorites:%s", deviceID)
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
