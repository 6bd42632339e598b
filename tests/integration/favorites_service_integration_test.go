//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/valpere/meteopin/internal/models"
	"github.com/valpere/meteopin/internal/services"
	"github.com/valpere/meteopin/pkg/metrics"
	"github.com/valpere/meteopin/tests/helpers"
)

type FavoritesServiceTestSuite struct {
	db               *gorm.DB
	redisClient      *redis.Client
	pgContainer      testcontainers.Container
	redisContainer   testcontainers.Container
	favoritesService *services.FavoritesService
}

func setupFavoritesServiceTest(t *testing.T) *FavoritesServiceTestSuite {
	ctx := context.Background()

	// Start PostgreSQL container
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err)

	// Start Redis container
	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: redisReq,
		Started:          true,
	})
	require.NoError(t, err)

	// Get container ports
	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)

	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	// Connect to PostgreSQL
	dsn := "host=" + pgHost + " user=testuser password=testpass dbname=testdb port=" + pgPort.Port() + " sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisHost + ":" + redisPort.Port(),
	})

	// Test connections
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	pong, err := redisClient.Ping(ctx).Result()
	require.NoError(t, err)
	require.Equal(t, "PONG", pong)

	// Run migrations
	require.NoError(t, models.Migrate(db))

	// Create favorites service
	logger := helpers.NewSilentTestLogger()
	favoritesService := services.NewFavoritesService(db, redisClient, logger, metrics.New())

	return &FavoritesServiceTestSuite{
		db:               db,
		redisClient:      redisClient,
		pgContainer:      pgContainer,
		redisContainer:   redisContainer,
		favoritesService: favoritesService,
	}
}

func (suite *FavoritesServiceTestSuite) teardown(t *testing.T) {
	ctx := context.Background()

	if suite.redisClient != nil {
		suite.redisClient.Close()
	}

	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}

	if suite.pgContainer != nil {
		require.NoError(t, suite.pgContainer.Terminate(ctx))
	}

	if suite.redisContainer != nil {
		require.NoError(t, suite.redisContainer.Terminate(ctx))
	}
}

func addLocationRequest(deviceID, addressName string, lat, lng float64) *services.AddLocationRequest {
	return &services.AddLocationRequest{
		AddressName:      addressName,
		Latitude:         lat,
		Longitude:        lng,
		Region1DepthName: "Seoul",
		Region2DepthName: "Jung-gu",
		DeviceID:         deviceID,
	}
}

func TestIntegration_FavoritesServiceAddLocation(t *testing.T) {
	suite := setupFavoritesServiceTest(t)
	defer suite.teardown(t)

	ctx := context.Background()

	t.Run("add new location successfully", func(t *testing.T) {
		deviceID := "device-add-1"

		location, err := suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Seoul City Hall", 37.5663, 126.9779))
		require.NoError(t, err)
		require.NotNil(t, location)

		assert.NotZero(t, location.ID)
		assert.Equal(t, deviceID, location.DeviceID)
		assert.Equal(t, "Seoul City Hall", location.AddressName)
		assert.NotZero(t, location.CreatedAt)

		// Verify row exists in the database
		var count int64
		err = suite.db.Model(&models.FavoriteLocation{}).Where("device_id = ?", deviceID).Count(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("adding the same coordinates twice is rejected", func(t *testing.T) {
		deviceID := "device-add-2"

		_, err := suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Gwanghwamun", 37.5759, 126.9769))
		require.NoError(t, err)

		_, err = suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Gwanghwamun", 37.5759, 126.9769))
		assert.ErrorIs(t, err, services.ErrDuplicateLocation)
	})

	t.Run("same coordinates on another device are allowed", func(t *testing.T) {
		_, err := suite.favoritesService.AddLocation(ctx, addLocationRequest("device-add-3a", "Namsan Tower", 37.5512, 126.9882))
		require.NoError(t, err)

		_, err = suite.favoritesService.AddLocation(ctx, addLocationRequest("device-add-3b", "Namsan Tower", 37.5512, 126.9882))
		require.NoError(t, err)
	})

	t.Run("unique constraint closes the check-then-insert race", func(t *testing.T) {
		deviceID := "device-add-4"

		_, err := suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Dongdaemun", 37.5714, 127.0098))
		require.NoError(t, err)

		// Bypass the service pre-check and insert directly, as a racing
		// request would after both pre-checks passed.
		err = suite.db.Create(&models.FavoriteLocation{
			DeviceID:    deviceID,
			Latitude:    37.5714,
			Longitude:   127.0098,
			AddressName: "Dongdaemun",
		}).Error
		assert.Error(t, err)
	})
}

func TestIntegration_FavoritesServiceListOrdering(t *testing.T) {
	suite := setupFavoritesServiceTest(t)
	defer suite.teardown(t)

	ctx := context.Background()
	deviceID := "device-ordering"

	sortOrder := func(v int) *int { return &v }

	// Two ordered rows and two never-ordered rows with distinct creation times.
	rows := []*models.FavoriteLocation{
		{DeviceID: deviceID, Latitude: 1, Longitude: 1, AddressName: "second ordered", SortOrder: sortOrder(2), CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{DeviceID: deviceID, Latitude: 2, Longitude: 2, AddressName: "first ordered", SortOrder: sortOrder(1), CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{DeviceID: deviceID, Latitude: 3, Longitude: 3, AddressName: "older unordered", CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
		{DeviceID: deviceID, Latitude: 4, Longitude: 4, AddressName: "newer unordered", CreatedAt: time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, row := range rows {
		require.NoError(t, suite.db.Create(row).Error)
	}

	locations, err := suite.favoritesService.ListLocations(ctx, deviceID)
	require.NoError(t, err)
	require.Len(t, locations, 4)

	// Ascending sort order first, unordered rows trail newest first.
	assert.Equal(t, "first ordered", locations[0].AddressName)
	assert.Equal(t, "second ordered", locations[1].AddressName)
	assert.Equal(t, "newer unordered", locations[2].AddressName)
	assert.Equal(t, "older unordered", locations[3].AddressName)

	// The list is cached for subsequent calls.
	cacheKey := fmt.Sprintf("favorites:%s", deviceID)
	cached, err := suite.redisClient.Get(ctx, cacheKey).Result()
	require.NoError(t, err)
	assert.NotEmpty(t, cached)

	again, err := suite.favoritesService.ListLocations(ctx, deviceID)
	require.NoError(t, err)
	assert.Len(t, again, 4)
}

func TestIntegration_FavoritesServiceDeleteLocation(t *testing.T) {
	suite := setupFavoritesServiceTest(t)
	defer suite.teardown(t)

	ctx := context.Background()

	t.Run("delete existing location returns address name", func(t *testing.T) {
		deviceID := "device-delete-1"

		_, err := suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Hongdae", 37.5563, 126.9220))
		require.NoError(t, err)

		addressName, err := suite.favoritesService.DeleteLocation(ctx, 37.5563, 126.9220, deviceID)
		require.NoError(t, err)
		assert.Equal(t, "Hongdae", addressName)

		count, err := suite.favoritesService.CountLocations(ctx, deviceID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("delete unknown location", func(t *testing.T) {
		_, err := suite.favoritesService.DeleteLocation(ctx, 0.1, 0.2, "device-delete-2")
		assert.ErrorIs(t, err, services.ErrLocationNotFound)
	})

	t.Run("delete invalidates the cached list", func(t *testing.T) {
		deviceID := "device-delete-3"

		_, err := suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Itaewon", 37.5345, 126.9947))
		require.NoError(t, err)

		// Populate cache
		_, err = suite.favoritesService.ListLocations(ctx, deviceID)
		require.NoError(t, err)

		_, err = suite.favoritesService.DeleteLocation(ctx, 37.5345, 126.9947, deviceID)
		require.NoError(t, err)

		cacheKey := fmt.Sprintf("favorites:%s", deviceID)
		_, err = suite.redisClient.Get(ctx, cacheKey).Result()
		assert.ErrorIs(t, err, redis.Nil)
	})
}

func TestIntegration_FavoritesServiceUpdateSortOrder(t *testing.T) {
	suite := setupFavoritesServiceTest(t)
	defer suite.teardown(t)

	ctx := context.Background()

	t.Run("update sort order of existing location", func(t *testing.T) {
		deviceID := "device-sort-1"

		_, err := suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Jamsil", 37.5133, 127.1001))
		require.NoError(t, err)

		err = suite.favoritesService.UpdateSortOrder(ctx, 37.5133, 127.1001, deviceID, 5)
		require.NoError(t, err)

		var updated models.FavoriteLocation
		err = suite.db.Where("device_id = ?", deviceID).First(&updated).Error
		require.NoError(t, err)
		require.NotNil(t, updated.SortOrder)
		assert.Equal(t, 5, *updated.SortOrder)
	})

	t.Run("update unknown location", func(t *testing.T) {
		err := suite.favoritesService.UpdateSortOrder(ctx, 0.1, 0.2, "device-sort-2", 1)
		assert.ErrorIs(t, err, services.ErrLocationNotFound)
	})
}

func TestIntegration_FavoritesServiceCheckDuplicate(t *testing.T) {
	suite := setupFavoritesServiceTest(t)
	defer suite.teardown(t)

	ctx := context.Background()
	deviceID := "device-check-1"

	_, err := suite.favoritesService.AddLocation(ctx, addLocationRequest(deviceID, "Gangnam", 37.4979, 127.0276))
	require.NoError(t, err)

	t.Run("saved coordinates report duplicate", func(t *testing.T) {
		exists, err := suite.favoritesService.CheckDuplicate(ctx, 37.4979, 127.0276, deviceID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("nearby coordinates are distinct", func(t *testing.T) {
		exists, err := suite.favoritesService.CheckDuplicate(ctx, 37.4980, 127.0276, deviceID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("other device reports no duplicate", func(t *testing.T) {
		exists, err := suite.favoritesService.CheckDuplicate(ctx, 37.4979, 127.0276, "device-check-2")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
