package helpers

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valpere/meteopin/internal/models"
)

// FavoriteLocationColumns lists the columns of the favorite_locations table
// in GORM field order, for building mock result rows.
var FavoriteLocationColumns = []string{
	"id", "device_id", "latitude", "longitude", "address_name",
	"region1_depth_name", "region2_depth_name", "region3_depth_name",
	"region3_depth_h_name", "sort_order", "created_at",
}

// MockDB represents a mocked database connection for testing
type MockDB struct {
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

// NewMockDB creates a new mock database connection
func NewMockDB(t *testing.T) *MockDB {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)

	return &MockDB{
		DB:   gormDB,
		Mock: mock,
	}
}

// Close closes the mock database connection
func (m *MockDB) Close() error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ExpectationsWereMet checks if all expected database interactions were met
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	require.NoError(t, m.Mock.ExpectationsWereMet())
}

// MockFavoriteLocation creates a mock favorite location for testing
func MockFavoriteLocation(id int64, deviceID string, lat, lng float64) *models.FavoriteLocation {
	return &models.FavoriteLocation{
		ID:               id,
		DeviceID:         deviceID,
		Latitude:         lat,
		Longitude:        lng,
		AddressName:      "Seoul City Hall",
		Region1DepthName: "Seoul",
		Region2DepthName: "Jung-gu",
		Region3DepthName: "Taepyeongno 1-ga",
		CreatedAt:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// FavoriteLocationRows converts locations into sqlmock rows in column order.
func FavoriteLocationRows(locations ...*models.FavoriteLocation) *sqlmock.Rows {
	rows := sqlmock.NewRows(FavoriteLocationColumns)
	for _, loc := range locations {
		rows.AddRow(
			loc.ID, loc.DeviceID, loc.Latitude, loc.Longitude, loc.AddressName,
			loc.Region1DepthName, loc.Region2DepthName, loc.Region3DepthName,
			loc.Region3DepthHName, loc.SortOrder, loc.CreatedAt,
		)
	}
	return rows
}

// ExpectCoordinateCount sets up expectations for the duplicate-check count query
func (m *MockDB) ExpectCoordinateCount(deviceID string, lat, lng float64, count int64) {
	m.Mock.ExpectQuery(`SELECT count\(\*\) FROM "favorite_locations"`).
		WithArgs(deviceID, lat, lng).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

// ExpectDeviceCount sets up expectations for the per-device count query
func (m *MockDB) ExpectDeviceCount(deviceID string, count int64) {
	m.Mock.ExpectQuery(`SELECT count\(\*\) FROM "favorite_locations"`).
		WithArgs(deviceID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

// ExpectFavoriteInsert sets up expectations for inserting a favorite location
func (m *MockDB) ExpectFavoriteInsert(id int64) {
	m.Mock.ExpectBegin()
	m.Mock.ExpectQuery(`INSERT INTO "favorite_locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
	m.Mock.ExpectCommit()
}

// ExpectFavoritesList sets up expectations for the ordered device list query
func (m *MockDB) ExpectFavoritesList(deviceID string, locations ...*models.FavoriteLocation) {
	m.Mock.ExpectQuery(`SELECT \* FROM "favorite_locations" WHERE device_id = \$1`).
		WithArgs(deviceID).
		WillReturnRows(FavoriteLocationRows(locations...))
}

// ExpectFavoriteFind sets up expectations for the single-row coordinate lookup
func (m *MockDB) ExpectFavoriteFind(deviceID string, lat, lng float64, location *models.FavoriteLocation) {
	m.Mock.ExpectQuery(`SELECT \* FROM "favorite_locations" WHERE device_id = \$1 AND latitude = \$2 AND longitude = \$3`).
		WithArgs(deviceID, lat, lng, 1).
		WillReturnRows(FavoriteLocationRows(location))
}

// ExpectFavoriteDelete sets up expectations for deleting a favorite location
func (m *MockDB) ExpectFavoriteDelete(deviceID string, lat, lng float64, rowsAffected int64) {
	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(`DELETE FROM "favorite_locations"`).
		WithArgs(deviceID, lat, lng).
		WillReturnResult(sqlmock.NewResult(0, rowsAffected))
	m.Mock.ExpectCommit()
}

// ExpectSortOrderUpdate sets up expectations for the sort-order update
func (m *MockDB) ExpectSortOrderUpdate(deviceID string, lat, lng float64, sortOrder int, rowsAffected int64) {
	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(`UPDATE "favorite_locations" SET "sort_order"=\$1`).
		WithArgs(sortOrder, deviceID, lat, lng).
		WillReturnResult(sqlmock.NewResult(0, rowsAffected))
	m.Mock.ExpectCommit()
}

// NewResult creates a new SQL result for testing
func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}
