package models

import (
	"time"

	"gorm.io/gorm"
)

// FavoriteLocation is one saved place for one device. The (device_id,
// latitude, longitude) triple is the natural key: the composite unique index
// closes the race between two concurrent adds of the same place, so the
// application-level duplicate pre-check is a fast path, not the guarantee.
type FavoriteLocation struct {
	ID                int64   `gorm:"primaryKey;autoIncrement" json:"seqNo"`
	DeviceID          string  `gorm:"index;uniqueIndex:idx_device_coordinates;not null" json:"deviceId"`
	Latitude          float64 `gorm:"uniqueIndex:idx_device_coordinates;not null" json:"latitude"`
	Longitude         float64 `gorm:"uniqueIndex:idx_device_coordinates;not null" json:"longitude"`
	AddressName       string  `gorm:"not null" json:"addressName"`
	Region1DepthName  string  `json:"region1DepthName"`
	Region2DepthName  string  `json:"region2DepthName"`
	Region3DepthName  string  `json:"region3DepthName"`
	Region3DepthHName string  `json:"region3DepthHName"`

	// SortOrder is user-assigned; nil means "never manually ordered" and
	// such rows list after all ordered ones, newest first.
	SortOrder *int `json:"sortOrder,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&FavoriteLocation{},
	)
}
