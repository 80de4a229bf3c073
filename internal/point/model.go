// File: internal/point/model.go
package point

import (
	"time"
)

// PointIDPrefix is prepended to the generated map point identifiers.
const PointIDPrefix = "NEX-PT-"

// Status is the review state of a map point.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Valid reports whether s is one of the recognized status values.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// MapPoint represents a geotagged field report. Rows are created through the
// public submission endpoint, mutated only through the admin update endpoint,
// and deleted only by the bulk reseed.
type MapPoint struct {
	PointID     string    `gorm:"column:point_id;type:varchar(32);primaryKey" json:"pointId"`
	UserID      string    `gorm:"column:user_id;type:varchar(128);not null" json:"userId"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
	Status      Status    `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	Latitude    float64   `gorm:"column:latitude;not null" json:"latitude"`
	Longitude   float64   `gorm:"column:longitude;not null" json:"longitude"`
	Accuracy    float64   `gorm:"column:accuracy;not null" json:"accuracy"`
	Address     *string   `gorm:"column:address;type:text" json:"address,omitempty"`
	PhotoID     string    `gorm:"column:photo_id;type:varchar(128);not null" json:"photoId"`
	AdminNotes  *string   `gorm:"column:admin_notes;type:text" json:"adminNotes,omitempty"`
}

// TableName specifies the table name for the MapPoint model.
func (MapPoint) TableName() string {
	return "map_points"
}

// --- DTOs for API requests ---

// CreateMapPointRequest defines the payload of the public submission endpoint.
// pointId, timestamp and status are always assigned server-side.
type CreateMapPointRequest struct {
	UserID      string  `json:"userId" binding:"required"`
	Description string  `json:"description" binding:"required"`
	PhotoID     string  `json:"photoId" binding:"required"`
	Latitude    float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   float64 `json:"longitude" binding:"omitempty,longitude"`
	Accuracy    float64 `json:"accuracy"`
	Address     *string `json:"address"`
}

// UpdateMapPointRequest defines the partial-update payload of the admin
// endpoint. At least one field must be present.
type UpdateMapPointRequest struct {
	Status     *Status `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

// SearchQuery holds the list endpoint's filter and pagination parameters.
type SearchQuery struct {
	Query  string `form:"q"`
	Status string `form:"status"`
	Page   int    `form:"-"`
	Size   int    `form:"-"`
}
