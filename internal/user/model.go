// File: internal/user/model.go
package user

import (
	"time"
)

// User represents the user directory row. The primary key is the Google
// token subject, so a given identity maps to exactly one row.
type User struct {
	ID        string    `gorm:"type:varchar(128);primaryKey"`
	Email     string    `gorm:"type:varchar(255);not null;index"`
	Name      *string   `gorm:"type:varchar(255)"`
	Role      string    `gorm:"type:varchar(20);not null;default:'viewer'"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
