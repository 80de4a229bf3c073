package user

import (
	"nexus_mapping_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:        dbUser.ID,
		Email:     dbUser.Email,
		Name:      dbUser.Name,
		Role:      dbUser.Role,
		CreatedAt: dbUser.CreatedAt,
	}
}

// ToUserResponse converts a shared.User to the API response DTO.
func ToUserResponse(usr *shared.User) UserResponse {
	return UserResponse{
		UID:       usr.ID,
		Email:     usr.Email,
		Name:      usr.Name,
		Role:      usr.Role,
		CreatedAt: usr.CreatedAt,
	}
}
