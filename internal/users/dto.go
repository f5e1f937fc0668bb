package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
)

// UserDTO is the public shape of an account. The password hash never leaves
// the repository layer.
type UserDTO struct {
	ID                 uuid.UUID      `json:"id"`
	Email              string         `json:"email"`
	Name               string         `json:"name"`
	Role               enums.UserRole `json:"role"`
	CompanyName        *string        `json:"company_name,omitempty"`
	CompanyDescription *string        `json:"company_description,omitempty"`
	AvatarURL          *string        `json:"avatar_url,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// FromModel maps a user row to its public DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		Role:               user.Role,
		CompanyName:        user.CompanyName,
		CompanyDescription: user.CompanyDescription,
		AvatarURL:          user.AvatarURL,
		CreatedAt:          user.CreatedAt,
	}
}
