package users

import "github.com/angelmondragon/shareit-backend/pkg/db/models"

// UserDTO is the public view of a user.
type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUserInput is the payload accepted when registering a user.
// ID is accepted because gateway bodies always carry it; the store assigns ids.
type CreateUserInput struct {
	ID    *int64 `json:"id"`
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
// ID is ignored, the path names the user.
type UpdateUserInput struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name" validate:"omitempty,notblank"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// FromModel maps a persisted user into its DTO.
func FromModel(m *models.User) UserDTO {
	return UserDTO{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}

func (in CreateUserInput) toModel() *models.User {
	return &models.User{
		Name:  in.Name,
		Email: in.Email,
	}
}
