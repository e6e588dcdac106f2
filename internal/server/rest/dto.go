package rest

import "github.com/dmitrijs2005/gophauth/internal/server/models"

// RegisterRequest is the register payload.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,max=64" example:"john_doe"`
	Email       string `json:"email" binding:"required,email" example:"john.doe@example.com"`
	Password    string `json:"password" binding:"required,max=72" example:"password123"`
	FirstName   string `json:"firstName" binding:"omitempty,max=100" example:"John"`
	LastName    string `json:"lastName" binding:"omitempty,max=100" example:"Doe"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=32" example:"+1234567890"`
}

func (r RegisterRequest) model() models.RegisterRequest {
	return models.RegisterRequest{
		Username:    r.Username,
		Email:       r.Email,
		Password:    r.Password,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"john_doe"`
	Password string `json:"password" binding:"required" example:"password123"`
}

func (r LoginRequest) model() models.LoginRequest {
	return models.LoginRequest{Username: r.Username, Password: r.Password}
}

// RefreshTokenRequest carries a refresh token for refresh and logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
