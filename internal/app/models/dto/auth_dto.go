package dto

import "github.com/okan/urcp/internal/app/models"

// RegisterRequest represents the payload for user registration
type RegisterRequest struct {
	Name       string `json:"name" binding:"required" example:"Jane Doe"`
	Email      string `json:"email" binding:"required,email" example:"jane.doe@university.edu"`
	Password   string `json:"password" binding:"required,min=8" example:"Password123!"`
	Role       string `json:"role" binding:"required,oneof=student faculty" example:"student"`
	Department string `json:"department" binding:"required" example:"Computer Engineering"`
}

// LoginRequest represents the payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane.doe@university.edu"`
	Password string `json:"password" binding:"required" example:"Password123!"`
}

// RefreshTokenRequest represents the payload for refreshing an access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries a freshly issued token pair and the authenticated user
type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn" example:"3600"`
	User         *models.User `json:"user,omitempty"`
}
