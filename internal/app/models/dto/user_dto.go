package dto

// UpdateProfileRequest represents the payload for updating the caller's profile
type UpdateProfileRequest struct {
	Name      *string  `json:"name,omitempty" example:"Jane Doe"`
	Bio       *string  `json:"bio,omitempty" example:"Working on quantum sensing"`
	Interests []string `json:"interests,omitempty"`
	Theme     *string  `json:"theme,omitempty" binding:"omitempty,oneof=light dark" example:"dark"`
}
