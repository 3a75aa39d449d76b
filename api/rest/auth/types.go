package auth

import "codeberg.org/mediagate/server/mediagate/profiles"

// returned by GET /auth/me
type MeResponse struct {
	User       *profiles.Profile    `json:"user"`
	Membership *profiles.Membership `json:"membership"`
}

// wraps profile data
type UserResponse struct {
	User *profiles.Profile `json:"user"`
}

// for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}

// for updating the caller's profile
type UpdateProfileRequest struct {
	Username  string  `json:"username" binding:"required,max=50"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=500"`
}
