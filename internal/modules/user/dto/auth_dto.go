package dto

import (
	"time"

	"github.com/google/uuid"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	Points     int        `json:"points"`
	Streak     int        `json:"streak"`
	LastStreak *time.Time `json:"last_streak,omitempty"`
	FullName   string     `json:"full_name,omitempty"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
