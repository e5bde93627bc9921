package dto

import (
	"io"
	"time"

	"github.com/nandaraf/famtask/internal/entity"
)

// AvatarFile wraps an uploaded avatar stream with its original file name.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

// UpdateProfileInput represents the input for updating the caller's profile
type UpdateProfileInput struct {
	Username  *string `json:"username" form:"username"`
	Password  *string `json:"password" form:"password"`
	FullName  *string `json:"full_name" form:"full_name"`
	BirthYear *int    `json:"birth_year" form:"birth_year"`
	Bio       *string `json:"bio" form:"bio"`
}

// RankStatus summarizes where the user stands on the point ladder.
type RankStatus struct {
	RankName string  `json:"rank_name"`
	NextRank string  `json:"next_rank"`
	Points   int     `json:"points"`
	Streak   int     `json:"streak"`
	Progress float64 `json:"progress"`
}

// ProfileResponse is returned when updating the profile or fetching the
// current user's own profile.
type ProfileResponse struct {
	User    *entity.User    `json:"user"`
	Profile *entity.Profile `json:"profile"`
	Rank    RankStatus      `json:"rank"`
}

// PublicProfileResponse is returned when viewing another member's profile.
// It never exposes email or birth year.
type PublicProfileResponse struct {
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	FullName  string     `json:"full_name"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Rank      RankStatus `json:"rank"`
}
