package dto

import "github.com/nandaraf/famtask/internal/entity"

type CreateMemberInput struct {
	Username  string  `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email     string  `json:"email" form:"email" binding:"required,email"`
	Password  string  `json:"password" form:"password" binding:"required,min=8"`
	Role      string  `json:"role" form:"role" binding:"required,oneof=admin parent kid"`
	FullName  string  `json:"full_name" form:"full_name" binding:"required"`
	BirthYear *int    `json:"birth_year" form:"birth_year"`
	Bio       *string `json:"bio" form:"bio"`
}

type UpdateMemberInput struct {
	Username  string  `json:"username" form:"username"`
	Email     string  `json:"email" form:"email"`
	Password  string  `json:"password" form:"password"`
	Role      string  `json:"role" form:"role"`
	FullName  string  `json:"full_name" form:"full_name"`
	BirthYear *int    `json:"birth_year" form:"birth_year"`
	Bio       *string `json:"bio" form:"bio"`
}

type MemberResponse struct {
	User    *entity.User    `json:"user"`
	Role    *entity.Role    `json:"role"`
	Profile *entity.Profile `json:"profile"`
}
