package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nandaraf/famtask/internal/entity"
	"github.com/nandaraf/famtask/internal/modules/admin/dto"
	"github.com/nandaraf/famtask/internal/modules/user/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateMember(ctx context.Context, input dto.CreateMemberInput) (*dto.MemberResponse, error)
	// GetAllMembers also reports the household headcount so clients can
	// render it without a second call.
	GetAllMembers(ctx context.Context) ([]*dto.MemberResponse, int64, error)
	UpdateMember(ctx context.Context, id string, input dto.UpdateMemberInput) (*dto.MemberResponse, error)
	DeleteMember(ctx context.Context, id string) error
}

type adminService struct {
	repo repository.UserRepository
}

func NewAdminService(repo repository.UserRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) CreateMember(ctx context.Context, input dto.CreateMemberInput) (*dto.MemberResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, errors.New("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, errors.New("username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, input.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("role %s not found", input.Role)
		}
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleID := role.ID
	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		RoleID:       &roleID,
	}

	profile := &entity.Profile{
		FullName:  input.FullName,
		BirthYear: input.BirthYear,
		Bio:       input.Bio,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	created.PasswordHash = ""

	return &dto.MemberResponse{
		User:    created,
		Role:    &created.Role,
		Profile: created.Profile,
	}, nil
}

func (s *adminService) GetAllMembers(ctx context.Context) ([]*dto.MemberResponse, int64, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var response []*dto.MemberResponse
	for _, u := range users {
		u.PasswordHash = ""
		response = append(response, &dto.MemberResponse{
			User:    u,
			Role:    &u.Role,
			Profile: u.Profile,
		})
	}

	return response, total, nil
}

func (s *adminService) UpdateMember(ctx context.Context, id string, input dto.UpdateMemberInput) (*dto.MemberResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	if input.Role != "" {
		role, err := s.repo.FindRoleByName(ctx, input.Role)
		if err != nil {
			return nil, fmt.Errorf("role %s not found", input.Role)
		}
		roleID := role.ID
		user.RoleID = &roleID
		user.Role = *role
	}

	profile := user.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: user.ID}
	}
	if input.FullName != "" {
		profile.FullName = input.FullName
	}
	if input.BirthYear != nil {
		profile.BirthYear = input.BirthYear
	}
	if input.Bio != nil {
		profile.Bio = input.Bio
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated.PasswordHash = ""

	return &dto.MemberResponse{
		User:    updated,
		Role:    &updated.Role,
		Profile: updated.Profile,
	}, nil
}

func (s *adminService) DeleteMember(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}
