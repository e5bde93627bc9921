package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nandaraf/famtask/internal/entity"
	leaderboard "github.com/nandaraf/famtask/internal/modules/leaderboard/service"
	profileDto "github.com/nandaraf/famtask/internal/modules/profile/dto"
	userRepo "github.com/nandaraf/famtask/internal/modules/user/repository"
	"github.com/nandaraf/famtask/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService interface {
	UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*profileDto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	imageStorage storage.ImageStorage
}

func NewProfileService(repo userRepo.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
	}
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if input.Username != nil && *input.Username != "" && *input.Username != user.Username {
		sanitized := strings.ReplaceAll(*input.Username, " ", "_")
		if len(sanitized) < 3 {
			return nil, errors.New("username must be at least 3 characters")
		}
		if len(sanitized) > 50 {
			return nil, errors.New("username must be at most 50 characters")
		}
		if _, err := s.repo.FindByUsername(ctx, sanitized); err == nil {
			return nil, errors.New("username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = sanitized
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return nil, errors.New("password must be at least 8 characters")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	profile := user.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: user.ID}
	}
	if input.FullName != nil && *input.FullName != "" {
		profile.FullName = *input.FullName
	}
	if input.BirthYear != nil {
		profile.BirthYear = input.BirthYear
	}
	if input.Bio != nil {
		profile.Bio = normalizeOptional(input.Bio)
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	updatedUser, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updatedUser.PasswordHash = ""

	return &profileDto.ProfileResponse{
		User:    updatedUser,
		Profile: updatedUser.Profile,
		Rank:    rankStatusFor(updatedUser),
	}, nil
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.New("user not found")
	}

	response := &profileDto.PublicProfileResponse{
		Username:  user.Username,
		Role:      user.Role.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Rank:      rankStatusFor(user),
	}

	if user.Profile != nil {
		response.FullName = user.Profile.FullName
		response.Bio = user.Profile.Bio
	}

	return response, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	user.PasswordHash = ""

	return &profileDto.ProfileResponse{
		User:    user,
		Profile: user.Profile,
		Rank:    rankStatusFor(user),
	}, nil
}

func rankStatusFor(user *entity.User) profileDto.RankStatus {
	rankName, nextRank, progress := leaderboard.RankFor(user.Points)

	return profileDto.RankStatus{
		RankName: rankName,
		NextRank: nextRank,
		Points:   user.Points,
		Streak:   user.Streak,
		Progress: progress,
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
