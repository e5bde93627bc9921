package repository

import (
	"context"

	"github.com/nandaraf/famtask/internal/entity"
	"gorm.io/gorm"
)

type LeaderboardRepository interface {
	GetTopUsers(ctx context.Context, limit int) ([]entity.User, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) GetTopUsers(ctx context.Context, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Order("points desc").
		Order("streak desc").
		Order("username asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}
