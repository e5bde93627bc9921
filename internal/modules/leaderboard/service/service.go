package service

import (
	"context"

	leaderboardDto "github.com/nandaraf/famtask/internal/modules/leaderboard/dto"
	leaderboardRepo "github.com/nandaraf/famtask/internal/modules/leaderboard/repository"
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboardDto.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo leaderboardRepo.LeaderboardRepository
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]leaderboardDto.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	users, err := s.repo.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		rankName, nextRank, progress := RankFor(user.Points)

		entries = append(entries, leaderboardDto.LeaderboardEntry{
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
			Position:  i + 1,
			Points:    user.Points,
			Streak:    user.Streak,
			RankName:  rankName,
			NextRank:  nextRank,
			Progress:  progress,
		})
	}

	return entries, nil
}
