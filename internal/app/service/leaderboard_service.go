package service

import (
	"context"

	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/repository"
)

const (
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
)

type LeaderboardService struct {
	userRepo repository.UserRepository
}

func NewLeaderboardService(userRepo repository.UserRepository) *LeaderboardService {
	return &LeaderboardService{userRepo: userRepo}
}

// Top returns accepted users ordered by score. limit is clamped to [1, MaxLeaderboardLimit]; zero selects the default.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		limit = MaxLeaderboardLimit
	}
	users, err := s.userRepo.TopByScore(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, model.LeaderboardEntry{
			Position:    i + 1,
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Score:       u.Score,
			Rank:        u.Rank,
		})
	}
	return entries, nil
}
