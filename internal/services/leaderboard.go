package services

import (
	"context"
	"log"
	"sort"

	"github.com/ecoclean/backend/internal/models"
	"github.com/ecoclean/backend/internal/storage"
)

// LeaderboardService derives the ranking on each read: role=user accounts
// sorted by experience descending, stable, 1-based positional rank.
// Nothing is stored except the previous-rank snapshot used for the trend
// indicator.
type LeaderboardService struct {
	users *UserService
	ranks *storage.RankSnapshot // nil when Redis is not configured
}

func NewLeaderboardService(users *UserService, ranks *storage.RankSnapshot) *LeaderboardService {
	return &LeaderboardService{users: users, ranks: ranks}
}

// Compute builds the current leaderboard. Ties keep their input order.
// Trend compares against the last snapshot; without one every entry
// reports "same".
func (s *LeaderboardService) Compute(ctx context.Context) ([]models.LeaderboardEntry, error) {
	all, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	players := make([]models.User, 0, len(all))
	for _, u := range all {
		if u.Role == models.RoleUser {
			players = append(players, u)
		}
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TotalExp > players[j].TotalExp
	})

	previous := s.previousRanks(ctx)

	entries := make([]models.LeaderboardEntry, len(players))
	current := make(map[string]int, len(players))
	for i, u := range players {
		rank := i + 1
		current[u.ID] = rank
		entries[i] = models.LeaderboardEntry{
			Rank:   rank,
			Name:   u.Name,
			Exp:    u.TotalExp,
			Avatar: u.Avatar,
			Trend:  trendFor(previous, u.ID, rank),
			ID:     u.ID,
		}
	}

	s.storeRanks(ctx, current)

	return entries, nil
}

func trendFor(previous map[string]int, id string, rank int) string {
	prev, ok := previous[id]
	if !ok || prev == rank {
		return models.TrendSame
	}
	if rank < prev {
		return models.TrendUp
	}
	return models.TrendDown
}

func (s *LeaderboardService) previousRanks(ctx context.Context) map[string]int {
	if s.ranks == nil {
		return nil
	}
	previous, err := s.ranks.Previous(ctx)
	if err != nil {
		log.Printf("[leaderboard] rank snapshot read failed: %v", err)
		return nil
	}
	return previous
}

func (s *LeaderboardService) storeRanks(ctx context.Context, current map[string]int) {
	if s.ranks == nil {
		return
	}
	if err := s.ranks.Store(ctx, current); err != nil {
		log.Printf("[leaderboard] rank snapshot write failed: %v", err)
	}
}
