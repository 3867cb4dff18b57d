package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecoclean/backend/internal/models"
)

// StreakBonusPoints is granted when a user's daily streak advances.
const StreakBonusPoints = 5

// ProgressionService maintains the experience counter, derived level,
// day streak and activity log for a user.
type ProgressionService struct {
	users *UserService
	now   func() time.Time
}

func NewProgressionService(users *UserService) *ProgressionService {
	return &ProgressionService{
		users: users,
		now:   time.Now,
	}
}

// ProgressionResult reports what a single award did to the user.
type ProgressionResult struct {
	User        *models.User `json:"user"`
	LevelUp     bool         `json:"level_up"`
	StreakBonus int          `json:"streak_bonus"`
}

// LevelFor returns the highest level whose threshold does not exceed exp.
// Scans from the top so experience past the last row saturates at the top
// level instead of clamping oddly.
func LevelFor(exp int) int {
	return TierFor(exp).Level
}

// TierFor returns the full table row for an experience value.
func TierFor(exp int) models.LevelTier {
	for i := len(models.LevelTable) - 1; i >= 0; i-- {
		if models.LevelTable[i].ExpRequired <= exp {
			return models.LevelTable[i]
		}
	}
	return models.LevelTable[0]
}

// AddExperience applies an award: bumps the experience counter, recomputes
// the level from the threshold table, prepends an activity log entry and
// persists the whole user record. The day streak advances when this is the
// first awarded action the day after the previous one; the streak bonus is
// folded into the same write.
func (p *ProgressionService) AddExperience(ctx context.Context, user *models.User, amount int, kind, description string) (*ProgressionResult, error) {
	now := p.now()

	bonus := 0
	switch p.streakChange(user, now) {
	case streakAdvance:
		user.Streak++
		bonus = StreakBonusPoints
	case streakReset:
		user.Streak = 1
	}

	newExp := user.TotalExp + amount + bonus
	newLevel := LevelFor(newExp)
	levelUp := newLevel > user.Level

	entries := []models.ActionLog{{
		ID:          uuid.New().String(),
		Type:        kind,
		Points:      amount,
		Timestamp:   now,
		Description: description,
	}}
	if bonus > 0 {
		entries = append([]models.ActionLog{{
			ID:          uuid.New().String(),
			Type:        models.ActionStreakBonus,
			Points:      bonus,
			Timestamp:   now,
			Description: fmt.Sprintf("Daily streak: %d days", user.Streak),
		}}, entries...)
	}

	user.TotalExp = newExp
	user.Level = newLevel
	user.RecentActions = append(entries, user.RecentActions...)

	if err := p.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return &ProgressionResult{
		User:        user,
		LevelUp:     levelUp,
		StreakBonus: bonus,
	}, nil
}

type streakOutcome int

const (
	streakKeep streakOutcome = iota
	streakAdvance
	streakReset
)

// streakChange compares the calendar day of the most recent logged action
// with today. Same day keeps the streak, the immediately previous day
// advances it, anything older (or no history) starts over.
func (p *ProgressionService) streakChange(user *models.User, now time.Time) streakOutcome {
	if len(user.RecentActions) == 0 {
		if user.Streak > 0 {
			return streakKeep
		}
		return streakReset
	}

	last := user.RecentActions[0].Timestamp
	switch daysBetween(last, now) {
	case 0:
		return streakKeep
	case 1:
		return streakAdvance
	default:
		return streakReset
	}
}

func daysBetween(earlier, later time.Time) int {
	e := earlier.UTC()
	l := later.UTC()
	eDay := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	lDay := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
	return int(lDay.Sub(eDay) / (24 * time.Hour))
}
