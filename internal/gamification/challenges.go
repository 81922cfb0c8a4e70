package gamification

import (
	"errors"
	"fmt"
	"time"

	"smartspeak/internal/models"
)

// ErrUnknownChallenge is returned for a challenge type outside practice/learning/mastery
var ErrUnknownChallenge = errors.New("unknown challenge type")

// AllChallengesBonusXP is awarded when the last open challenge of a week is completed
const AllChallengesBonusXP = 10

// ChallengeStreakBadgeThreshold is the streak from which challenge_streak is recorded
const ChallengeStreakBadgeThreshold = 7

var challengeTemplate = []models.Challenge{
	{Type: models.ChallengePractice, Target: 5, XPReward: 5},
	{Type: models.ChallengeLearning, Target: 10, XPReward: 5},
	{Type: models.ChallengeMastery, Target: 3, XPReward: 5},
}

// WeekKey returns the ISO week key of t, e.g. "2024-W09"
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ChallengeState is the lifecycle state of a stored challenge set
type ChallengeState int

const (
	ChallengeNone ChallengeState = iota
	ChallengeCurrent
	ChallengeStale
)

func (s ChallengeState) String() string {
	switch s {
	case ChallengeNone:
		return "none"
	case ChallengeCurrent:
		return "current"
	case ChallengeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// StateOf classifies a stored set against the current week key
func StateOf(set *models.ChallengeSet, week string) ChallengeState {
	if set == nil || set.Week == "" || len(set.Challenges) != len(challengeTemplate) {
		return ChallengeNone
	}
	if set.Week != week {
		return ChallengeStale
	}
	return ChallengeCurrent
}

// NewChallengeSet returns a fresh set for week carrying the given streak
func NewChallengeSet(week string, streak int) models.ChallengeSet {
	challenges := make([]models.Challenge, len(challengeTemplate))
	copy(challenges, challengeTemplate)
	return models.ChallengeSet{
		Week:       week,
		Challenges: challenges,
		Streak:     streak,
	}
}

// Rollover is the outcome of bringing a set up to date
type Rollover struct {
	Happened bool
	// StreakReached is set when the new streak crossed ChallengeStreakBadgeThreshold
	StreakReached bool
}

// RefreshChallenges moves a none or stale set to the current week. The streak grows
// by one if every challenge of the previous set was completed and resets otherwise.
func RefreshChallenges(set *models.ChallengeSet, week string) Rollover {
	switch StateOf(set, week) {
	case ChallengeCurrent:
		return Rollover{}
	case ChallengeStale:
		streak := 0
		if set.AllCompleted() {
			streak = set.Streak + 1
		}
		*set = NewChallengeSet(week, streak)
	default:
		*set = NewChallengeSet(week, 0)
	}
	return Rollover{Happened: true, StreakReached: set.Streak >= ChallengeStreakBadgeThreshold}
}

func challengeSlot(challengeType string) int {
	for i, c := range challengeTemplate {
		if c.Type == challengeType {
			return i
		}
	}
	return -1
}

// AdvanceChallenge adds increment to the challenge of the given type and returns
// the XP this call earned. Completed challenges earn nothing more. The bonus is
// paid once, by the call that completes the last open challenge.
func AdvanceChallenge(set *models.ChallengeSet, challengeType string, increment int) (int, error) {
	slot := challengeSlot(challengeType)
	if slot < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChallenge, challengeType)
	}
	if slot >= len(set.Challenges) {
		return 0, nil
	}
	if increment < 1 {
		increment = 1
	}

	c := &set.Challenges[slot]
	if c.Completed {
		return 0, nil
	}

	c.Current += increment
	if c.Current > c.Target {
		c.Current = c.Target
	}
	if c.Current < c.Target {
		return 0, nil
	}

	c.Completed = true
	set.CompletedToday++
	xp := c.XPReward
	if set.AllCompleted() {
		xp += AllChallengesBonusXP
	}
	return xp, nil
}
