package service

import (
	"errors"
	"fmt"
	"time"

	"smartspeak/internal/gamification"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/repository"
)

// ErrUserNotFound is returned when a student id does not exist
var ErrUserNotFound = errors.New("user not found")

// ErrNegativeXP is returned when a stage would take XP away
var ErrNegativeXP = errors.New("stage xp must not be negative")

// ErrUnknownChallenge is returned for a challenge type outside practice/learning/mastery
var ErrUnknownChallenge = gamification.ErrUnknownChallenge

// Practice modes that complete stages
const (
	ModeRepeat       = "repeat"
	ModeSpellBee     = "spellbee"
	ModeConversation = models.ModeConversation
	ModeRoleplay     = models.ModeRoleplay
)

// LevelInfo describes the level change caused by a stage completion
type LevelInfo struct {
	LeveledUp bool `json:"leveled_up"`
	NewLevel  int  `json:"new_level"`
	OldLevel  int  `json:"old_level"`
}

// MigrationResult counts the students touched by a bulk repair
type MigrationResult struct {
	Migrated int `json:"migrated"`
	Errors   int `json:"errors"`
}

// GamificationService owns XP, levels, badges, streaks, challenges and the leaderboard
type GamificationService struct {
	userRepo *repository.UserRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewGamificationService creates a new gamification service
func NewGamificationService(userRepo *repository.UserRepository, log *logger.Logger) *GamificationService {
	return &GamificationService{
		userRepo: userRepo,
		log:      log,
		now:      time.Now,
	}
}

// CurrentWeek returns the ISO week key used for weekly XP and challenges
func (g *GamificationService) CurrentWeek() string {
	return gamification.WeekKey(g.now())
}

func awardBadges(s *models.Student) []string {
	if s.AchievementsState != models.FieldPresent {
		s.Achievements = models.NewAchievements()
		s.AchievementsState = models.FieldPresent
	}
	return gamification.EvaluateBadges(gamification.BadgeSnapshot{
		Level:        s.Level,
		TotalXP:      s.TotalXP,
		Achievements: &s.Achievements,
	})
}

// addXP adds xp to the student's total and recomputes the level
func addXP(s *models.Student, xp int) {
	s.TotalXP += xp
	s.Level = gamification.LevelFromXP(s.TotalXP)
}

func (g *GamificationService) mutate(userID string, fn func(s *models.Student) error) (*models.Student, error) {
	s, err := g.userRepo.MutateStudent(userID, fn)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrUserNotFound
	}
	return s, nil
}

// Student returns a student's record without changing it
func (g *GamificationService) Student(userID string) (*models.Student, error) {
	s, err := g.userRepo.GetStudent(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if s == nil || s.IsTeacherRecord() {
		return nil, ErrUserNotFound
	}
	return s, nil
}

// CheckBadges evaluates the catalog for a student and returns the newly earned badge ids
func (g *GamificationService) CheckBadges(userID string) ([]string, error) {
	var awarded []string
	_, err := g.mutate(userID, func(s *models.Student) error {
		awarded = awardBadges(s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check badges: %w", err)
	}
	if len(awarded) > 0 {
		g.log.Info("Badges awarded", "user_id", userID, "badges", awarded)
	}
	return awarded, nil
}

// IncrementActivity adds amount to an activity counter and re-evaluates badges
func (g *GamificationService) IncrementActivity(userID, activity string, amount int) ([]string, error) {
	var awarded []string
	s, err := g.userRepo.IncrementCounter(userID, activity, amount, func(s *models.Student) {
		awarded = awardBadges(s)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", activity, err)
	}
	if s == nil {
		return nil, ErrUserNotFound
	}
	return awarded, nil
}

// UpdateLoginStreak records today's login and re-evaluates badges
func (g *GamificationService) UpdateLoginStreak(userID string) error {
	_, err := g.mutate(userID, func(s *models.Student) error {
		if s.AchievementsState != models.FieldPresent {
			s.Achievements = models.NewAchievements()
			s.AchievementsState = models.FieldPresent
		}
		if gamification.UpdateLoginStreak(&s.Achievements, g.now()) {
			awardBadges(s)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update login streak: %w", err)
	}
	return nil
}

// LogMistake appends a mistake record to the student's log
func (g *GamificationService) LogMistake(userID, category string, data map[string]interface{}) error {
	_, err := g.mutate(userID, func(s *models.Student) error {
		if s.MistakesState != models.FieldPresent {
			s.Mistakes = models.NewMistakes()
			s.MistakesState = models.FieldPresent
		}
		s.Mistakes.Log(category, data, g.now())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to log mistake: %w", err)
	}
	return nil
}

// refreshChallenges brings the stored set to the current week
func (g *GamificationService) refreshChallenges(s *models.Student) gamification.Rollover {
	rollover := gamification.RefreshChallenges(&s.Challenges, g.CurrentWeek())
	if !rollover.Happened {
		return rollover
	}
	s.ChallengesState = models.FieldPresent
	if rollover.StreakReached {
		if s.AchievementsState != models.FieldPresent {
			s.Achievements = models.NewAchievements()
			s.AchievementsState = models.FieldPresent
		}
		s.Achievements.ChallengeStreak = s.Challenges.Streak
		awardBadges(s)
	}
	return rollover
}

// Challenges returns the student's challenge set for the current week,
// rolling a stale set over first
func (g *GamificationService) Challenges(userID string) (*models.ChallengeSet, error) {
	s, err := g.mutate(userID, func(s *models.Student) error {
		rollover := g.refreshChallenges(s)
		if rollover.Happened {
			g.log.Debug("Weekly challenges rolled over", "user_id", userID, "week", s.Challenges.Week, "streak", s.Challenges.Streak)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load challenges: %w", err)
	}
	return &s.Challenges, nil
}

// UpdateChallengeProgress advances one challenge and returns the XP earned by this call
func (g *GamificationService) UpdateChallengeProgress(userID, challengeType string, increment int) (int, error) {
	var xp int
	_, err := g.mutate(userID, func(s *models.Student) error {
		g.refreshChallenges(s)
		earned, err := gamification.AdvanceChallenge(&s.Challenges, challengeType, increment)
		if err != nil {
			return err
		}
		xp = earned
		if xp > 0 {
			addXP(s, xp)
			awardBadges(s)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update challenge: %w", err)
	}
	if xp > 0 {
		g.log.Info("Challenge XP awarded", "user_id", userID, "challenge", challengeType, "xp", xp)
	}
	return xp, nil
}

// WeeklyLeaderboard ranks the students of a class (and optional division) by this week's XP
func (g *GamificationService) WeeklyLeaderboard(class, division string) ([]models.LeaderboardEntry, error) {
	students, err := g.userRepo.FindStudents(models.StudentFilter{Class: class, Division: division})
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return gamification.WeeklyLeaderboard(students, class, division, g.CurrentWeek()), nil
}

// RecordStageCompletion awards xp for a finished stage, updates weekly XP and
// mode stats, then tracks the mode's activity and challenge.
func (g *GamificationService) RecordStageCompletion(userID, mode string, xp int) (*LevelInfo, error) {
	if xp < 0 {
		return nil, ErrNegativeXP
	}
	var info LevelInfo
	_, err := g.mutate(userID, func(s *models.Student) error {
		info.OldLevel = s.Level
		addXP(s, xp)
		s.TotalStars += xp
		info.NewLevel = s.Level
		info.LeveledUp = info.NewLevel > info.OldLevel

		if xp > 0 {
			if s.WeeklyXP == nil {
				s.WeeklyXP = map[string]int{}
			}
			s.WeeklyXP[g.CurrentWeek()] += xp
			s.WeeklyXPState = models.FieldPresent
		}

		if s.ModeStats == nil {
			s.ModeStats = map[string]models.ModeStat{}
		}
		stat := s.ModeStats[mode]
		stat.Stars += xp
		stat.Sessions++
		s.ModeStats[mode] = stat

		now := g.now()
		s.LastActive = &now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	if info.LeveledUp {
		g.log.Info("Level up", "user_id", userID, "old_level", info.OldLevel, "new_level", info.NewLevel)
	}

	var activity, challenge string
	switch mode {
	case ModeRepeat:
		activity, challenge = models.ActivityRepeat, models.ChallengeLearning
	case ModeSpellBee:
		if xp > 0 {
			activity = models.ActivitySpelling
		}
	case ModeConversation:
		activity, challenge = models.ActivityConversation, models.ChallengePractice
	case ModeRoleplay:
		activity, challenge = models.ActivityRoleplay, models.ChallengePractice
	}
	if activity != "" {
		if _, err := g.IncrementActivity(userID, activity, 1); err != nil {
			g.log.Warn("Activity tracking failed", "user_id", userID, "activity", activity, "error", err)
		}
	}
	if challenge != "" {
		if _, err := g.UpdateChallengeProgress(userID, challenge, 1); err != nil {
			g.log.Warn("Challenge tracking failed", "user_id", userID, "challenge", challenge, "error", err)
		}
	}
	if _, err := g.CheckBadges(userID); err != nil {
		g.log.Warn("Badge check failed", "user_id", userID, "error", err)
	}

	return &info, nil
}

// EnsureBadges repairs a student's record: missing or corrupt achievements are
// reinitialised, a drifted level is recomputed and badges are re-evaluated.
func (g *GamificationService) EnsureBadges(userID string) ([]string, error) {
	var awarded []string
	_, err := g.mutate(userID, func(s *models.Student) error {
		repairStudent(s)
		awarded = awardBadges(s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure badges: %w", err)
	}
	return awarded, nil
}

// repairStudent resets unreadable sub-documents and fixes level drift
func repairStudent(s *models.Student) {
	if s.AchievementsState != models.FieldPresent {
		s.Achievements = models.NewAchievements()
		s.AchievementsState = models.FieldPresent
	}
	if s.MistakesState != models.FieldPresent {
		s.Mistakes = models.NewMistakes()
		s.MistakesState = models.FieldPresent
	}
	if level := gamification.LevelFromXP(s.TotalXP); s.Level != level {
		s.Level = level
	}
}

// MigrateLevelsAndBadges repairs every student record
func (g *GamificationService) MigrateLevelsAndBadges() MigrationResult {
	var result MigrationResult
	students, err := g.userRepo.ListStudents()
	if err != nil {
		g.log.Error("Migration could not list students", "error", err)
		result.Errors++
		return result
	}

	for _, st := range students {
		if st.IsTeacherRecord() {
			continue
		}
		if _, err := g.EnsureBadges(st.UserID); err != nil {
			g.log.Warn("Migration failed for student", "user_id", st.UserID, "error", err)
			result.Errors++
			continue
		}
		result.Migrated++
	}

	g.log.Info("Levels and badges migrated", "migrated", result.Migrated, "errors", result.Errors)
	return result
}

// BackfillWeeklyXP seeds this week's XP with the lifetime total for students
// that have XP but no entry for the current week
func (g *GamificationService) BackfillWeeklyXP() (int, error) {
	students, err := g.userRepo.ListStudents()
	if err != nil {
		return 0, fmt.Errorf("failed to list students: %w", err)
	}

	week := g.CurrentWeek()
	seeded := 0
	for _, st := range students {
		if st.IsTeacherRecord() || st.TotalXP <= 0 {
			continue
		}
		if _, ok := st.WeeklyXP[week]; ok && st.WeeklyXPState == models.FieldPresent {
			continue
		}
		_, err := g.mutate(st.UserID, func(s *models.Student) error {
			if s.WeeklyXP == nil || s.WeeklyXPState != models.FieldPresent {
				s.WeeklyXP = map[string]int{}
				s.WeeklyXPState = models.FieldPresent
			}
			if _, ok := s.WeeklyXP[week]; !ok {
				s.WeeklyXP[week] = s.TotalXP
			}
			return nil
		})
		if err != nil {
			g.log.Warn("Weekly XP backfill failed", "user_id", st.UserID, "error", err)
			continue
		}
		seeded++
	}

	if seeded > 0 {
		g.log.Info("Weekly XP backfilled", "students", seeded, "week", week)
	}
	return seeded, nil
}
