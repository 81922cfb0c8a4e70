package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smartspeak/internal/gamification"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/service"
)

// ProgressHandler serves XP, badges, challenges, mistakes and the leaderboard
type ProgressHandler struct {
	gamification *service.GamificationService
	log          *logger.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(gamification *service.GamificationService, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		gamification: gamification,
		log:          log,
	}
}

// UserStats returns the logged-in student's level progress
func (h *ProgressHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)
	student, err := h.gamification.Student(userID)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			h.log.Warn("Progress lookup failed, returning defaults", "user_id", userID, "error", err)
		}
		student = &models.Student{Level: 1}
	}

	progress := gamification.ProgressFor(student.Level, student.TotalXP)
	respondSuccess(w, map[string]interface{}{
		"total_xp":               progress.TotalXP,
		"total_stars":            student.TotalStars,
		"level":                  progress.Level,
		"xp_in_current_level":    progress.XPInCurrentLevel,
		"xp_needed_for_next":     progress.XPNeededForNext,
		"recommended_difficulty": progress.RecommendedDifficulty,
	})
}

type leaderboardRequest struct {
	Class    string `json:"class"`
	Division string `json:"division"`
}

// Leaderboard ranks a class by this week's XP
func (h *ProgressHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	var req leaderboardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	if strings.TrimSpace(req.Class) == "" {
		respondFailure(w, MsgNoClassSelected)
		return
	}

	entries, err := h.gamification.WeeklyLeaderboard(req.Class, req.Division)
	if err != nil {
		h.log.Warn("Leaderboard unavailable", "class", req.Class, "division", req.Division, "error", err)
		respondFailure(w, MsgLeaderboardUnavailable)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	h.log.Debug("Leaderboard served", "class", req.Class, "division", req.Division, "students", len(entries))
	respondSuccess(w, map[string]interface{}{"leaderboard": entries})
}

// challengeSlots keys the three challenges the way the dashboard reads them
func challengeSlots(set *models.ChallengeSet) map[string]interface{} {
	slots := map[string]interface{}{}
	for i := 0; i < 3; i++ {
		var c interface{} = map[string]interface{}{}
		if i < len(set.Challenges) {
			c = set.Challenges[i]
		}
		slots[fmt.Sprintf("challenge%d", i+1)] = c
	}
	return slots
}

// DailyChallenges returns this week's challenges
func (h *ProgressHandler) DailyChallenges(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)
	set, err := h.gamification.Challenges(userID)
	if err != nil {
		h.log.Warn("Challenges unavailable, returning a fresh set", "user_id", userID, "error", err)
		fresh := gamification.NewChallengeSet(h.gamification.CurrentWeek(), 0)
		set = &fresh
	}

	respondSuccess(w, map[string]interface{}{
		"challenges":      challengeSlots(set),
		"streak":          set.Streak,
		"completed_today": set.CompletedToday,
		"week":            set.Week,
	})
}

type challengeRequest struct {
	ChallengeType string `json:"challenge_type"`
	Increment     *int   `json:"increment"`
}

// UpdateChallenge advances one challenge for the logged-in student
func (h *ProgressHandler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)

	var req challengeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	increment := 1
	if req.Increment != nil {
		increment = *req.Increment
	}

	xp, err := h.gamification.UpdateChallengeProgress(userID, req.ChallengeType, increment)
	if errors.Is(err, service.ErrUnknownChallenge) {
		respondFailure(w, MsgUnknownChallengeType)
		return
	}
	if err != nil {
		h.log.Warn("Challenge update failed", "user_id", userID, "challenge", req.ChallengeType, "error", err)
		respondFailure(w, MsgChallengeUpdateFailed)
		return
	}

	set, err := h.gamification.Challenges(userID)
	if err != nil {
		h.log.Warn("Challenges unavailable after update", "user_id", userID, "error", err)
		fresh := gamification.NewChallengeSet(h.gamification.CurrentWeek(), 0)
		set = &fresh
	}
	respondSuccess(w, map[string]interface{}{
		"xp_earned":  xp,
		"challenges": challengeSlots(set),
	})
}

// EnsureBadges repairs the student's record and awards any missing badges
func (h *ProgressHandler) EnsureBadges(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)
	awarded, err := h.gamification.EnsureBadges(userID)
	if err != nil {
		h.log.Warn("Ensure badges failed", "user_id", userID, "error", err)
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": false})
		return
	}
	if awarded == nil {
		awarded = []string{}
	}
	respondSuccess(w, map[string]interface{}{"new_badges": awarded})
}

// Achievements returns the badge catalog with earned flags and the activity counters
func (h *ProgressHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)
	achievements := models.NewAchievements()
	student, err := h.gamification.Student(userID)
	if err == nil {
		achievements = student.Achievements
	} else {
		h.log.Warn("Achievements unavailable, returning defaults", "user_id", userID, "error", err)
	}

	respondSuccess(w, map[string]interface{}{
		"badges": gamification.BadgeStatuses(&achievements),
		"stats":  achievements.Stats(),
	})
}

// Mistakes returns the student's recent mistakes per category
func (h *ProgressHandler) Mistakes(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)
	mistakes := models.NewMistakes()
	student, err := h.gamification.Student(userID)
	if err == nil {
		mistakes = student.Mistakes
	} else {
		h.log.Warn("Mistakes unavailable, returning defaults", "user_id", userID, "error", err)
	}

	respondSuccess(w, map[string]interface{}{
		"pronunciation": lastMistakes(mistakes.Pronunciation),
		"spelling":      lastMistakes(mistakes.Spelling),
		"vocabulary":    lastMistakes(mistakes.Vocabulary),
		"total":         mistakes.Total,
	})
}

func lastMistakes(records []models.MistakeRecord) []models.MistakeRecord {
	if records == nil {
		return []models.MistakeRecord{}
	}
	if len(records) > models.MaxMistakesPerCategory {
		return records[len(records)-models.MaxMistakesPerCategory:]
	}
	return records
}

// MigrateUsers repairs every student's level and badges and backfills weekly XP
func (h *ProgressHandler) MigrateUsers(w http.ResponseWriter, r *http.Request) {
	result := h.gamification.MigrateLevelsAndBadges()
	backfilled, err := h.gamification.BackfillWeeklyXP()
	if err != nil {
		h.log.Error("Weekly XP backfill failed", "error", err)
		respondFailure(w, MsgMigrationFailed)
		return
	}
	respondSuccess(w, map[string]interface{}{
		"result":     result,
		"backfilled": backfilled,
	})
}
