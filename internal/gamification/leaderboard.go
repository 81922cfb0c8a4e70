package gamification

import (
	"sort"
	"strings"

	"smartspeak/internal/models"
)

// InClass reports whether a student belongs to class and, when division is
// not blank, to division. Both comparisons ignore case and surrounding space.
func InClass(s *models.Student, class, division string) bool {
	if !strings.EqualFold(strings.TrimSpace(s.Class), strings.TrimSpace(class)) {
		return false
	}
	division = strings.TrimSpace(division)
	if division == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(s.Division), division)
}

// WeeklyLeaderboard ranks the students of one class by XP earned in week,
// breaking ties with lifetime XP. Teacher records are skipped.
func WeeklyLeaderboard(students []models.Student, class, division, week string) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(students))
	for i := range students {
		s := &students[i]
		if s.IsTeacherRecord() || !InClass(s, class, division) {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			UserID:   s.UserID,
			Name:     s.DisplayName(),
			XP:       s.TotalXP,
			WeeklyXP: s.WeeklyXP[week],
			Level:    s.Level,
			Badges:   len(s.Achievements.BadgesEarned),
			Division: s.Division,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WeeklyXP != entries[j].WeeklyXP {
			return entries[i].WeeklyXP > entries[j].WeeklyXP
		}
		return entries[i].XP > entries[j].XP
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
