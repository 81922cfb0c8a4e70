package gamification

import (
	"time"

	"smartspeak/internal/models"
)

const dateLayout = "2006-01-02"

// UpdateLoginStreak records a login on today's date. It returns false when the
// student already logged in today.
func UpdateLoginStreak(a *models.Achievements, now time.Time) bool {
	today := now.Format(dateLayout)
	if a.LastLogin == today {
		return false
	}

	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if a.LastLogin == yesterday {
		a.DailyLoginStreak++
	} else {
		a.DailyLoginStreak = 1
	}
	if a.DailyLoginStreak > a.MaxLoginStreak {
		a.MaxLoginStreak = a.DailyLoginStreak
	}
	a.LastLogin = today
	return true
}
