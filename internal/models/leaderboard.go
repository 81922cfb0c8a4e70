package models

// LeaderboardEntry is one ranked row of a weekly leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	XP       int    `json:"xp"`
	WeeklyXP int    `json:"weekly_xp"`
	Level    int    `json:"level"`
	Badges   int    `json:"badges"`
	Division string `json:"division"`
}
