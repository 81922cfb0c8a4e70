package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspeak/internal/gamification"
	"smartspeak/internal/models"
)

func TestRecordStageCompletionRepeat(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1001", "5", "A", 0)

	// medium stage: 2 accumulated stars plus 1 on the last attempt
	xp := gamification.StageXP(2, 1, gamification.DifficultyMedium)
	require.Equal(t, 6, xp)

	info, err := env.gamification.RecordStageCompletion("1001", ModeRepeat, xp)
	require.NoError(t, err)
	assert.Equal(t, &LevelInfo{LeveledUp: false, NewLevel: 1, OldLevel: 1}, info)

	s := env.student(t, "1001")
	assert.Equal(t, 6, s.TotalXP)
	assert.Equal(t, 6, s.TotalStars)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, models.ModeStat{Stars: 6, Sessions: 1}, s.ModeStats[ModeRepeat])
	assert.Equal(t, 6, s.WeeklyXP[testWeek])
	assert.Equal(t, 1, s.Achievements.RepeatCount)
	assert.Equal(t, testWeek, s.Challenges.Week)
	assert.Equal(t, 1, s.Challenges.Challenges[1].Current, "learning challenge")
}

func TestRecordStageCompletionRejectsNegativeXP(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1003", "5", "A", 99)

	info, err := env.gamification.RecordStageCompletion("1003", ModeRepeat, gamification.StageXP(-100, 3, gamification.DifficultyHard))
	assert.ErrorIs(t, err, ErrNegativeXP)
	assert.Nil(t, info)

	s := env.student(t, "1003")
	assert.Equal(t, 99, s.TotalXP)
	assert.Empty(t, s.ModeStats)
	assert.Zero(t, s.Achievements.RepeatCount)
}

func TestRecordStageCompletionLevelUp(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1002", "5", "A", 20)

	info, err := env.gamification.RecordStageCompletion("1002", ModeConversation, 10)
	require.NoError(t, err)
	assert.True(t, info.LeveledUp)
	assert.Equal(t, 1, info.OldLevel)
	assert.Equal(t, 2, info.NewLevel)

	s := env.student(t, "1002")
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 1, s.Achievements.ConversationCount)
	assert.Equal(t, 1, s.Challenges.Challenges[0].Current, "practice challenge")
	assert.Contains(t, s.Achievements.BadgesEarned, "level_2")
	assert.Contains(t, s.Achievements.BadgesEarned, "xp_25")
}

func TestRecordStageCompletionSpellBee(t *testing.T) {
	tests := []struct {
		name         string
		xp           int
		wantSpelling int
		wantWeeklyXP bool
	}{
		{"stars earned", 9, 1, true},
		{"no stars", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addStudent(t, "1003", "5", "A", 0)

			_, err := env.gamification.RecordStageCompletion("1003", ModeSpellBee, tt.xp)
			require.NoError(t, err)

			s := env.student(t, "1003")
			assert.Equal(t, tt.wantSpelling, s.Achievements.SpellingCount)
			assert.Equal(t, 1, s.ModeStats[ModeSpellBee].Sessions)
			_, ok := s.WeeklyXP[testWeek]
			assert.Equal(t, tt.wantWeeklyXP, ok)
		})
	}
}

func TestRecordStageCompletionUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.gamification.RecordStageCompletion("9999", ModeRepeat, 3)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCheckBadgesIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1004", "5", "A", 120)
	env.mutate(t, "1004", func(s *models.Student) { s.Level = gamification.LevelFromXP(s.TotalXP) })

	first, err := env.gamification.CheckBadges("1004")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"level_2", "xp_25", "xp_100"}, first)

	second, err := env.gamification.CheckBadges("1004")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.ElementsMatch(t, first, env.student(t, "1004").Achievements.BadgesEarned)
}

func TestIncrementActivity(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1005", "5", "A", 0)

	awarded, err := env.gamification.IncrementActivity("1005", models.ActivitySpelling, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"spell_5"}, awarded)

	_, err = env.gamification.IncrementActivity("1005", "juggling", 1)
	assert.Error(t, err)
	assert.Equal(t, 5, env.student(t, "1005").Achievements.SpellingCount)
}

func TestIncrementActivityRepairsCorruptAchievements(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1006", "5", "A", 0)
	_, err := env.db.Exec("UPDATE users SET achievements = ? WHERE user_id = ?", "[1,2,3]", "1006")
	require.NoError(t, err)

	_, err = env.gamification.IncrementActivity("1006", models.ActivityVocabulary, 1)
	require.NoError(t, err)

	s := env.student(t, "1006")
	assert.Equal(t, models.FieldPresent, s.AchievementsState)
	assert.Equal(t, 1, s.Achievements.VocabularyCount)
}

func TestUpdateLoginStreak(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1007", "5", "A", 0)
	env.mutate(t, "1007", func(s *models.Student) {
		s.Achievements.LastLogin = "2024-03-05"
		s.Achievements.DailyLoginStreak = 3
		s.Achievements.MaxLoginStreak = 3
	})

	require.NoError(t, env.gamification.UpdateLoginStreak("1007"))
	require.NoError(t, env.gamification.UpdateLoginStreak("1007"))

	a := env.student(t, "1007").Achievements
	assert.Equal(t, 4, a.DailyLoginStreak)
	assert.Equal(t, 4, a.MaxLoginStreak)
	assert.Equal(t, "2024-03-06", a.LastLogin)
}

func TestLogMistake(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1008", "5", "A", 0)

	for i := 0; i < 55; i++ {
		require.NoError(t, env.gamification.LogMistake("1008", models.MistakeSpelling, map[string]interface{}{"word": "cat", "typed": "kat"}))
	}

	m := env.student(t, "1008").Mistakes
	assert.Len(t, m.Spelling, models.MaxMistakesPerCategory)
	assert.Equal(t, 55, m.Total)
	assert.Equal(t, "2024-03-06 09:30", m.Spelling[0].Time)
}

func TestChallengesRollover(t *testing.T) {
	tests := []struct {
		name         string
		allCompleted bool
		priorStreak  int
		wantStreak   int
		wantRecorded int
	}{
		{"completed week extends streak", true, 2, 3, 0},
		{"incomplete week resets streak", false, 5, 0, 0},
		{"seventh week records challenge streak", true, 6, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addStudent(t, "1010", "5", "A", 0)
			env.mutate(t, "1010", func(s *models.Student) {
				set := gamification.NewChallengeSet("2024-W09", tt.priorStreak)
				for i := range set.Challenges {
					set.Challenges[i].Completed = tt.allCompleted
				}
				s.Challenges = set
			})

			set, err := env.gamification.Challenges("1010")
			require.NoError(t, err)
			assert.Equal(t, testWeek, set.Week)
			assert.Equal(t, tt.wantStreak, set.Streak)
			assert.Equal(t, 0, set.CompletedToday)
			for _, c := range set.Challenges {
				assert.False(t, c.Completed)
			}
			assert.Equal(t, tt.wantRecorded, env.student(t, "1010").Achievements.ChallengeStreak)
		})
	}
}

func TestUpdateChallengeProgress(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1011", "5", "A", 0)

	xp, err := env.gamification.UpdateChallengeProgress("1011", models.ChallengeMastery, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, xp)

	xp, err = env.gamification.UpdateChallengeProgress("1011", models.ChallengeMastery, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, xp)

	xp, err = env.gamification.UpdateChallengeProgress("1011", models.ChallengeMastery, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, xp, "completed challenge earns nothing more")

	_, err = env.gamification.UpdateChallengeProgress("1011", models.ChallengePractice, 5)
	require.NoError(t, err)
	xp, err = env.gamification.UpdateChallengeProgress("1011", models.ChallengeLearning, 10)
	require.NoError(t, err)
	assert.Equal(t, 5+gamification.AllChallengesBonusXP, xp)

	s := env.student(t, "1011")
	assert.Equal(t, 25, s.TotalXP)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 3, s.Challenges.CompletedToday)

	_, err = env.gamification.UpdateChallengeProgress("1011", "bogus", 1)
	assert.ErrorIs(t, err, ErrUnknownChallenge)
}

func TestWeeklyLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	for _, st := range []struct {
		id, division string
		weekly, xp   int
	}{
		{"2001", "A", 50, 500},
		{"2002", "a", 50, 300},
		{"2003", "A", 80, 100},
		{"2004", "B", 90, 900},
	} {
		env.addStudent(t, st.id, "7", st.division, st.xp)
		weekly := st.weekly
		env.mutate(t, st.id, func(s *models.Student) { s.WeeklyXP = map[string]int{testWeek: weekly, "2024-W09": 999} })
	}

	board, err := env.gamification.WeeklyLeaderboard("7", " a ")
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, []string{"2003", "2001", "2002"}, []string{board[0].UserID, board[1].UserID, board[2].UserID})
	assert.Equal(t, []int{1, 2, 3}, []int{board[0].Rank, board[1].Rank, board[2].Rank})

	all, err := env.gamification.WeeklyLeaderboard("7", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "2004", all[0].UserID)
}

func TestEnsureBadgesRepairsLevel(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "1012", "5", "A", 180)
	_, err := env.db.Exec("UPDATE users SET achievements = NULL WHERE user_id = ?", "1012")
	require.NoError(t, err)

	awarded, err := env.gamification.EnsureBadges("1012")
	require.NoError(t, err)
	assert.Contains(t, awarded, "level_2")

	s := env.student(t, "1012")
	assert.Equal(t, 4, s.Level)
	assert.Equal(t, models.FieldPresent, s.AchievementsState)
}

func TestMigrateAndBackfill(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "3001", "6", "A", 80)
	env.addStudent(t, "3002", "6", "A", 0)
	env.addStudent(t, "3003", "6", "A", 40)
	env.mutate(t, "3003", func(s *models.Student) { s.WeeklyXP = map[string]int{testWeek: 12} })

	result := env.gamification.MigrateLevelsAndBadges()
	assert.Equal(t, MigrationResult{Migrated: 3, Errors: 0}, result)
	assert.Equal(t, 3, env.student(t, "3001").Level)

	seeded, err := env.gamification.BackfillWeeklyXP()
	require.NoError(t, err)
	assert.Equal(t, 1, seeded)
	assert.Equal(t, 80, env.student(t, "3001").WeeklyXP[testWeek])
	assert.Equal(t, 12, env.student(t, "3003").WeeklyXP[testWeek])
	assert.Empty(t, env.student(t, "3002").WeeklyXP)

	assert.Equal(t, 1, env.logs.FilterMessage("Levels and badges migrated").Len())
}
