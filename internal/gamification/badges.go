package gamification

import "smartspeak/internal/models"

// Badge comparison types that are not activity counters
const (
	BadgeTypeLevel   = "level"
	BadgeTypeTotalXP = "total_xp"
)

// Badge is one entry of the fixed badge catalog
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"desc"`
	Type        string `json:"type"`
	Requirement int    `json:"req"`
}

var catalog = []Badge{
	{"level_2", "Level 2 Reached!", "🏅", "Reach Level 2", BadgeTypeLevel, 2},
	{"level_5", "Level 5 Star!", "🌠", "Reach Level 5", BadgeTypeLevel, 5},
	{"level_10", "Level 10 Legend!", "🏆", "Reach Level 10", BadgeTypeLevel, 10},
	{"level_15", "Level 15 Pro!", "💎", "Reach Level 15", BadgeTypeLevel, 15},
	{"xp_25", "First 25 XP!", "✨", "Earn your first 25 XP", BadgeTypeTotalXP, 25},
	{"xp_100", "100 XP Club!", "💯", "Earn 100 XP", BadgeTypeTotalXP, 100},
	{"xp_500", "500 XP Achiever!", "🎯", "Earn 500 XP", BadgeTypeTotalXP, 500},
	{"xp_1000", "1000 XP Master!", "🚀", "Earn 1000 XP", BadgeTypeTotalXP, 1000},
	{"conv_5", "First Chat!", "💬", "Have 5 English conversations", "conversation_count", 5},
	{"conv_25", "Chatterbox!", "🗣️", "Have 25 conversations", "conversation_count", 25},
	{"roleplay_5", "Roleplay Beginner!", "🎭", "Complete 5 roleplay sessions", "roleplay_count", 5},
	{"roleplay_20", "Drama Star!", "🎬", "Complete 20 roleplay sessions", "roleplay_count", 20},
	{"repeat_10", "First 10 Sentences!", "🔁", "Repeat 10 sentences correctly", "repeat_count", 10},
	{"repeat_50", "Repeat Champ!", "🎤", "Repeat 50 sentences correctly", "repeat_count", 50},
	{"repeat_200", "Repeat Master!", "🌟", "Repeat 200 sentences correctly", "repeat_count", 200},
	{"spell_5", "First 5 Words!", "🐝", "Spell 5 words correctly", "spelling_count", 5},
	{"spell_25", "Speller!", "📝", "Spell 25 words correctly", "spelling_count", 25},
	{"spell_100", "Spell Master!", "📚", "Spell 100 words correctly", "spelling_count", 100},
	{"vocab_10", "Word Explorer!", "📖", "Look up 10 word meanings", "vocabulary_count", 10},
	{"vocab_50", "Word Collector!", "📚", "Look up 50 word meanings", "vocabulary_count", 50},
	{"perfect_5", "Pronunciation Star!", "💫", "Score 80%+ pronunciation 5 times", "high_pronunciation_count", 5},
	{"perfect_25", "Pronunciation Pro!", "⭐", "Score 80%+ pronunciation 25 times", "high_pronunciation_count", 25},
}

// Catalog returns a copy of the badge catalog in display order
func Catalog() []Badge {
	out := make([]Badge, len(catalog))
	copy(out, catalog)
	return out
}

// BadgeSnapshot is the data a badge evaluation reads
type BadgeSnapshot struct {
	Level        int
	TotalXP      int
	Achievements *models.Achievements
}

func (s BadgeSnapshot) value(badgeType string) int {
	switch badgeType {
	case BadgeTypeLevel:
		return s.Level
	case BadgeTypeTotalXP:
		return s.TotalXP
	default:
		if s.Achievements == nil {
			return 0
		}
		return s.Achievements.Counter(badgeType)
	}
}

// EvaluateBadges appends every newly qualifying badge to the snapshot's
// earned set and returns the ids it added.
func EvaluateBadges(s BadgeSnapshot) []string {
	if s.Achievements == nil {
		return nil
	}
	var awarded []string
	for _, b := range catalog {
		if s.Achievements.HasBadge(b.ID) {
			continue
		}
		if s.value(b.Type) >= b.Requirement {
			s.Achievements.BadgesEarned = append(s.Achievements.BadgesEarned, b.ID)
			awarded = append(awarded, b.ID)
		}
	}
	return awarded
}

// BadgeStatus is a catalog entry annotated with whether it was earned
type BadgeStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"desc"`
	Earned      bool   `json:"earned"`
}

// BadgeStatuses annotates the whole catalog for a student's achievements
func BadgeStatuses(a *models.Achievements) []BadgeStatus {
	out := make([]BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		out = append(out, BadgeStatus{
			ID:          b.ID,
			Name:        b.Name,
			Icon:        b.Icon,
			Description: b.Description,
			Earned:      a != nil && a.HasBadge(b.ID),
		})
	}
	return out
}
