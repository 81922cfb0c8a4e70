package models

// Activity counter names
const (
	ActivityConversation      = "conversation"
	ActivityRoleplay          = "roleplay"
	ActivityRepeat            = "repeat"
	ActivitySpelling          = "spelling"
	ActivityVocabulary        = "vocabulary"
	ActivityHighPronunciation = "high_pronunciation"
)

// Achievements holds badge and streak state for a student
type Achievements struct {
	BadgesEarned           []string `json:"badges_earned"`
	DailyLoginStreak       int      `json:"daily_login_streak"`
	MaxLoginStreak         int      `json:"max_login_streak"`
	LastLogin              string   `json:"last_login,omitempty"`
	ConversationCount      int      `json:"conversation_count"`
	RoleplayCount          int      `json:"roleplay_count"`
	RepeatCount            int      `json:"repeat_count"`
	SpellingCount          int      `json:"spelling_count"`
	VocabularyCount        int      `json:"vocabulary_count"`
	HighPronunciationCount int      `json:"high_pronunciation_count"`
	ChallengeStreak        int      `json:"challenge_streak"`
}

// NewAchievements returns the zero record every student starts with
func NewAchievements() Achievements {
	return Achievements{BadgesEarned: []string{}}
}

// HasBadge reports whether id was already earned
func (a *Achievements) HasBadge(id string) bool {
	for _, b := range a.BadgesEarned {
		if b == id {
			return true
		}
	}
	return false
}

// Counter returns a counter by its stored name (e.g. "repeat_count").
// Unknown names read as 0.
func (a *Achievements) Counter(name string) int {
	if p := a.counterRef(name); p != nil {
		return *p
	}
	return 0
}

// AddActivity increments <activity>_count and reports whether the activity is known
func (a *Achievements) AddActivity(activity string, amount int) bool {
	p := a.counterRef(activity + "_count")
	if p == nil {
		return false
	}
	*p += amount
	return true
}

func (a *Achievements) counterRef(name string) *int {
	switch name {
	case "conversation_count":
		return &a.ConversationCount
	case "roleplay_count":
		return &a.RoleplayCount
	case "repeat_count":
		return &a.RepeatCount
	case "spelling_count":
		return &a.SpellingCount
	case "vocabulary_count":
		return &a.VocabularyCount
	case "high_pronunciation_count":
		return &a.HighPronunciationCount
	case "challenge_streak":
		return &a.ChallengeStreak
	case "daily_login_streak":
		return &a.DailyLoginStreak
	case "max_login_streak":
		return &a.MaxLoginStreak
	}
	return nil
}

// ActivityStats is the counter view returned with the badge catalog
type ActivityStats struct {
	Conversations     int `json:"conversations"`
	Roleplays         int `json:"roleplays"`
	Repeats           int `json:"repeats"`
	Spellings         int `json:"spellings"`
	Vocabulary        int `json:"vocabulary"`
	HighPronunciation int `json:"high_pronunciation"`
}

// Stats returns the activity counters
func (a *Achievements) Stats() ActivityStats {
	return ActivityStats{
		Conversations:     a.ConversationCount,
		Roleplays:         a.RoleplayCount,
		Repeats:           a.RepeatCount,
		Spellings:         a.SpellingCount,
		Vocabulary:        a.VocabularyCount,
		HighPronunciation: a.HighPronunciationCount,
	}
}
