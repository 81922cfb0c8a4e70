package models

// Challenge types
const (
	ChallengePractice = "practice"
	ChallengeLearning = "learning"
	ChallengeMastery  = "mastery"
)

// Challenge is one weekly goal
type Challenge struct {
	Type      string `json:"type"`
	Target    int    `json:"target"`
	Current   int    `json:"current"`
	Completed bool   `json:"completed"`
	XPReward  int    `json:"xp_reward"`
}

// ChallengeSet is the challenge snapshot of one ISO week
type ChallengeSet struct {
	Week           string      `json:"date"`
	Challenges     []Challenge `json:"challenges"`
	CompletedToday int         `json:"completed_today"`
	Streak         int         `json:"streak"`
}

// AllCompleted reports whether every challenge of the set is done
func (c *ChallengeSet) AllCompleted() bool {
	if len(c.Challenges) == 0 {
		return false
	}
	for _, ch := range c.Challenges {
		if !ch.Completed {
			return false
		}
	}
	return true
}
