package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("cat", "cat"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	// 2*3 matches / 7 runes
	assert.InDelta(t, 6.0/7.0, Similarity("cat", "cart"), 1e-9)
}

func TestScoreRepeatBands(t *testing.T) {
	tests := []struct {
		name      string
		spoken    string
		correct   string
		wantStars int
	}{
		{"exact ignoring case", "The Cat Sat On The Mat.", "The cat sat on the mat.", 3},
		{"unrelated", "hello", "The cat sat on the mat.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreRepeat(tt.spoken, tt.correct)
			assert.Equal(t, tt.wantStars, res.Stars)
		})
	}
}

func TestPickBands(t *testing.T) {
	tests := []struct {
		ratio float64
		stars int
	}{
		{1.0, 3},
		{0.9, 3},
		{0.89, 2},
		{0.75, 2},
		{0.74, 1},
		{0.6, 1},
		{0.59, 0},
		{0, 0},
	}
	for _, tt := range tests {
		stars, feedback := pick(repeatBands, tt.ratio)
		assert.Equal(t, tt.stars, stars, "ratio %v", tt.ratio)
		assert.NotEmpty(t, feedback)
	}
}

func TestScoreSpelling(t *testing.T) {
	res := ScoreSpelling("  Cat ", "cat")
	assert.True(t, res.Correct)
	assert.Equal(t, 3, res.Stars)
	assert.Equal(t, SpellingPerfectFeedback, res.Feedback)

	res = ScoreSpelling("elephent", "elephant")
	assert.False(t, res.Correct)
	assert.Equal(t, 2, res.Stars)
	assert.Equal(t, "Almost there! Check a few letters.", res.Feedback)

	res = ScoreSpelling("zzz", "elephant")
	assert.Equal(t, 0, res.Stars)
	assert.Equal(t, "Try again! Listen carefully to the word.", res.Feedback)
}

func TestCompareWords(t *testing.T) {
	got := CompareWords("the cot", "The cat sat")
	require.Len(t, got, 3)
	assert.Equal(t, WordComparison{Word: "the", Status: StatusCorrect}, got[0])
	assert.Equal(t, WordComparison{Word: "cat", Status: StatusIncorrect, Spoken: "cot"}, got[1])
	assert.Equal(t, WordComparison{Word: "sat", Status: StatusMissing}, got[2])
}

func TestCompareSpelling(t *testing.T) {
	got := CompareSpelling("cst", "cats")
	require.Len(t, got, 4)
	assert.Equal(t, StatusCorrect, got[0].Status)
	assert.Equal(t, LetterComparison{Letter: "a", Status: StatusIncorrect, Typed: "s"}, got[1])
	assert.Equal(t, StatusCorrect, got[2].Status)
	assert.Equal(t, StatusMissing, got[3].Status)

	assert.Len(t, CompareSpelling("catsss", "cat"), 3, "extra letters are ignored")
}

func TestStageXP(t *testing.T) {
	assert.Equal(t, 6, StageXP(2, 1, DifficultyMedium))
	assert.Equal(t, 9, StageXP(3, 0, DifficultyHard))
	assert.Equal(t, 4, StageXP(4, 0, "unknown"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 86, Percent(6.0/7.0))
	assert.Equal(t, 100, Percent(1))
}
