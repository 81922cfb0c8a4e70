package gamification

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Comparison statuses
const (
	StatusCorrect   = "correct"
	StatusIncorrect = "incorrect"
	StatusMissing   = "missing"
)

const wordMatchRatio = 0.8

// A stage is five questions worth at most three stars each. Stars carried
// into the last question can only come from the four before it.
const (
	StageQuestions      = 5
	MaxQuestionStars    = 3
	MaxAccumulatedStars = (StageQuestions - 1) * MaxQuestionStars
)

// Similarity returns the matching-block ratio of two strings compared rune by rune
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Percent converts a ratio to a rounded percentage
func Percent(ratio float64) int {
	return int(math.RoundToEven(ratio * 100))
}

// WordComparison is the verdict for one expected word
type WordComparison struct {
	Word   string `json:"word"`
	Status string `json:"status"`
	Spoken string `json:"spoken,omitempty"`
}

// CompareWords compares the spoken text word by word against the expected sentence
func CompareWords(spoken, correct string) []WordComparison {
	said := strings.Fields(strings.ToLower(spoken))
	want := strings.Fields(strings.ToLower(correct))

	out := make([]WordComparison, 0, len(want))
	for i, w := range want {
		switch {
		case i >= len(said):
			out = append(out, WordComparison{Word: w, Status: StatusMissing})
		case Similarity(said[i], w) >= wordMatchRatio:
			out = append(out, WordComparison{Word: w, Status: StatusCorrect})
		default:
			out = append(out, WordComparison{Word: w, Status: StatusIncorrect, Spoken: said[i]})
		}
	}
	return out
}

// LetterComparison is the verdict for one expected letter
type LetterComparison struct {
	Letter string `json:"letter"`
	Status string `json:"status"`
	Typed  string `json:"typed,omitempty"`
}

// CompareSpelling compares a typed word letter by letter; extra typed letters are ignored
func CompareSpelling(typed, correct string) []LetterComparison {
	got := []rune(strings.ToLower(strings.TrimSpace(typed)))
	want := []rune(strings.ToLower(strings.TrimSpace(correct)))

	out := make([]LetterComparison, 0, len(want))
	for i, r := range want {
		letter := string(r)
		switch {
		case i >= len(got):
			out = append(out, LetterComparison{Letter: letter, Status: StatusMissing})
		case got[i] == r:
			out = append(out, LetterComparison{Letter: letter, Status: StatusCorrect})
		default:
			out = append(out, LetterComparison{Letter: letter, Status: StatusIncorrect, Typed: string(got[i])})
		}
	}
	return out
}

type band struct {
	min      float64
	stars    int
	feedback string
}

var repeatBands = []band{
	{0.9, 3, "Perfect! Amazing pronunciation!"},
	{0.75, 2, "Great job! Keep practicing!"},
	{0.6, 1, "Good try! Try speaking more clearly."},
	{0, 0, "Keep trying! Speak slowly and clearly."},
}

var spellingBands = []band{
	{0.8, 2, "Almost there! Check a few letters."},
	{0.5, 1, "Good try! Keep practicing!"},
	{0, 0, "Try again! Listen carefully to the word."},
}

// SpellingPerfectFeedback is returned for an exact spelling
const SpellingPerfectFeedback = "Perfect! You spelled it correctly!"

func pick(bands []band, ratio float64) (int, string) {
	for _, b := range bands {
		if ratio >= b.min {
			return b.stars, b.feedback
		}
	}
	last := bands[len(bands)-1]
	return last.stars, last.feedback
}

// RepeatResult is the scored outcome of one repeat attempt
type RepeatResult struct {
	Ratio    float64
	Score    int
	Stars    int
	Feedback string
	Words    []WordComparison
}

// ScoreRepeat scores a spoken sentence against the expected one
func ScoreRepeat(spoken, correct string) RepeatResult {
	ratio := Similarity(strings.ToLower(spoken), strings.ToLower(correct))
	stars, feedback := pick(repeatBands, ratio)
	return RepeatResult{
		Ratio:    ratio,
		Score:    Percent(ratio),
		Stars:    stars,
		Feedback: feedback,
		Words:    CompareWords(spoken, correct),
	}
}

// SpellingResult is the scored outcome of one spelling attempt
type SpellingResult struct {
	Correct  bool
	Typed    string
	Expected string
	Ratio    float64
	Stars    int
	Feedback string
	Letters  []LetterComparison
}

// ScoreSpelling scores a typed word. An exact match earns 3 stars whatever the ratio.
func ScoreSpelling(typed, correct string) SpellingResult {
	got := strings.ToLower(strings.TrimSpace(typed))
	want := strings.ToLower(strings.TrimSpace(correct))

	res := SpellingResult{
		Typed:    got,
		Expected: want,
		Ratio:    Similarity(got, want),
		Letters:  CompareSpelling(got, want),
	}
	if got == want {
		res.Correct = true
		res.Stars = 3
		res.Feedback = SpellingPerfectFeedback
		return res
	}
	res.Stars, res.Feedback = pick(spellingBands, res.Ratio)
	return res
}

// StageXP converts the stars of a finished stage into XP
func StageXP(accumulatedStars, stars int, difficulty string) int {
	return (accumulatedStars + stars) * XPMultiplier(difficulty)
}
