package service

import (
	"context"
	"errors"

	"smartspeak/internal/audio"
	"smartspeak/internal/content"
	"smartspeak/internal/dialogue"
	"smartspeak/internal/gamification"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
)

// Fallback content used when the catalog or the generator cannot help
const (
	FallbackSentence = "The cat sat on the mat."
	FallbackWord     = "cat"
	FallbackUsage    = "The cat is a friendly animal."
)

// Ratio thresholds with side effects on a repeat attempt
const (
	mistakeRatio = 0.6
	masteryRatio = 0.8
)

// ErrEmptyWord is returned when a meaning is requested for a blank word
var ErrEmptyWord = errors.New("no word provided")

// RepeatPrompt is a sentence to repeat with its normal and slow audio
type RepeatPrompt struct {
	Sentence  string  `json:"sentence"`
	Audio     *string `json:"audio"`
	AudioSlow *string `json:"audio_slow"`
}

// SpellPrompt is a word to spell with an example sentence
type SpellPrompt struct {
	Word          string  `json:"word"`
	Usage         string  `json:"usage"`
	AudioWord     *string `json:"audio_word"`
	AudioSentence *string `json:"audio_sentence"`
}

// Attempt carries the stage bookkeeping the client sends with each answer.
// UserID may be empty for anonymous practice, which records nothing.
type Attempt struct {
	UserID           string
	StageComplete    bool
	AccumulatedStars int
	Difficulty       string
}

// StageOutcome is the XP part of a checked answer
type StageOutcome struct {
	LevelInfo    *LevelInfo `json:"level_info"`
	StarsSaved   bool       `json:"stars_saved"`
	XPMultiplier int        `json:"xp_multiplier"`
	XPAwarded    int        `json:"xp_awarded"`
}

// RepeatCheck is the scored answer to a repeat attempt
type RepeatCheck struct {
	Feedback       string                        `json:"feedback"`
	Score          int                           `json:"score"`
	Stars          int                           `json:"stars"`
	WordComparison []gamification.WordComparison `json:"word_comparison"`
	StageOutcome
}

// SpellingCheck is the scored answer to a spelling attempt
type SpellingCheck struct {
	Correct          bool                            `json:"correct"`
	Feedback         string                          `json:"feedback"`
	Stars            int                             `json:"stars"`
	LetterComparison []gamification.LetterComparison `json:"letter_comparison"`
	CorrectSpelling  string                          `json:"correct_spelling"`
	StageOutcome
}

// MeaningResult is a word explanation with its audio
type MeaningResult struct {
	dialogue.Meaning
	Audio *string `json:"audio"`
}

// PracticeService runs the repeat, spelling and vocabulary exercises
type PracticeService struct {
	catalog      *content.Catalog
	generator    dialogue.Generator
	prompts      dialogue.Prompts
	synth        audio.Synthesizer
	gamification *GamificationService
	log          *logger.Logger
}

// NewPracticeService creates a new practice service
func NewPracticeService(catalog *content.Catalog, generator dialogue.Generator, synth audio.Synthesizer, gamification *GamificationService, log *logger.Logger) *PracticeService {
	return &PracticeService{
		catalog:      catalog,
		generator:    generator,
		synth:        synth,
		gamification: gamification,
		log:          log,
	}
}

// RepeatSentence picks a sentence and synthesizes it at both speeds
func (s *PracticeService) RepeatSentence(ctx context.Context, category, difficulty string) RepeatPrompt {
	sentence := s.catalog.RandomSentence(category, difficulty)
	if sentence == "" {
		s.log.Warn("Content catalog returned no sentence", "category", category, "difficulty", difficulty)
		sentence = FallbackSentence
	}
	clips := audio.SynthesizeAll(ctx, s.synth, s.log,
		audio.Clip{Text: sentence},
		audio.Clip{Text: sentence, Slow: true},
	)
	return RepeatPrompt{Sentence: sentence, Audio: clips[0], AudioSlow: clips[1]}
}

// completeStage converts the stage's stars to XP when the stage is finished
func (s *PracticeService) completeStage(a Attempt, stars int, mode string) StageOutcome {
	out := StageOutcome{
		StarsSaved:   a.StageComplete,
		XPMultiplier: gamification.XPMultiplier(a.Difficulty),
	}
	if !a.StageComplete || a.UserID == "" {
		return out
	}
	out.XPAwarded = gamification.StageXP(a.AccumulatedStars, stars, a.Difficulty)
	info, err := s.gamification.RecordStageCompletion(a.UserID, mode, out.XPAwarded)
	if errors.Is(err, ErrNegativeXP) {
		s.log.Warn("Rejected stage with negative XP", "user_id", a.UserID, "mode", mode, "accumulated_stars", a.AccumulatedStars)
		out.XPAwarded = 0
		return out
	}
	if err != nil {
		s.log.Warn("Failed to save stage progress", "user_id", a.UserID, "mode", mode, "error", err)
		return out
	}
	out.LevelInfo = info
	return out
}

// CheckRepeat scores a spoken sentence and records its side effects
func (s *PracticeService) CheckRepeat(spoken, correct string, a Attempt) RepeatCheck {
	res := gamification.ScoreRepeat(spoken, correct)
	check := RepeatCheck{
		Feedback:       res.Feedback,
		Score:          res.Score,
		Stars:          res.Stars,
		WordComparison: res.Words,
		StageOutcome:   s.completeStage(a, res.Stars, ModeRepeat),
	}
	if a.UserID == "" {
		return check
	}

	if res.Ratio < mistakeRatio {
		err := s.gamification.LogMistake(a.UserID, models.MistakePronunciation, map[string]interface{}{
			"sentence": correct,
			"said":     spoken,
			"score":    res.Score,
		})
		if err != nil {
			s.log.Warn("Failed to log mistake", "user_id", a.UserID, "error", err)
		}
	}
	if res.Ratio >= masteryRatio {
		if _, err := s.gamification.UpdateChallengeProgress(a.UserID, models.ChallengeMastery, 1); err != nil {
			s.log.Warn("Challenge tracking failed", "user_id", a.UserID, "error", err)
		}
		s.track(a.UserID, models.ActivityHighPronunciation)
	}
	if res.Ratio >= mistakeRatio {
		s.track(a.UserID, models.ActivityRepeat)
	}
	return check
}

func (s *PracticeService) track(userID, activity string) {
	if _, err := s.gamification.IncrementActivity(userID, activity, 1); err != nil {
		s.log.Warn("Activity tracking failed", "user_id", userID, "activity", activity, "error", err)
	}
}

// SpellWord picks a word, asks the generator for an example sentence and
// synthesizes both
func (s *PracticeService) SpellWord(ctx context.Context, difficulty string) SpellPrompt {
	word := s.catalog.RandomWord(difficulty)
	var usage string
	if word == "" {
		word, usage = FallbackWord, FallbackUsage
	} else {
		text, err := s.generator.Generate(ctx, s.prompts.WordUsage(word))
		usage = dialogue.CleanSentence(text)
		if err != nil || usage == "" {
			s.log.Warn("Example sentence generation failed", "word", word, "error", err)
			word, usage = FallbackWord, FallbackUsage
		}
	}

	clips := audio.SynthesizeAll(ctx, s.synth, s.log,
		audio.Clip{Text: word, Slow: true},
		audio.Clip{Text: usage},
	)
	return SpellPrompt{Word: word, Usage: usage, AudioWord: clips[0], AudioSentence: clips[1]}
}

// CheckSpelling scores a typed word and records its side effects
func (s *PracticeService) CheckSpelling(typed, correct string, a Attempt) SpellingCheck {
	res := gamification.ScoreSpelling(typed, correct)

	if !res.Correct && a.UserID != "" {
		err := s.gamification.LogMistake(a.UserID, models.MistakeSpelling, map[string]interface{}{
			"word":       res.Expected,
			"typed":      res.Typed,
			"similarity": gamification.Percent(res.Ratio),
		})
		if err != nil {
			s.log.Warn("Failed to log mistake", "user_id", a.UserID, "error", err)
		}
	}

	check := SpellingCheck{
		Correct:          res.Correct,
		Feedback:         res.Feedback,
		Stars:            res.Stars,
		LetterComparison: res.Letters,
		CorrectSpelling:  res.Expected,
		StageOutcome:     s.completeStage(a, res.Stars, ModeSpellBee),
	}
	if res.Correct && a.UserID != "" {
		s.track(a.UserID, models.ActivitySpelling)
	}
	return check
}

// Meaning explains a word. A generator failure yields the canned explanation.
func (s *PracticeService) Meaning(ctx context.Context, userID, word string) (*MeaningResult, error) {
	if word == "" {
		return nil, ErrEmptyWord
	}

	text, err := s.generator.Generate(ctx, s.prompts.Meaning(word))
	if err == nil {
		err = dialogue.CheckMeaning(text)
	}
	if err != nil {
		s.log.Warn("Meaning generation failed", "word", word, "error", err)
		text = dialogue.FallbackMeaning(word)
	}

	meaning := dialogue.ParseMeaning(word, text)
	result := &MeaningResult{
		Meaning: meaning,
		Audio:   audio.SynthesizeAll(ctx, s.synth, s.log, audio.Clip{Text: meaning.SpokenText()})[0],
	}

	if userID != "" {
		s.track(userID, models.ActivityVocabulary)
		if _, err := s.gamification.UpdateChallengeProgress(userID, models.ChallengeLearning, 1); err != nil {
			s.log.Warn("Challenge tracking failed", "user_id", userID, "error", err)
		}
	}
	return result, nil
}
