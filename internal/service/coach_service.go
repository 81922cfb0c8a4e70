package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartspeak/internal/audio"
	"smartspeak/internal/cache"
	"smartspeak/internal/dialogue"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/repository"
)

// Transcript speaker labels
const (
	SpeakerChild     = "Child"
	SpeakerStudent   = "Student"
	SpeakerAssistant = "Assistant"
)

// FallbackCoachReply is spoken when the dialogue generator cannot answer
const FallbackCoachReply = "Great try! Let's keep talking. Can you say that again in a full sentence?"

// ContextService keeps the isolated per-mode transcripts of each user. The
// store is the source of truth; the cache only answers when the store cannot.
type ContextService struct {
	convRepo *repository.ConversationRepository
	cache    cache.ContextCache
	log      *logger.Logger
	now      func() time.Time
}

// NewContextService creates a new context service
func NewContextService(convRepo *repository.ConversationRepository, contextCache cache.ContextCache, log *logger.Logger) *ContextService {
	return &ContextService{
		convRepo: convRepo,
		cache:    contextCache,
		log:      log,
		now:      time.Now,
	}
}

// GetContext returns the transcript for (user, mode), or "" when none exists
func (s *ContextService) GetContext(ctx context.Context, userID, mode string) string {
	transcript, err := s.convRepo.GetContext(userID, mode)
	if err == nil {
		if transcript != "" {
			if err := s.cache.Set(ctx, userID, mode, transcript); err != nil {
				s.log.Debug("Context cache fill failed", "user_id", userID, "mode", mode, "error", err)
			}
		}
		return transcript
	}

	s.log.Warn("Conversation store unavailable, using cache", "user_id", userID, "mode", mode, "error", err)
	cached, cacheErr := s.cache.Get(ctx, userID, mode)
	if cacheErr != nil {
		if !errors.Is(cacheErr, cache.ErrCacheMiss) {
			s.log.Warn("Context cache read failed", "user_id", userID, "mode", mode, "error", cacheErr)
		}
		return ""
	}
	return cached
}

// AppendTurn adds one exchange to the transcript, trims it to the mode's line
// limit and stores the result. It returns the stored transcript.
func (s *ContextService) AppendTurn(ctx context.Context, userID, mode, speaker, utterance, reply string) (string, error) {
	history := s.GetContext(ctx, userID, mode)
	turn := fmt.Sprintf("%s: %s\n%s: %s", speaker, utterance, SpeakerAssistant, reply)
	if history != "" {
		turn = history + "\n" + turn
	}
	transcript := models.TrimContext(mode, turn)

	if err := s.convRepo.SaveContext(userID, mode, transcript, s.now()); err != nil {
		return "", fmt.Errorf("failed to save context: %w", err)
	}
	if err := s.cache.Invalidate(ctx, userID, mode); err != nil {
		s.log.Warn("Context cache invalidation failed", "user_id", userID, "mode", mode, "error", err)
	}
	return transcript, nil
}

// ResetContext deletes the stored transcript of one mode and its cached copy
func (s *ContextService) ResetContext(ctx context.Context, userID, mode string) error {
	if err := s.convRepo.DeleteContext(userID, mode, s.now()); err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}
	if err := s.cache.Invalidate(ctx, userID, mode); err != nil {
		s.log.Warn("Context cache invalidation failed", "user_id", userID, "mode", mode, "error", err)
	}
	return nil
}

// ForgetUser evicts every cached transcript of a user
func (s *ContextService) ForgetUser(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn("Context cache eviction failed", "user_id", userID, "error", err)
	}
}

// ErrUnknownPersona is returned for a roleplay persona outside models.RoleplayPersonas
var ErrUnknownPersona = errors.New("unknown roleplay persona")

// CoachTurn is the answer to one spoken utterance
type CoachTurn struct {
	Reply    string  `json:"reply"`
	Audio    *string `json:"audio"`
	XPEarned int     `json:"xp_earned"`
}

// CoachService runs conversation and roleplay coaching turns
type CoachService struct {
	contexts     *ContextService
	generator    dialogue.Generator
	prompts      dialogue.Prompts
	synth        audio.Synthesizer
	gamification *GamificationService
	log          *logger.Logger
}

// NewCoachService creates a new coach service
func NewCoachService(contexts *ContextService, generator dialogue.Generator, synth audio.Synthesizer, gamification *GamificationService, log *logger.Logger) *CoachService {
	return &CoachService{
		contexts:     contexts,
		generator:    generator,
		synth:        synth,
		gamification: gamification,
		log:          log,
	}
}

// Process answers one utterance. An empty or unknown persona selects free
// conversation; otherwise the persona's roleplay memory is used.
func (s *CoachService) Process(ctx context.Context, userID, text, persona string) *CoachTurn {
	if !models.IsRoleplayPersona(persona) {
		persona = ""
	}
	mode, speaker, activity := models.ModeConversation, SpeakerChild, models.ActivityConversation
	if persona != "" {
		mode, speaker, activity = models.RoleplayMode(persona), SpeakerStudent, models.ActivityRoleplay
	}

	history := s.contexts.GetContext(ctx, userID, mode)
	req := s.prompts.Conversation(history, text)
	if persona != "" {
		req = s.prompts.Roleplay(persona, history, text)
	}

	turn := &CoachTurn{}
	raw, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.log.Warn("Dialogue generator failed", "user_id", userID, "mode", mode, "error", err)
		turn.Reply = FallbackCoachReply
	} else {
		if _, err := s.contexts.AppendTurn(ctx, userID, mode, speaker, text, raw); err != nil {
			s.log.Warn("Context update failed", "user_id", userID, "mode", mode, "error", err)
		}
		if _, err := s.gamification.IncrementActivity(userID, activity, 1); err != nil {
			s.log.Warn("Activity tracking failed", "user_id", userID, "activity", activity, "error", err)
		}
		xp, err := s.gamification.UpdateChallengeProgress(userID, models.ChallengePractice, 1)
		if err != nil {
			s.log.Warn("Challenge tracking failed", "user_id", userID, "error", err)
		}
		turn.XPEarned = xp
		turn.Reply = dialogue.ParseCoachReply(raw).Compose()
	}

	turn.Audio = audio.SynthesizeAll(ctx, s.synth, s.log, audio.Clip{Text: turn.Reply})[0]
	return turn
}

// Reset clears the conversation memory of free conversation, or of one
// roleplay persona when persona is set
func (s *CoachService) Reset(ctx context.Context, userID, persona string) error {
	mode := models.ModeConversation
	if persona != "" {
		if !models.IsRoleplayPersona(persona) {
			return ErrUnknownPersona
		}
		mode = models.RoleplayMode(persona)
	}
	if err := s.contexts.ResetContext(ctx, userID, mode); err != nil {
		return err
	}
	s.log.Info("Conversation memory cleared", "user_id", userID, "mode", mode)
	return nil
}
