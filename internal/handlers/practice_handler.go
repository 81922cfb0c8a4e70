package handlers

import (
	"errors"
	"net/http"
	"strings"

	"smartspeak/internal/gamification"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/service"
)

// PracticeHandler serves the coaching, repeat, spelling and vocabulary exercises.
// Anonymous visitors may practise; only a student session records progress.
type PracticeHandler struct {
	practice *service.PracticeService
	coach    *service.CoachService
	log      *logger.Logger
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practice *service.PracticeService, coach *service.CoachService, log *logger.Logger) *PracticeHandler {
	return &PracticeHandler{
		practice: practice,
		coach:    coach,
		log:      log,
	}
}

type processRequest struct {
	Text     string `json:"text"`
	Roleplay string `json:"roleplay"`
}

// Process answers one spoken utterance in conversation or roleplay mode
func (h *PracticeHandler) Process(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)
	if userID == "" {
		respondJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": ErrNotLoggedIn})
		return
	}

	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": ErrInvalidRequest})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": MsgNoTextProvided})
		return
	}

	persona := strings.TrimSpace(req.Roleplay)
	if persona != "" && !models.IsRoleplayPersona(persona) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": MsgUnknownPersona})
		return
	}

	turn := h.coach.Process(r.Context(), userID, req.Text, persona)
	respondJSON(w, http.StatusOK, turn)
}

// ResetConversation clears the student's memory for free conversation or one persona
func (h *PracticeHandler) ResetConversation(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": ErrInvalidRequest})
		return
	}

	err := h.coach.Reset(r.Context(), studentID(r), strings.TrimSpace(req.Roleplay))
	switch {
	case errors.Is(err, service.ErrUnknownPersona):
		respondFailure(w, MsgUnknownPersona)
	case err != nil:
		h.log.Error("Failed to clear conversation", "user_id", studentID(r), "error", err)
		respondFailure(w, MsgConversationResetFailed)
	default:
		respondSuccess(w, map[string]interface{}{"message": MsgConversationReset})
	}
}

type promptRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// RepeatSentence hands out a sentence to repeat
func (h *PracticeHandler) RepeatSentence(w http.ResponseWriter, r *http.Request) {
	req := promptRequest{Category: "general", Difficulty: "easy"}
	if err := decodeJSON(r, &req); err != nil {
		h.log.Debug("Ignoring malformed repeat request", "error", err)
	}
	respondJSON(w, http.StatusOK, h.practice.RepeatSentence(r.Context(), req.Category, req.Difficulty))
}

// SpellWord hands out a word to spell
func (h *PracticeHandler) SpellWord(w http.ResponseWriter, r *http.Request) {
	req := promptRequest{Difficulty: "easy"}
	if err := decodeJSON(r, &req); err != nil {
		h.log.Debug("Ignoring malformed spelling request", "error", err)
	}
	respondJSON(w, http.StatusOK, h.practice.SpellWord(r.Context(), req.Difficulty))
}

type attemptRequest struct {
	Student          string `json:"student"`
	Spelling         string `json:"spelling"`
	Correct          string `json:"correct"`
	StageComplete    bool   `json:"stage_complete"`
	AccumulatedStars int    `json:"accumulated_stars"`
	Difficulty       string `json:"difficulty"`
}

func (req attemptRequest) validStars() bool {
	return req.AccumulatedStars >= 0 && req.AccumulatedStars <= gamification.MaxAccumulatedStars
}

func (req attemptRequest) attempt(userID string) service.Attempt {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "easy"
	}
	return service.Attempt{
		UserID:           userID,
		StageComplete:    req.StageComplete,
		AccumulatedStars: req.AccumulatedStars,
		Difficulty:       difficulty,
	}
}

// CheckRepeat scores a spoken attempt at a sentence
func (h *PracticeHandler) CheckRepeat(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": ErrInvalidRequest})
		return
	}
	if !req.validStars() {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": MsgInvalidStageStars})
		return
	}
	respondJSON(w, http.StatusOK, h.practice.CheckRepeat(req.Student, req.Correct, req.attempt(studentID(r))))
}

// CheckSpelling scores a typed attempt at a word
func (h *PracticeHandler) CheckSpelling(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": ErrInvalidRequest})
		return
	}
	if !req.validStars() {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": MsgInvalidStageStars})
		return
	}
	respondJSON(w, http.StatusOK, h.practice.CheckSpelling(req.Spelling, req.Correct, req.attempt(studentID(r))))
}

// GetMeaning explains a word
func (h *PracticeHandler) GetMeaning(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.log.Debug("Ignoring malformed meaning request", "error", err)
	}

	result, err := h.practice.Meaning(r.Context(), studentID(r), strings.TrimSpace(req.Word))
	if errors.Is(err, service.ErrEmptyWord) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   MsgNoWordProvided,
			"word":    "",
			"meaning": MsgEnterWordForMeaning,
			"usage":   "",
			"type":    "",
			"tip":     "",
			"audio":   nil,
		})
		return
	}
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Meaning lookup failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
