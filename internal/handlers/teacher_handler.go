package handlers

import (
	"errors"
	"net/http"

	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/service"
)

// TeacherHandler serves the teacher dashboard
type TeacherHandler struct {
	teachers *service.TeacherService
	log      *logger.Logger
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(teachers *service.TeacherService, log *logger.Logger) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, log: log}
}

// Classes lists the classes and divisions that have students
func (h *TeacherHandler) Classes(w http.ResponseWriter, r *http.Request) {
	classes, err := h.teachers.Classes()
	if err != nil {
		h.log.Warn("Class list unavailable", "error", err)
		classes = nil
	}
	if classes == nil {
		classes = []models.ClassSummary{}
	}
	respondSuccess(w, map[string]interface{}{"classes": classes})
}

// ClassStudents lists one class's students, highest XP first
func (h *TeacherHandler) ClassStudents(w http.ResponseWriter, r *http.Request) {
	var req leaderboardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	students, err := h.teachers.ClassStudents(req.Class, req.Division)
	if errors.Is(err, service.ErrMissingFields) {
		respondFailure(w, MsgNoClassSelected)
		return
	}
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, MsgClassStudentsFailed, "", err)
		return
	}
	respondSuccess(w, map[string]interface{}{
		"students":       students,
		"total_students": len(students),
	})
}
