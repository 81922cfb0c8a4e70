package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smartspeak/internal/logger"
	"smartspeak/internal/service"
)

// AdminHandler handles the admin console API
type AdminHandler struct {
	adminService  *service.AdminService
	backupService *service.BackupService
	log           *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, backupService *service.BackupService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		backupService: backupService,
		log:           log,
	}
}

type adminRequest struct {
	TeacherID   string `json:"teacher_id"`
	StudentID   string `json:"student_id"`
	NewPassword string `json:"new_password"`
	Generate    bool   `json:"generate"`
}

// Stats returns account counts
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats()
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, MsgAdminListFailed, "Failed to count accounts", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"stats": stats})
}

// Students lists every student
func (h *AdminHandler) Students(w http.ResponseWriter, r *http.Request) {
	students, err := h.adminService.ListStudents()
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, MsgAdminListFailed, "Failed to list students", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"students": students})
}

// Teachers lists every teacher
func (h *AdminHandler) Teachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.adminService.ListTeachers()
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, MsgAdminListFailed, "Failed to list teachers", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"teachers": teachers})
}

// PasswordResetRequests lists teachers waiting for a password reset
func (h *AdminHandler) PasswordResetRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.adminService.PasswordResetRequests()
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, MsgAdminListFailed, "Failed to list reset requests", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"requests": requests})
}

// teacherAction runs one of the teacher moderation operations
func (h *AdminHandler) teacherAction(w http.ResponseWriter, r *http.Request, action func(string) error, okMsg, failMsg string) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	teacherID := strings.TrimSpace(req.TeacherID)
	if teacherID == "" {
		respondFailure(w, MsgNoTeacherID)
		return
	}
	if err := action(teacherID); err != nil {
		if !errors.Is(err, service.ErrTeacherNotFound) {
			h.log.Error(failMsg, "teacher_id", teacherID, "error", err)
		}
		respondFailure(w, failMsg)
		return
	}
	respondSuccess(w, map[string]interface{}{"message": okMsg})
}

// ApproveTeacher approves a pending teacher
func (h *AdminHandler) ApproveTeacher(w http.ResponseWriter, r *http.Request) {
	h.teacherAction(w, r, h.adminService.ApproveTeacher, MsgTeacherApproved, MsgTeacherApproveFailed)
}

// RejectTeacher rejects a teacher registration
func (h *AdminHandler) RejectTeacher(w http.ResponseWriter, r *http.Request) {
	h.teacherAction(w, r, h.adminService.RejectTeacher, MsgTeacherRejectedByAdmin, MsgTeacherRejectFailed)
}

// DeleteTeacher removes a teacher account
func (h *AdminHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	h.teacherAction(w, r, h.adminService.DeleteTeacher, MsgTeacherDeleted, MsgTeacherDeleteFailed)
}

// DeleteStudent removes a student account
func (h *AdminHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		respondFailure(w, MsgNoStudentID)
		return
	}
	if err := h.adminService.DeleteStudent(studentID); err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			h.log.Error("Failed to delete student", "user_id", studentID, "error", err)
		}
		respondFailure(w, MsgStudentDeleteFailed)
		return
	}
	respondSuccess(w, map[string]interface{}{"message": MsgStudentDeleted})
}

// ResetStudentPassword sets a student's password. With "generate" and no
// password a new one is generated and returned.
func (h *AdminHandler) ResetStudentPassword(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" || (req.NewPassword == "" && !req.Generate) {
		respondFailure(w, MsgMissingStudentReset)
		return
	}

	password, err := h.adminService.ResetStudentPassword(studentID, req.NewPassword)
	if msg, ok := validationMessage(err); ok {
		respondFailure(w, msg)
		return
	}
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			h.log.Error("Failed to reset student password", "user_id", studentID, "error", err)
		}
		respondFailure(w, MsgPasswordResetFailed)
		return
	}

	body := map[string]interface{}{"message": MsgStudentPasswordReset}
	if req.NewPassword == "" {
		body["password"] = password
	}
	respondSuccess(w, body)
}

// ResetTeacherPassword sets a teacher's password and clears any reset request
func (h *AdminHandler) ResetTeacherPassword(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	teacherID := strings.TrimSpace(req.TeacherID)
	if teacherID == "" || (req.NewPassword == "" && !req.Generate) {
		respondFailure(w, MsgMissingTeacherReset)
		return
	}

	password, err := h.adminService.ResetTeacherPassword(r.Context(), teacherID, req.NewPassword)
	if msg, ok := validationMessage(err); ok {
		respondFailure(w, msg)
		return
	}
	if err != nil {
		if !errors.Is(err, service.ErrTeacherNotFound) {
			h.log.Error("Failed to reset teacher password", "teacher_id", teacherID, "error", err)
		}
		respondFailure(w, MsgPasswordResetFailed)
		return
	}

	body := map[string]interface{}{"message": MsgTeacherPasswordReset}
	if req.NewPassword == "" {
		body["password"] = password
	}
	respondSuccess(w, body)
}

// ExportDatabase streams a JSON backup of every account
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("smartspeak_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	data, err := h.backupService.ExportToWriter(w)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	claims := GetClaimsFromContext(r.Context())
	h.log.Info("Database exported", "admin_id", claims.UserID, "students", len(data.Students), "teachers", len(data.Teachers))
}

// ImportDatabase restores an uploaded backup file
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (10MB max)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, "Failed to parse form", "", nil)
		return
	}

	file, _, err := r.FormFile("backup_file")
	if err != nil {
		respondFailure(w, "Please select a backup file")
		return
	}
	defer file.Close()

	clearData := r.FormValue("clear_data") == "true"
	if err := h.backupService.ImportFromReader(file, clearData); err != nil {
		h.log.Error("Error importing database", "error", err)
		respondFailure(w, "Failed to import database: "+err.Error())
		return
	}

	claims := GetClaimsFromContext(r.Context())
	h.log.Info("Database imported", "admin_id", claims.UserID, "clear_data", clearData)
	respondSuccess(w, map[string]interface{}{"message": "Database imported successfully!"})
}
