package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspeak/internal/security"
)

func TestAdminStatsAndLists(t *testing.T) {
	srv := newTestServer(t)
	srv.signupStudent(t, "1001")
	srv.signupStudent(t, "1002")
	srv.do(t, http.MethodPost, "/signup", map[string]string{
		"user_type": "teacher", "username": "tchr01", "password": "secret", "name": "Ms Rao",
	}, nil)
	admin := srv.loginAdmin(t)

	_, out := srv.do(t, http.MethodGet, "/api/admin/stats", nil, admin)
	require.Equal(t, true, out["success"])
	stats := out["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total_students"])
	assert.EqualValues(t, 0, stats["total_teachers"])
	assert.EqualValues(t, 1, stats["pending_teachers"])

	_, out = srv.do(t, http.MethodGet, "/api/admin/students", nil, admin)
	assert.Len(t, out["students"], 2)

	_, out = srv.do(t, http.MethodGet, "/api/admin/teachers", nil, admin)
	teachers := out["teachers"].([]interface{})
	require.Len(t, teachers, 1)
	assert.Equal(t, "pending", teachers[0].(map[string]interface{})["status"])
}

func TestAdminResetStudentPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.signupStudent(t, "1234")
	admin := srv.loginAdmin(t)

	tests := []struct {
		name    string
		body    map[string]interface{}
		success bool
		message string
	}{
		{"missing password", map[string]interface{}{"student_id": "1234"}, false, MsgMissingStudentReset},
		{"missing student", map[string]interface{}{"new_password": "fresh"}, false, MsgMissingStudentReset},
		{"too short", map[string]interface{}{"student_id": "1234", "new_password": "ab"}, false, "Password must be at least 4 characters."},
		{"unknown student", map[string]interface{}{"student_id": "9999", "new_password": "fresh"}, false, MsgPasswordResetFailed},
		{"explicit password", map[string]interface{}{"student_id": "1234", "new_password": "fresh"}, true, MsgStudentPasswordReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := srv.do(t, http.MethodPost, "/api/admin/reset-student-password", tt.body, admin)
			assert.Equal(t, tt.success, out["success"])
			assert.Equal(t, tt.message, out["message"])
			assert.Nil(t, out["password"])
		})
	}
	srv.login(t, "/login", map[string]string{"user_id": "1234", "password": "fresh"})

	_, out := srv.do(t, http.MethodPost, "/api/admin/reset-student-password", map[string]interface{}{"student_id": "1234", "generate": true}, admin)
	require.Equal(t, true, out["success"])
	generated, ok := out["password"].(string)
	require.True(t, ok)
	srv.login(t, "/login", map[string]string{"user_id": "1234", "password": generated})
}

func TestAdminDeleteStudent(t *testing.T) {
	srv := newTestServer(t)
	srv.signupStudent(t, "1234")
	admin := srv.loginAdmin(t)

	_, out := srv.do(t, http.MethodPost, "/api/admin/delete-student", map[string]string{}, admin)
	assert.Equal(t, MsgNoStudentID, out["message"])

	_, out = srv.do(t, http.MethodPost, "/api/admin/delete-student", map[string]string{"student_id": "1234"}, admin)
	require.Equal(t, true, out["success"])
	assert.Equal(t, MsgStudentDeleted, out["message"])

	_, out = srv.do(t, http.MethodPost, "/api/admin/delete-student", map[string]string{"student_id": "1234"}, admin)
	assert.Equal(t, MsgStudentDeleteFailed, out["message"])

	_, out = srv.do(t, http.MethodPost, "/login", map[string]string{"user_id": "1234", "password": "pass1"}, nil)
	assert.Equal(t, MsgStudentNotFound, out["message"])
}

func TestAdminTeacherActionsRequireID(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.loginAdmin(t)

	for _, path := range []string{"/api/admin/approve-teacher", "/api/admin/reject-teacher", "/api/admin/delete-teacher"} {
		t.Run(path, func(t *testing.T) {
			_, out := srv.do(t, http.MethodPost, path, map[string]string{"teacher_id": " "}, admin)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, MsgNoTeacherID, out["message"])
		})
	}

	_, out := srv.do(t, http.MethodPost, "/api/admin/approve-teacher", map[string]string{"teacher_id": "teacher_ghost"}, admin)
	assert.Equal(t, MsgTeacherApproveFailed, out["message"])
}

func TestAdminExportImport(t *testing.T) {
	srv := newTestServer(t)
	srv.signupStudent(t, "1234")
	admin := srv.loginAdmin(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/export", nil)
	req.AddCookie(admin.cookie)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "smartspeak_backup_")

	var backup map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &backup))
	require.Len(t, backup["students"], 1)
	backupFile := rec.Body.Bytes()

	_, out := srv.do(t, http.MethodPost, "/api/admin/delete-student", map[string]string{"student_id": "1234"}, admin)
	require.Equal(t, true, out["success"])

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("backup_file", "backup.json")
	require.NoError(t, err)
	_, err = part.Write(backupFile)
	require.NoError(t, err)
	require.NoError(t, form.WriteField("clear_data", "true"))
	require.NoError(t, form.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/admin/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(security.CSRFHeader, admin.csrf)
	req.AddCookie(admin.cookie)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, true, out["success"], out["message"])

	srv.login(t, "/login", map[string]string{"user_id": "1234", "password": "pass1"})
}
