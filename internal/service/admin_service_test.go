package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspeak/internal/models"
	"smartspeak/internal/security"
)

func newAdminService(env *testEnv, sender *fakeSender) *AdminService {
	svc := NewAdminService(env.users, env.teachers, newTestEmail(sender, env.log), env.log)
	svc.now = func() time.Time { return testNow }
	return svc
}

func seedTeachers(t *testing.T, env *testEnv) {
	t.Helper()
	for _, tc := range []models.Teacher{
		{TeacherID: "teacher_aaaaaa", Username: "aaaaaa", Name: "A", Email: "a@school.test", Status: models.TeacherApproved},
		{TeacherID: "teacher_bbbbbb", Username: "bbbbbb", Name: "B", Status: models.TeacherPending},
		{TeacherID: "teacher_cccccc", Username: "cccccc", Name: "C", Status: models.TeacherRejected},
		{TeacherID: "teacher_dddddd", Username: "dddddd", Name: "D", Status: models.TeacherPending},
	} {
		tc := tc
		tc.PasswordHash = "x"
		tc.CreatedAt = testNow
		require.NoError(t, env.teachers.CreateTeacher(&tc))
	}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	seedTeachers(t, env)
	env.addStudent(t, "6001", "2", "A", 0)
	env.addStudent(t, "6002", "2", "B", 0)
	admin := newAdminService(env, &fakeSender{})

	stats, err := admin.Stats()
	require.NoError(t, err)
	assert.Equal(t, &models.AdminStats{TotalStudents: 2, ApprovedTeachers: 1, PendingTeachers: 2, RejectedTeachers: 1}, stats)
}

func TestAdminListsAndDeletes(t *testing.T) {
	env := newTestEnv(t)
	seedTeachers(t, env)
	env.addStudent(t, "6003", "2", "A", 40)
	admin := newAdminService(env, &fakeSender{})

	students, err := admin.ListStudents()
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, StudentSummary{ID: "6003", Name: "Student 6003", Class: "2", Division: "A", Level: 1, TotalXP: 40}, students[0])

	teachers, err := admin.ListTeachers()
	require.NoError(t, err)
	assert.Len(t, teachers, 4)

	require.NoError(t, admin.DeleteStudent("6003"))
	assert.ErrorIs(t, admin.DeleteStudent("6003"), ErrUserNotFound)
	require.NoError(t, admin.DeleteTeacher("teacher_cccccc"))
	assert.ErrorIs(t, admin.DeleteTeacher("teacher_cccccc"), ErrTeacherNotFound)
	assert.ErrorIs(t, admin.ApproveTeacher("teacher_zzzzzz"), ErrTeacherNotFound)
}

func TestResetStudentPassword(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "6004", "2", "A", 0)
	admin := newAdminService(env, &fakeSender{})

	generated, err := admin.ResetStudentPassword("6004", "")
	require.NoError(t, err)
	assert.NotEmpty(t, generated)
	assert.True(t, security.VerifyPassword(env.student(t, "6004").PasswordHash, generated).Match)

	set, err := admin.ResetStudentPassword("6004", "tiger")
	require.NoError(t, err)
	assert.Equal(t, "tiger", set)

	_, err = admin.ResetStudentPassword("6004", "abc")
	assert.Error(t, err)
	_, err = admin.ResetStudentPassword("0000", "tiger")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetTeacherPassword(t *testing.T) {
	env := newTestEnv(t)
	seedTeachers(t, env)
	sender := &fakeSender{}
	admin := newAdminService(env, sender)
	_, err := env.teachers.RequestPasswordReset("teacher_aaaaaa", testNow)
	require.NoError(t, err)

	requests, err := admin.PasswordResetRequests()
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "aaaaaa", requests[0].Username)

	password, err := admin.ResetTeacherPassword(bg, "teacher_aaaaaa", "")
	require.NoError(t, err)
	assert.Len(t, password, 6)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"a@school.test"}, sender.sent[0].Destination.ToAddresses)

	requests, err = admin.PasswordResetRequests()
	require.NoError(t, err)
	assert.Empty(t, requests)

	_, err = admin.ResetTeacherPassword(bg, "teacher_bbbbbb", "short")
	assert.Error(t, err)
	_, err = admin.ResetTeacherPassword(bg, "teacher_zzzzzz", "abc123")
	assert.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestTeacherClassViews(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "7001", "6", "A", 10)
	env.addStudent(t, "7002", "6", "B", 30)
	env.addStudent(t, "7003", "6", "A", 50)
	env.addStudent(t, "7004", "8", "", 0)
	teachers := NewTeacherService(env.users, env.log)

	classes, err := teachers.Classes()
	require.NoError(t, err)
	assert.Equal(t, []models.ClassSummary{
		{Class: "6", Divisions: []string{"A", "B"}},
		{Class: "8", Divisions: []string{}},
	}, classes)

	students, err := teachers.ClassStudents("6", "a")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "7003", students[0].UserID)
	assert.Equal(t, "7001", students[1].UserID)

	all, err := teachers.ClassStudents("6", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = teachers.ClassStudents(" ", "A")
	assert.ErrorIs(t, err, ErrMissingFields)
}
