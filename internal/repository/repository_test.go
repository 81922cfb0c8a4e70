package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspeak/internal/database"
	"smartspeak/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations("../../migrations")
	require.NoError(t, err)
	return db
}

var testNow = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newStudent(id, class, division string, xp int) *models.Student {
	return &models.Student{
		UserID:       id,
		Username:     "student" + id,
		Name:         "Student " + id,
		PasswordHash: "hash",
		Class:        class,
		Division:     division,
		TotalXP:      xp,
		Level:        1,
		ModeStats:    map[string]models.ModeStat{},
		Achievements: models.NewAchievements(),
		Mistakes:     models.NewMistakes(),
		WeeklyXP:     map[string]int{},
		CreatedAt:    testNow,
	}
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	s := newStudent("1234", "5", "A", 0)
	s.WeeklyXP["2024-W10"] = 7
	require.NoError(t, repo.CreateStudent(s))

	got, err := repo.GetStudent("1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Student 1234", got.Name)
	assert.Equal(t, models.RoleStudent, got.UserType)
	assert.Equal(t, 7, got.WeeklyXP["2024-W10"])
	assert.Equal(t, models.FieldPresent, got.AchievementsState)
	assert.Nil(t, got.LastActive)

	missing, err := repo.GetStudent("9999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := repo.StudentExists("1234")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Error(t, repo.CreateStudent(newStudent("1234", "5", "A", 0)), "duplicate id")
}

func TestUserRepositoryCorruptFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	require.NoError(t, repo.CreateStudent(newStudent("1234", "5", "A", 0)))

	_, err := db.Exec("UPDATE users SET achievements = ?, weekly_xp = NULL WHERE user_id = ?", `"oops"`, "1234")
	require.NoError(t, err)

	got, err := repo.GetStudent("1234")
	require.NoError(t, err)
	assert.Equal(t, models.FieldCorrupt, got.AchievementsState)
	assert.Equal(t, models.FieldMissing, got.WeeklyXPState)
	assert.NotNil(t, got.WeeklyXP)
	assert.Empty(t, got.Achievements.BadgesEarned)
}

func TestUserRepositoryMutate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.CreateStudent(newStudent("1234", "5", "A", 0)))

	updated, err := repo.MutateStudent("1234", func(s *models.Student) error {
		s.TotalXP += 30
		s.Level = 2
		s.ModeStats["repeat"] = models.ModeStat{Stars: 30, Sessions: 1}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.TotalXP)

	got, _ := repo.GetStudent("1234")
	assert.Equal(t, 30, got.TotalXP)
	assert.Equal(t, 1, got.ModeStats["repeat"].Sessions)

	t.Run("error leaves row unchanged", func(t *testing.T) {
		_, err := repo.MutateStudent("1234", func(s *models.Student) error {
			s.TotalXP = 999
			return errors.New("stop")
		})
		assert.Error(t, err)
		got, _ := repo.GetStudent("1234")
		assert.Equal(t, 30, got.TotalXP)
	})

	t.Run("missing student", func(t *testing.T) {
		called := false
		s, err := repo.MutateStudent("0000", func(*models.Student) error { called = true; return nil })
		assert.NoError(t, err)
		assert.Nil(t, s)
		assert.False(t, called)
	})
}

func TestUserRepositoryIncrementCounter(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.CreateStudent(newStudent("1234", "5", "A", 0)))

	var seen int
	s, err := repo.IncrementCounter("1234", models.ActivityRepeat, 2, func(s *models.Student) {
		seen = s.Achievements.RepeatCount
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Achievements.RepeatCount)
	assert.Equal(t, 2, seen, "callback runs after the increment")

	_, err = repo.IncrementCounter("1234", "juggling", 1, func(*models.Student) {
		t.Fatal("callback must not run for an unknown activity")
	})
	assert.Error(t, err)

	stored, err := repo.GetStudent("1234")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Achievements.RepeatCount)

	missing, err := repo.IncrementCounter("9999", models.ActivityRepeat, 1, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepositoryFindStudents(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.CreateStudent(newStudent("1001", "Grade 5", "a", 10)))
	require.NoError(t, repo.CreateStudent(newStudent("1002", " grade 5", "B", 30)))
	require.NoError(t, repo.CreateStudent(newStudent("1003", "Grade 6", "A", 20)))
	teacher := newStudent("1004", "Grade 5", "A", 100)
	teacher.UserType = models.RoleTeacher
	require.NoError(t, repo.CreateStudent(teacher))

	all, err := repo.FindStudents(models.StudentFilter{Class: "GRADE 5"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "1002", all[0].UserID, "sorted by total xp")

	divA, err := repo.FindStudents(models.StudentFilter{Class: "grade 5", Division: " A "})
	require.NoError(t, err)
	require.Len(t, divA, 1)
	assert.Equal(t, "1001", divA[0].UserID)

	classes, err := repo.ListClasses()
	require.NoError(t, err)
	assert.NotEmpty(t, classes)

	count, err := repo.CountStudents()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUserRepositoryDeleteStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	conversations := NewConversationRepository(db)
	require.NoError(t, repo.CreateStudent(newStudent("1234", "5", "A", 0)))
	require.NoError(t, conversations.SaveContext("1234", "conversation", "hi", testNow))

	deleted, err := repo.DeleteStudent("1234")
	require.NoError(t, err)
	assert.True(t, deleted)

	contexts, err := conversations.GetContexts("1234")
	require.NoError(t, err)
	assert.Empty(t, contexts)

	deleted, err = repo.DeleteStudent("1234")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTeacherRepository(t *testing.T) {
	repo := NewTeacherRepository(setupTestDB(t))

	require.NoError(t, repo.CreateTeacher(&models.Teacher{
		TeacherID:    "teacher_mrsmit",
		Username:     "mrsmit",
		Name:         "Mr Smith",
		PasswordHash: "hash",
		Status:       models.TeacherPending,
		CreatedAt:    testNow,
	}))
	require.NoError(t, repo.CreateTeacher(&models.Teacher{
		TeacherID:    "teacher_msjone",
		Username:     "msjone",
		PasswordHash: "hash",
		Status:       models.TeacherApproved,
		CreatedAt:    testNow.Add(time.Hour),
	}))

	got, err := repo.GetTeacherByUsername("mrsmit")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.TeacherPending, got.Status)

	ok, err := repo.SetStatus("teacher_mrsmit", models.TeacherApproved, testNow)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = repo.GetTeacher("teacher_mrsmit")
	require.NotNil(t, got.ApprovedAt)

	ok, err = repo.RequestPasswordReset("teacher_mrsmit", testNow)
	require.NoError(t, err)
	assert.True(t, ok)
	requests, err := repo.ListPasswordResetRequests()
	require.NoError(t, err)
	require.Len(t, requests, 1)

	_, err = repo.UpdatePassword("teacher_mrsmit", "newhash")
	require.NoError(t, err)
	requests, _ = repo.ListPasswordResetRequests()
	assert.Empty(t, requests)

	counts, err := repo.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.TeacherApproved])

	teachers, err := repo.ListTeachers()
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "msjone", teachers[0].Username, "newest first")

	ok, err = repo.DeleteTeacher("teacher_msjone")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdminRepository(t *testing.T) {
	repo := NewAdminRepository(setupTestDB(t))

	count, err := repo.CountAdmins()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, repo.CreateAdmin(&models.Admin{AdminID: "admin_001", Username: "admin", PasswordHash: "admin123", CreatedAt: testNow}))
	require.NoError(t, repo.UpdatePassword("admin_001", "hashed"))

	a, err := repo.GetAdminByUsername("admin")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "hashed", a.PasswordHash)

	admins, err := repo.ListAdmins()
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestConversationRepositoryIsolation(t *testing.T) {
	repo := NewConversationRepository(setupTestDB(t))

	require.NoError(t, repo.SaveContext("1234", "roleplay_teacher", "Student: hi", testNow))
	require.NoError(t, repo.SaveContext("1234", "roleplay_friend", "Student: yo", testNow))
	require.NoError(t, repo.SaveContext("1234", "roleplay_teacher", "Student: hello", testNow))

	teacher, err := repo.GetContext("1234", "roleplay_teacher")
	require.NoError(t, err)
	assert.Equal(t, "Student: hello", teacher)

	friend, _ := repo.GetContext("1234", "roleplay_friend")
	assert.Equal(t, "Student: yo", friend)

	conversation, _ := repo.GetContext("1234", "conversation")
	assert.Empty(t, conversation)

	require.NoError(t, repo.DeleteContext("1234", "roleplay_friend", testNow))
	contexts, _ := repo.GetContexts("1234")
	assert.Equal(t, map[string]string{"roleplay_teacher": "Student: hello"}, contexts)

	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
