package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"smartspeak/internal/audio"
	"smartspeak/internal/database"
	"smartspeak/internal/dialogue"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/repository"
)

var testNow = time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC)

const testWeek = "2024-W10"

type testEnv struct {
	db           *database.DB
	users        *repository.UserRepository
	teachers     *repository.TeacherRepository
	admins       *repository.AdminRepository
	conversation *repository.ConversationRepository
	gamification *GamificationService
	log          *logger.Logger
	logs         *observer.ObservedLogs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations("../../migrations")
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	users := repository.NewUserRepository(db)
	g := NewGamificationService(users, log)
	g.now = func() time.Time { return testNow }

	return &testEnv{
		db:           db,
		users:        users,
		teachers:     repository.NewTeacherRepository(db),
		admins:       repository.NewAdminRepository(db),
		conversation: repository.NewConversationRepository(db),
		gamification: g,
		log:          log,
		logs:         logs,
	}
}

func (e *testEnv) addStudent(t *testing.T, id, class, division string, xp int) *models.Student {
	t.Helper()
	s := &models.Student{
		UserID:       id,
		Username:     "student" + id,
		Name:         "Student " + id,
		PasswordHash: "secret",
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
	require.NoError(t, e.users.CreateStudent(s))
	return s
}

func (e *testEnv) student(t *testing.T, id string) *models.Student {
	t.Helper()
	s, err := e.users.GetStudent(id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (e *testEnv) mutate(t *testing.T, id string, fn func(s *models.Student)) {
	t.Helper()
	_, err := e.users.MutateStudent(id, func(s *models.Student) error {
		fn(s)
		return nil
	})
	require.NoError(t, err)
}

var bg = context.Background()

// fakeSynth records what it was asked to say and hands out sequential paths
type fakeSynth struct {
	mu    sync.Mutex
	calls []audio.Clip
	fail  bool
}

func (f *fakeSynth) Synthesize(_ context.Context, text string, slow bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("tts offline")
	}
	f.calls = append(f.calls, audio.Clip{Text: text, Slow: slow})
	return fmt.Sprintf("/static/audio/%d.mp3", len(f.calls)), nil
}

func (f *fakeSynth) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Text)
	}
	return out
}

// replies returns a generator that answers with text and records prompts
func replies(text string, prompts *[]string) dialogue.Generator {
	return dialogue.GeneratorFunc(func(_ context.Context, req dialogue.Request) (string, error) {
		if prompts != nil {
			*prompts = append(*prompts, req.Prompt)
		}
		return text, nil
	})
}

func failing() dialogue.Generator {
	return dialogue.GeneratorFunc(func(context.Context, dialogue.Request) (string, error) {
		return "", errors.New("quota exceeded")
	})
}
