package models

import "time"

// Roles carried in a session
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Student is a learner account keyed by a 4-digit id
type Student struct {
	UserID       string
	Username     string
	Name         string
	PasswordHash string
	Class        string
	Division     string
	UserType     string
	TotalXP      int
	Level        int
	TotalStars   int

	ModeStats    map[string]ModeStat
	Achievements Achievements
	Mistakes     Mistakes
	WeeklyXP     map[string]int
	Challenges   ChallengeSet

	// Read state of the JSON sub-documents; anything but FieldPresent
	// means the value above is the schema default.
	AchievementsState FieldState
	MistakesState     FieldState
	WeeklyXPState     FieldState
	ChallengesState   FieldState

	SecurityQuestion   string
	SecurityAnswerHash string
	CreatedAt          time.Time
	LastActive         *time.Time
}

// DisplayName returns the name shown on leaderboards
func (s *Student) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Username != "" {
		return s.Username
	}
	return "Unknown"
}

// IsTeacherRecord reports whether the row describes a teacher kept in the users table
func (s *Student) IsTeacherRecord() bool {
	return s.UserType == RoleTeacher
}

// ModeStat accumulates stars and sessions for one practice mode
type ModeStat struct {
	Stars    int `json:"stars"`
	Sessions int `json:"sessions"`
}

// StudentFilter selects students by class and optional division
type StudentFilter struct {
	Class    string
	Division string
}

// ClassSummary lists a class and the divisions present in it
type ClassSummary struct {
	Class     string   `json:"class"`
	Divisions []string `json:"divisions"`
}

// Teacher approval states
const (
	TeacherPending  = "pending"
	TeacherApproved = "approved"
	TeacherRejected = "rejected"
)

// Teacher is a staff account that must be approved by an admin
type Teacher struct {
	TeacherID              string
	Username               string
	Name                   string
	Email                  string
	PasswordHash           string
	Status                 string
	PasswordResetRequested bool
	PasswordResetAt        *time.Time
	CreatedAt              time.Time
	ApprovedAt             *time.Time
	LastActive             *time.Time
}

// EffectiveStatus treats a missing status as approved
func (t *Teacher) EffectiveStatus() string {
	if t.Status == "" {
		return TeacherApproved
	}
	return t.Status
}

// Admin is a console operator
type Admin struct {
	AdminID      string
	Username     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminStats summarizes account counts for the console
type AdminStats struct {
	TotalStudents    int `json:"total_students"`
	ApprovedTeachers int `json:"total_teachers"`
	PendingTeachers  int `json:"pending_teachers"`
	RejectedTeachers int `json:"rejected_teachers"`
}
