package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	studentIDRegex = regexp.MustCompile(`^[0-9]{4}$`)
)

const (
	TeacherCredentialLength  = 6
	MinStudentPasswordLength = 4
	MinSecurityAnswerLength  = 2
)

// SecurityQuestions are the questions a student may pick for self-service reset.
var SecurityQuestions = []string{
	"What is the name of your first pet?",
	"What is your favourite colour?",
	"What is the name of your best friend?",
	"What is your mother's first name?",
	"What city were you born in?",
	"What is your favourite food?",
	"What is the name of your school?",
	"What is your favourite animal?",
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateStudentID requires exactly four digits.
func ValidateStudentID(id string) error {
	if !studentIDRegex.MatchString(id) {
		return ValidationError{Field: "user_id", Message: "User ID must be exactly 4 digits."}
	}
	return nil
}

// ValidateStudentPassword checks the minimum length for student passwords
func ValidateStudentPassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinStudentPasswordLength {
		return ValidationError{Field: "password", Message: "Password must be at least 4 characters."}
	}
	return nil
}

// ValidateTeacherCredentials checks that username and password are exactly six characters.
func ValidateTeacherCredentials(username, password string) error {
	if len(username) != TeacherCredentialLength || len(password) != TeacherCredentialLength {
		return ValidationError{Field: "username", Message: "Username and Password must be exactly 6 characters each."}
	}
	return nil
}

// ValidateTeacherPassword is used when an admin sets a teacher password.
func ValidateTeacherPassword(password string) error {
	if len(password) != TeacherCredentialLength {
		return ValidationError{Field: "password", Message: "Teacher password must be exactly 6 characters."}
	}
	return nil
}

// ValidateSecurityQuestion accepts only the fixed question list.
func ValidateSecurityQuestion(question string) error {
	question = strings.TrimSpace(question)
	for _, q := range SecurityQuestions {
		if q == question {
			return nil
		}
	}
	return ValidationError{Field: "question", Message: "Invalid question selected."}
}

func ValidateSecurityAnswer(answer string) error {
	if len(strings.TrimSpace(answer)) < MinSecurityAnswerLength {
		return ValidationError{Field: "answer", Message: "Answer is too short."}
	}
	return nil
}
