package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "John Doe",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "John",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "J",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStudentPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "sunnyfox42",
			wantErr:  false,
		},
		{
			name:     "password exactly 4 characters",
			password: "abcd",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "abc",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStudentPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStudentPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStudentID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "four digits", id: "1234", wantErr: false},
		{name: "leading zero", id: "0042", wantErr: false},
		{name: "three digits", id: "123", wantErr: true},
		{name: "five digits", id: "12345", wantErr: true},
		{name: "letters", id: "12a4", wantErr: true},
		{name: "empty", id: "", wantErr: true},
		{name: "padded", id: " 1234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStudentID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStudentID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTeacherCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "both six", username: "mrsmit", password: "abc123", wantErr: false},
		{name: "short username", username: "smith", password: "abc123", wantErr: true},
		{name: "long password", username: "mrsmit", password: "abc1234", wantErr: true},
		{name: "empty", username: "", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTeacherCredentials(tt.username, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTeacherCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateTeacherPassword("abcdef"); err != nil {
		t.Errorf("ValidateTeacherPassword(six chars) = %v", err)
	}
	if err := ValidateTeacherPassword("abcde"); err == nil {
		t.Error("ValidateTeacherPassword(five chars) should fail")
	}
}

func TestValidateSecurityQuestionAndAnswer(t *testing.T) {
	for _, q := range SecurityQuestions {
		if err := ValidateSecurityQuestion(q); err != nil {
			t.Errorf("ValidateSecurityQuestion(%q) = %v", q, err)
		}
	}
	if len(SecurityQuestions) != 8 {
		t.Errorf("expected 8 security questions, got %d", len(SecurityQuestions))
	}
	if err := ValidateSecurityQuestion("What is your password?"); err == nil {
		t.Error("unknown question should be rejected")
	}

	tests := []struct {
		answer  string
		wantErr bool
	}{
		{answer: "Rex", wantErr: false},
		{answer: "ok", wantErr: false},
		{answer: " a ", wantErr: true},
		{answer: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			err := ValidateSecurityAnswer(tt.answer)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSecurityAnswer(%q) error = %v, wantErr %v", tt.answer, err, tt.wantErr)
			}
		})
	}

	err := ValidateStudentID("12")
	if e, ok := err.(ValidationError); !ok || e.Field != "user_id" {
		t.Errorf("expected ValidationError on user_id, got %#v", err)
	}
}
