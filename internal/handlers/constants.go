package handlers

const (
	ErrInvalidRequest      = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrNotLoggedIn         = "Not logged in"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many attempts. Please wait a minute and try again."
	ErrInvalidCSRFToken    = "Invalid CSRF token"

	// Login and signup
	MsgMissingLogin        = "Please enter both User ID and Password."
	MsgIncorrectPassword   = "Incorrect password."
	MsgStudentNotFound     = "User ID not found. Please sign up first."
	MsgTeacherNotFound     = "Teacher username not found."
	MsgTeacherPending      = "Your account is pending admin approval. Please wait."
	MsgTeacherRejected     = "Your account registration was rejected. Please contact the admin."
	MsgInvalidAdmin        = "Invalid admin credentials."
	MsgFillAllFields       = "Please fill in all fields."
	MsgStudentExists       = "User ID already exists. Please login or choose a different ID."
	MsgTeacherExists       = "Username already exists. Please choose another."
	MsgTeacherSignupQueued = "Registration submitted! Your account is pending admin approval. You will be able to login once approved."

	// Password recovery
	MsgEnterStudentID       = "Enter your 4-digit User ID."
	MsgUserIDNotFound       = "User ID not found."
	MsgNoSecurityQuestion   = "No security question set. Ask your teacher or admin to reset your password."
	MsgAllFieldsRequired    = "All fields are required."
	MsgNewPasswordTooShort  = "New password must be at least 4 characters."
	MsgLoginRequired        = "Not logged in."
	MsgPasswordReset        = "Password reset! You can now log in."
	MsgIncorrectAnswer      = "Incorrect answer. Please try again."
	MsgQuestionRequired     = "Question and answer are required."
	MsgSecurityQuestionSet  = "Security question saved!"
	MsgSecurityQuestionFail = "Failed to save. Please try again."
	MsgEnterUsername        = "Enter your username."
	MsgUsernameNotFound     = "Username not found."
	MsgTeacherNotActive     = "Your account is not yet active."
	MsgResetRequested       = "Request submitted! The admin has been notified. Please check back after your admin resets your password."
	MsgResetRequestFailed   = "Failed to submit request. Please try again."

	// Classes and leaderboard
	MsgNoClassSelected = "No class selected"

	// Admin console
	MsgNoTeacherID             = "No teacher ID provided."
	MsgNoStudentID             = "No student ID provided."
	MsgTeacherApproved         = "Teacher approved successfully."
	MsgTeacherApproveFailed    = "Failed to approve teacher."
	MsgTeacherRejectedByAdmin  = "Teacher rejected."
	MsgTeacherRejectFailed     = "Failed to reject teacher."
	MsgTeacherDeleted          = "Teacher deleted."
	MsgTeacherDeleteFailed     = "Failed to delete teacher."
	MsgStudentDeleted          = "Student deleted."
	MsgStudentDeleteFailed     = "Failed to delete student."
	MsgMissingStudentReset     = "Missing student ID or new password."
	MsgMissingTeacherReset     = "Missing teacher ID or new password."
	MsgStudentPasswordReset    = "Student password reset successfully."
	MsgTeacherPasswordReset    = "Teacher password reset successfully."
	MsgPasswordResetFailed     = "Failed to reset password."
	MsgNoWordProvided          = "No word provided"
	MsgEnterWordForMeaning     = "Please enter a word to get its meaning."
	MsgNoTextProvided          = "No text provided"
	MsgInvalidStageStars       = "Invalid accumulated stars"
	MsgUnknownPersona          = "Unknown roleplay persona"
	MsgConversationReset       = "Conversation cleared."
	MsgConversationResetFailed = "Failed to clear conversation"
	MsgUnknownChallengeType    = "Unknown challenge type"
	MsgChallengeUpdateFailed   = "Failed to update challenge"
	MsgLeaderboardUnavailable  = "Leaderboard is unavailable right now"
	MsgClassStudentsFailed     = "Failed to load students"
	MsgAdminListFailed         = "Failed to load records"
	MsgMigrationFailed         = "Migration failed"
)
