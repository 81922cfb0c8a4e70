package models

import (
	"fmt"
	"slices"
	"strings"
)

// Conversation modes
const (
	ModeConversation = "conversation"
	ModeRoleplay     = "roleplay"
)

// Roleplay personas
var RoleplayPersonas = []string{"teacher", "friend", "interviewer", "viva"}

// Context line limits
const (
	ConversationContextLines = 100
	RoleplayContextLines     = 50
)

// IsRoleplayPersona reports whether persona is one of RoleplayPersonas
func IsRoleplayPersona(persona string) bool {
	return slices.Contains(RoleplayPersonas, persona)
}

// RoleplayMode returns the context key of a persona
func RoleplayMode(persona string) string {
	if persona == "" {
		return ModeRoleplay
	}
	return fmt.Sprintf("%s_%s", ModeRoleplay, persona)
}

// ContextLineLimit returns how many transcript lines a mode keeps
func ContextLineLimit(mode string) int {
	if mode == ModeConversation {
		return ConversationContextLines
	}
	return RoleplayContextLines
}

// TrimContext keeps the most recent lines of a transcript within the mode's limit
func TrimContext(mode, transcript string) string {
	if transcript == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(transcript), "\n")
	limit := ContextLineLimit(mode)
	if len(lines) <= limit {
		return transcript
	}
	return strings.Join(lines[len(lines)-limit:], "\n")
}
