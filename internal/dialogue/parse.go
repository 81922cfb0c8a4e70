package dialogue

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMeaning is returned when a meaning answer lacks the MEANING label
var ErrInvalidMeaning = errors.New("dialogue: invalid meaning response")

const minMeaningLength = 20

// CoachReply holds the labelled parts of a coaching answer
type CoachReply struct {
	Correct  string
	Praise   string
	Question string
}

// ParseCoachReply reads CORRECT, PRAISE and QUESTION lines. Other lines are
// ignored and missing labels stay empty.
func ParseCoachReply(text string) CoachReply {
	var r CoachReply
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "CORRECT:"):
			r.Correct = labelValue(line, "CORRECT:")
		case strings.HasPrefix(line, "PRAISE:"):
			r.Praise = labelValue(line, "PRAISE:")
		case strings.HasPrefix(line, "QUESTION:"):
			r.Question = labelValue(line, "QUESTION:")
		}
	}
	return r
}

// Compose joins the parts into the sentence that is spoken back
func (r CoachReply) Compose() string {
	return fmt.Sprintf("%s. %s %s", r.Correct, r.Praise, r.Question)
}

// Meaning is a parsed word explanation
type Meaning struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Usage   string `json:"usage"`
	Type    string `json:"type"`
	Tip     string `json:"tip"`
}

// CheckMeaning rejects answers that are too short or have no MEANING line
func CheckMeaning(text string) error {
	if len(text) < minMeaningLength || !strings.Contains(text, "MEANING:") {
		return ErrInvalidMeaning
	}
	return nil
}

// FallbackMeaning is the labelled text used when the model cannot answer
func FallbackMeaning(word string) string {
	return fmt.Sprintf("MEANING: %s is an English word. It has a specific meaning in the English language.\n"+
		"EXAMPLE: This is how you might use the word %s in a sentence.\n"+
		"TYPE: word\n"+
		"TIP: If you want to learn more about '%s', try looking it up in a dictionary or asking your teacher for help!",
		capitalize(word), word, word)
}

// ParseMeaning reads MEANING, EXAMPLE, TYPE and TIP lines and fills defaults for missing ones
func ParseMeaning(word, text string) Meaning {
	m := Meaning{Word: word}
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "MEANING:"):
			m.Meaning = labelValue(line, "MEANING:")
		case strings.HasPrefix(line, "EXAMPLE:"):
			m.Usage = labelValue(line, "EXAMPLE:")
		case strings.HasPrefix(line, "TYPE:"):
			m.Type = labelValue(line, "TYPE:")
		case strings.HasPrefix(line, "TIP:"):
			m.Tip = labelValue(line, "TIP:")
		}
	}
	if m.Meaning == "" {
		m.Meaning = fmt.Sprintf("The word '%s' has a specific meaning in English.", word)
	}
	if m.Usage == "" {
		m.Usage = fmt.Sprintf("Here's an example: The word %s can be used in sentences.", word)
	}
	if m.Type == "" {
		m.Type = "word"
	}
	if m.Tip == "" {
		m.Tip = "Keep learning new words every day to improve your vocabulary!"
	}
	return m
}

// SpokenText is what the speech synthesizer reads for a meaning
func (m Meaning) SpokenText() string {
	return fmt.Sprintf("%s. %s. For example: %s. %s", m.Word, m.Meaning, m.Usage, m.Tip)
}

// CleanSentence trims whitespace and surrounding quotes from a generated sentence
func CleanSentence(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func labelValue(line, label string) string {
	return strings.TrimSpace(strings.Replace(line, label, "", 1))
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
