package models

import "time"

// Mistake categories
const (
	MistakePronunciation = "pronunciation"
	MistakeSpelling      = "spelling"
	MistakeVocabulary    = "vocabulary"
)

// MaxMistakesPerCategory caps each mistake list
const MaxMistakesPerCategory = 50

// MistakeRecord is one logged mistake
type MistakeRecord struct {
	Data map[string]interface{} `json:"data"`
	Time string                 `json:"time"`
}

// Mistakes keeps the most recent mistakes per category and a running total
type Mistakes struct {
	Pronunciation []MistakeRecord `json:"pronunciation"`
	Spelling      []MistakeRecord `json:"spelling"`
	Vocabulary    []MistakeRecord `json:"vocabulary"`
	Total         int             `json:"total"`
}

// NewMistakes returns an empty mistake log
func NewMistakes() Mistakes {
	return Mistakes{
		Pronunciation: []MistakeRecord{},
		Spelling:      []MistakeRecord{},
		Vocabulary:    []MistakeRecord{},
	}
}

// Log appends a record to category and trims it to the last MaxMistakesPerCategory.
// The total is incremented for any category; unknown categories store nothing.
func (m *Mistakes) Log(category string, data map[string]interface{}, at time.Time) {
	record := MistakeRecord{Data: data, Time: at.Format("2006-01-02 15:04")}
	if list := m.list(category); list != nil {
		*list = append(*list, record)
		if len(*list) > MaxMistakesPerCategory {
			*list = (*list)[len(*list)-MaxMistakesPerCategory:]
		}
	}
	m.Total++
}

func (m *Mistakes) list(category string) *[]MistakeRecord {
	switch category {
	case MistakePronunciation:
		return &m.Pronunciation
	case MistakeSpelling:
		return &m.Spelling
	case MistakeVocabulary:
		return &m.Vocabulary
	}
	return nil
}
