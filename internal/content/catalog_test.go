package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func first(int) int { return 0 }

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"animals", "colors", "family", "feelings", "food", "general", "school", "sports"}, c.Categories())
	for _, category := range c.Categories() {
		for _, difficulty := range []string{"easy", "medium", "hard"} {
			assert.NotEmpty(t, c.sentences[category][difficulty], "%s/%s", category, difficulty)
		}
	}
	for _, difficulty := range []string{"easy", "medium", "hard"} {
		assert.NotEmpty(t, c.words[difficulty], difficulty)
	}
}

func TestRandomSentence(t *testing.T) {
	c := MustLoad().WithPicker(first)

	tests := []struct {
		name       string
		category   string
		difficulty string
		want       string
	}{
		{"known category", "animals", "easy", c.sentences["animals"]["easy"][0]},
		{"case and spaces", " Animals ", "EASY", c.sentences["animals"]["easy"][0]},
		{"unknown category falls back to general", "space", "medium", c.sentences["general"]["medium"][0]},
		{"unknown difficulty uses hard", "food", "expert", c.sentences["food"]["hard"][0]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.RandomSentence(tt.category, tt.difficulty))
		})
	}
}

func TestRandomWord(t *testing.T) {
	c := MustLoad().WithPicker(first)

	assert.Equal(t, c.words["hard"][0], c.RandomWord("hard"))
	assert.Equal(t, c.words["easy"][0], c.RandomWord("unknown"))

	random := MustLoad()
	for i := 0; i < 50; i++ {
		assert.Contains(t, random.words["medium"], random.RandomWord("medium"))
	}
}

func TestParseRejectsIncompleteCatalog(t *testing.T) {
	_, err := Parse([]byte("sentences:\n  general:\n    easy: [a]\nwords:\n  easy: [cat]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("not: [valid"))
	assert.Error(t, err)
}
