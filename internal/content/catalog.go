// Package content serves the practice sentences and spelling words that are
// compiled into the binary.
package content

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCategory   = "general"
	DefaultDifficulty = "easy"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Sentences map[string]map[string][]string `yaml:"sentences"`
	Words     map[string][]string            `yaml:"words"`
}

// Catalog is a read-only pool of sentences keyed by category and difficulty
// and words keyed by difficulty.
type Catalog struct {
	sentences map[string]map[string][]string
	words     map[string][]string
	pick      func(n int) int
}

// Load parses the embedded catalog
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// MustLoad is Load for package-level initialisation in binaries and tests
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML. The general category and the easy word
// pool are required because they are the fallbacks.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	general := f.Sentences[DefaultCategory]
	for _, d := range []string{"easy", "medium", "hard"} {
		if len(general[d]) == 0 {
			return nil, fmt.Errorf("catalog has no %s/%s sentences", DefaultCategory, d)
		}
	}
	if len(f.Words[DefaultDifficulty]) == 0 {
		return nil, fmt.Errorf("catalog has no %s words", DefaultDifficulty)
	}
	return &Catalog{sentences: f.Sentences, words: f.Words, pick: rand.IntN}, nil
}

// WithPicker returns a copy of the catalog that uses pick instead of a random index
func (c *Catalog) WithPicker(pick func(n int) int) *Catalog {
	clone := *c
	clone.pick = pick
	return &clone
}

// RandomSentence picks a sentence. Unknown categories use general; a difficulty
// other than easy or medium uses the hard pool.
func (c *Catalog) RandomSentence(category, difficulty string) string {
	pools, ok := c.sentences[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		pools = c.sentences[DefaultCategory]
	}
	pool := pools[sentenceTier(difficulty)]
	if len(pool) == 0 {
		pool = c.sentences[DefaultCategory][sentenceTier(difficulty)]
	}
	return pool[c.pick(len(pool))]
}

// RandomWord picks a lower-case spelling word. Unknown difficulties use easy.
func (c *Catalog) RandomWord(difficulty string) string {
	pool, ok := c.words[strings.ToLower(strings.TrimSpace(difficulty))]
	if !ok || len(pool) == 0 {
		pool = c.words[DefaultDifficulty]
	}
	return strings.ToLower(pool[c.pick(len(pool))])
}

// Categories lists the sentence categories in alphabetical order
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.sentences))
	for name := range c.sentences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sentenceTier(difficulty string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return "easy"
	case "medium":
		return "medium"
	default:
		return "hard"
	}
}
