// Package classifier screens free-text messages for scam indicators.
package classifier

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultPhrases are the trigger phrases used when no list is configured.
// Order matters: matched keywords are reported in this order.
var DefaultPhrases = []string{
	"urgent",
	"bank verification",
	"lawsuit",
	"wire money",
	"prize winner",
	"social security",
	"account suspended",
	"verify your account",
	"free gift",
	"limited time",
}

// Result is the output of classification
type Result struct {
	IsSuspicious bool     `json:"isSuspicious"`
	Keywords     []string `json:"keywords"`
}

// Classifier flags messages that contain any of a fixed list of phrases
type Classifier struct {
	phrases []string
}

// New creates a classifier for the given phrases. A nil or empty list
// selects DefaultPhrases.
func New(phrases []string) *Classifier {
	normalized := normalize(phrases)
	if len(normalized) == 0 {
		normalized = normalize(DefaultPhrases)
	}
	return &Classifier{phrases: normalized}
}

// Phrases returns a copy of the active trigger phrases
func (c *Classifier) Phrases() []string {
	out := make([]string, len(c.phrases))
	copy(out, c.phrases)
	return out
}

// Classify reports whether message contains any trigger phrase, ignoring
// case. Each phrase is reported at most once, in list order.
func (c *Classifier) Classify(message string) Result {
	keywords := []string{}
	if strings.TrimSpace(message) == "" {
		return Result{Keywords: keywords}
	}

	lowered := lower(message)
	for _, phrase := range c.phrases {
		if strings.Contains(lowered, phrase) {
			keywords = append(keywords, phrase)
		}
	}

	return Result{
		IsSuspicious: len(keywords) > 0,
		Keywords:     keywords,
	}
}

// phraseFile is the YAML layout of a custom phrase list
type phraseFile struct {
	Phrases []string `yaml:"phrases"`
}

// LoadPhrases reads a phrase list from a YAML file of the form
//
//	phrases:
//	  - urgent
//	  - wire money
func LoadPhrases(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrase file: %w", err)
	}

	var pf phraseFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse phrase file %s: %w", path, err)
	}

	phrases := normalize(pf.Phrases)
	if len(phrases) == 0 {
		return nil, fmt.Errorf("phrase file %s has no phrases", path)
	}
	return phrases, nil
}

// normalize trims and lowercases phrases, dropping blanks and duplicates
// while keeping the first occurrence's position.
func normalize(phrases []string) []string {
	seen := make(map[string]bool, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = lower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// A cases.Caser is stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
