// Package knowledge provides the read-only content store backing agent
// responses: FAQ/policy text, product categories, and qualification
// question templates. A Store is immutable after construction and is passed
// explicitly to the classifier, scorer, and agents.
package knowledge

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category describes one product category with its matching keywords and
// popular brand names. Brand mentions count as interest in the category.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Brands   []string `yaml:"brands"`
}

// storeFile is the YAML shape of a knowledge content file.
type storeFile struct {
	Policies   map[string]string   `yaml:"policies"`
	Categories []Category          `yaml:"product_categories"`
	Questions  map[string][]string `yaml:"questions"`
	Responses  map[string]string   `yaml:"responses"`
	Fallback   string              `yaml:"fallback"`
}

// Store is an immutable knowledge base. All accessors return copies, so
// repeated lookups of the same topic always return identical content.
type Store struct {
	policies   map[string]string
	categories []Category
	questions  map[string][]string
	responses  map[string]string
	fallback   string

	// policyKeywords maps trigger words to policy topics for free-text
	// lookup, e.g. "refund" -> "returns".
	policyKeywords map[string]string
}

// Question template kinds.
const (
	QuestionBudget   = "budget"
	QuestionProduct  = "product"
	QuestionUseCase  = "use_case"
	QuestionTimeline = "timeline"
)

// Load reads a YAML knowledge file from path. Missing optional sections fall
// back to the built-in defaults so a partial file still yields a usable store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Store from YAML bytes, filling gaps from the defaults.
func Parse(data []byte) (*Store, error) {
	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("knowledge: parse: %w", err)
	}
	def := defaultFile()
	if len(f.Policies) == 0 {
		f.Policies = def.Policies
	}
	if len(f.Categories) == 0 {
		f.Categories = def.Categories
	}
	if len(f.Questions) == 0 {
		f.Questions = def.Questions
	}
	if len(f.Responses) == 0 {
		f.Responses = def.Responses
	}
	if f.Fallback == "" {
		f.Fallback = def.Fallback
	}
	return newStore(f), nil
}

// Default returns the built-in knowledge store.
func Default() *Store {
	return newStore(defaultFile())
}

func newStore(f storeFile) *Store {
	s := &Store{
		policies:       f.Policies,
		categories:     f.Categories,
		questions:      f.Questions,
		responses:      f.Responses,
		fallback:       f.Fallback,
		policyKeywords: make(map[string]string),
	}
	for topic, words := range policyTriggers {
		for _, w := range words {
			if _, ok := s.policies[topic]; ok {
				s.policyKeywords[w] = topic
			}
		}
	}
	return s
}

// Lookup returns the policy text for an exact topic key. Absence of an
// entry is not an error; the second return value reports presence.
func (s *Store) Lookup(topic string) (string, bool) {
	text, ok := s.policies[strings.ToLower(strings.TrimSpace(topic))]
	return text, ok
}

// PolicyFor scans a free-text message for policy trigger words and returns
// the matching policy text. The first trigger in the fixed scan order wins.
func (s *Store) PolicyFor(message string) (string, bool) {
	lower := strings.ToLower(message)
	// Scan in a fixed order so repeated calls are deterministic.
	for _, topic := range policyScanOrder {
		for _, w := range policyTriggers[topic] {
			if strings.Contains(lower, w) {
				if text, ok := s.policies[topic]; ok {
					return text, true
				}
			}
		}
	}
	return "", false
}

// Categories returns the product category list.
func (s *Store) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Questions returns the question templates for a kind (budget, product,
// use_case, timeline). An unknown kind returns nil.
func (s *Store) Questions(kind string) []string {
	qs, ok := s.questions[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(qs))
	copy(out, qs)
	return out
}

// Response returns the canned response template keyed by intent label.
func (s *Store) Response(key string) (string, bool) {
	text, ok := s.responses[key]
	return text, ok
}

// Fallback returns the graceful degradation response used when no richer
// content is available.
func (s *Store) Fallback() string {
	return s.fallback
}
