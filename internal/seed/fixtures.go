package seed

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixtures is the demo data loaded by the seed command
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
}

// UserFixture is an account with the data it owns
type UserFixture struct {
	Username  string            `yaml:"username"`
	Email     string            `yaml:"email"`
	Password  string            `yaml:"password"`
	Documents []DocumentFixture `yaml:"documents"`
	Tasks     []TaskFixture     `yaml:"tasks"`
}

// DocumentFixture is a document and the suggestions to attach to its sentences
type DocumentFixture struct {
	Title    string            `yaml:"title"`
	Text     string            `yaml:"text"`
	Rewrites map[string]string `yaml:"rewrites"`
}

// TaskFixture is a task and its subtasks
type TaskFixture struct {
	Content   string        `yaml:"content"`
	Completed bool          `yaml:"completed"`
	SubItems  []TaskFixture `yaml:"sub_items"`
}

// LoadFixtures parses the embedded fixture file
func LoadFixtures() (*Fixtures, error) {
	data, err := fixtureFiles.ReadFile("fixtures/seed.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes fixture YAML
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixtures: %w", err)
	}
	for i, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("fixture user %d: username and password are required", i)
		}
	}
	return &f, nil
}

// Rewrites collects every document's rewrites into one lookup table
func (f *Fixtures) Rewrites() map[string]string {
	out := make(map[string]string)
	for _, u := range f.Users {
		for _, d := range u.Documents {
			for original, rewritten := range d.Rewrites {
				out[strings.TrimSpace(original)] = rewritten
			}
		}
	}
	return out
}

// FixtureRewriter answers rewrite requests from a fixed table.
// Unknown sentences come back unchanged, so they carry no suggestion.
type FixtureRewriter struct {
	rewrites map[string]string
}

// NewFixtureRewriter creates a rewriter over the given table
func NewFixtureRewriter(rewrites map[string]string) *FixtureRewriter {
	return &FixtureRewriter{rewrites: rewrites}
}

// Rewrite implements services.Rewriter
func (r *FixtureRewriter) Rewrite(_ context.Context, text string) (string, error) {
	if rewritten, ok := r.rewrites[strings.TrimSpace(text)]; ok {
		return rewritten, nil
	}
	return text, nil
}
