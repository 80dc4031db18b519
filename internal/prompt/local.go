package prompt

import (
	"fmt"
	"os"

	"github.com/creditwise/chat-gateway/internal/classifier"
	"gopkg.in/yaml.v3"
)

// localPromptFile is the on-disk shape of the local template mapping
type localPromptFile struct {
	Prompts []localPrompt `yaml:"prompts"`
}

type localPrompt struct {
	ID          string   `yaml:"id"`
	Version     string   `yaml:"version,omitempty"`
	QueryType   string   `yaml:"query_type"`
	Template    string   `yaml:"template"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty"`
}

// LocalStore maps query types to templates loaded once at process
// start; immutable thereafter.
type LocalStore struct {
	byType map[classifier.QueryType]localPrompt
}

// LoadLocalStore reads the local prompt template file
func LoadLocalStore(path string) (*LocalStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local prompts: %w", err)
	}

	var file localPromptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse local prompts: %w", err)
	}

	store := &LocalStore{byType: make(map[classifier.QueryType]localPrompt)}
	for _, p := range file.Prompts {
		if p.Template == "" || p.QueryType == "" {
			return nil, fmt.Errorf("local prompt %s missing query_type or template", p.ID)
		}
		store.byType[classifier.QueryType(p.QueryType)] = p
	}
	return store, nil
}

// Lookup returns the local variant for a query type, if one was loaded
func (s *LocalStore) Lookup(queryType classifier.QueryType) (localPrompt, bool) {
	p, ok := s.byType[queryType]
	return p, ok
}
