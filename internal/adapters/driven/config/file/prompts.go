package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt overrides from user-editable files on disk.
// A prompt named "chat_system" lives at <dir>/chat_system.txt. Missing files
// are not errors: callers fall back to their built-in prompt.
//
// The store never writes; users create override files by hand.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.trials-mcp/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the override for name. The bool is false when no
// non-empty override file exists.
func (s *PromptStore) Load(name string) (string, bool, error) {
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, true, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load prompt %q: %w", name, err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", false, nil
	}

	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()

	return prompt, true, nil
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}
