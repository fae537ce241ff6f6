package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompts seed the prompt directory and back every failed load.
var builtinPrompts = map[string]string{
	driven.PromptAsk: driven.DefaultAskPrompt,
}

const promptReadme = `# chainaudit prompts

Templates used when answering security questions.

- ask.txt: answers a question from retrieved audit findings.

ask.txt takes two %s placeholders: the retrieved findings first, then the
question. A template with any other placeholders is ignored and the
built-in one is used. Edits are picked up on the next question; no restart
is needed.
`

// PromptStore serves prompt templates from <dir>/<name>.txt.
//
// The directory is seeded with the built-in templates on first use. A
// template is re-read whenever its file's modification time changes, so a
// running server sees edits. Any read failure yields the built-in template.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu      sync.Mutex
	entries map[string]promptEntry
}

type promptEntry struct {
	text    string
	modTime time.Time
	size    int64
}

// NewPromptStore creates a store rooted at dir. Empty dir selects
// ~/.chainaudit/prompts. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".chainaudit", "prompts")
	}
	return &PromptStore{dir: dir, entries: map[string]promptEntry{}}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := builtinPrompts[name]

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt directory: %w", s.seedErr)
	}

	text, err := s.read(name)
	if err != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return text, nil
}

// read returns the file's content, reusing the cached copy while the file
// is unchanged.
func (s *PromptStore) read(name string) (string, error) {
	path := filepath.Join(s.dir, name+".txt")
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	s.entries[name] = promptEntry{text: text, modTime: info.ModTime(), size: info.Size()}
	return text, nil
}

// seed creates the directory, the built-in template files and a README.
// Existing files are left alone.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = err
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text
	}
	for file, content := range files {
		if err := writeIfMissing(filepath.Join(s.dir, file), content); err != nil {
			s.seedErr = err
			return
		}
	}
}

func writeIfMissing(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}
