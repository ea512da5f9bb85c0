package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptsDirName is the directory under the config directory holding prompt files.
const PromptsDirName = "prompts"

// ErrUnknownPrompt is returned for a prompt name with no embedded default.
var ErrUnknownPrompt = errors.New("unknown prompt")

// promptTemplate describes one editable prompt.
type promptTemplate struct {
	// text is the embedded default and the initial file content.
	text string

	// verbs is the number of %s verbs the template must carry.
	verbs int

	// help is the README line for the file.
	help string
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var promptTemplates = map[string]promptTemplate{
	driven.PromptAnswerSystem: {
		text: `You are a precise legal-document assistant for law students.
You will receive a user question and retrieved passages with LEGAL/REPORTER page numbers (not raw PDF sheet numbers).
Rules:
- If the answer exists, respond with STRICT JSON ONLY:
  {"answer":"...","page_hits":[numbers],"citations":[{"page":n,"snippet":"..."}],"reasoning":"one or two short sentences about how you located the answer. Do not reveal detailed chain-of-thought."}
- In "answer", include the page numbers inline, formatted with a leading asterisk (e.g., "*736–37") when you cite one or a range.
- "citations" should contain short quotes (max 25 words) that support the answer; set "page" to the legal/reporter page number.
- If not present, return {"answer":"Not found in document.","page_hits":[],"citations":[],"reasoning":"Searched top-ranked passages; nothing matched exactly."}
- Never include additional keys. Always valid JSON.`,
		help: "Instructions and the strict JSON answer shape",
	},
	driven.PromptAnswerQuestion: {
		text: `Question: %s
Use ONLY the passages below. Return strict JSON.`,
		verbs: 1,
		help:  "Introduces the question ahead of the passages",
	},
}

// PromptStore serves answer prompts from text files the user may edit.
//
// Files are seeded from the embedded defaults on first use. A file that is
// missing, empty or carries the wrong number of %s verbs is ignored in
// favour of the default, so a bad edit never breaks answering.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.lexbrief/prompts.
// No I/O happens until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, PromptsDirName)
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the prompt called name.
func (s *PromptStore) Load(name string) (string, error) {
	tmpl, ok := promptTemplates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPrompt, name)
	}

	s.seed.Do(s.seedDir)
	if s.seedErr != nil {
		return tmpl.text, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if text, ok := s.cache[name]; ok {
		return text, nil
	}

	text := s.read(name, tmpl)
	s.cache[name] = text
	return text, nil
}

// Reload drops cached prompts so edited files are read again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// read returns the customised prompt, or the default when the file is unusable.
func (s *PromptStore) read(name string, tmpl promptTemplate) string {
	path := promptPath(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("prompt %s: %v, using default", name, err)
		return tmpl.text
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		logger.Warn("Prompt %s is empty, using default", path)
		return tmpl.text
	}
	if got := strings.Count(text, "%s"); got != tmpl.verbs {
		logger.Warn("Prompt %s has %d %%s placeholders, want %d; using default", path, got, tmpl.verbs)
		return tmpl.text
	}
	return text
}

// seedDir creates the directory, any missing prompt files and the README.
// Existing files are left untouched.
func (s *PromptStore) seedDir() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Warn("Prompts unavailable, using defaults: %v", s.seedErr)
		return
	}

	files := map[string]string{"README.md": promptReadme()}
	for name, tmpl := range promptTemplates {
		files[name+".txt"] = tmpl.text
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.seedErr = fmt.Errorf("write %s: %w", file, err)
			logger.Warn("Prompts unavailable, using defaults: %v", s.seedErr)
			return
		}
	}
}

func promptPath(dir, name string) string {
	return filepath.Join(dir, name+".txt")
}

func promptReadme() string {
	names := make([]string, 0, len(promptTemplates))
	for name := range promptTemplates {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# lexbrief prompts\n\n")
	b.WriteString("These files are sent to the language model when it composes a cited answer.\n")
	b.WriteString("Edits take effect on the next command or after restarting the server.\n\n")
	for _, name := range names {
		tmpl := promptTemplates[name]
		fmt.Fprintf(&b, "- `%s.txt`: %s", name, tmpl.help)
		if tmpl.verbs > 0 {
			fmt.Fprintf(&b, " (must keep exactly %d `%%s`)", tmpl.verbs)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nThe answer parser expects a JSON object with a string \"answer\" and a\n")
	b.WriteString("\"page_hits\" array. Keep those keys in a customised system prompt.\n")
	b.WriteString("A file that is empty or has the wrong placeholders is ignored.\n")
	return b.String()
}
