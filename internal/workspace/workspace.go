// Package workspace confines all generated-project file access to a single root.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/openclaw/forge/internal/logging"
)

// Subdirs are the fixed project subdirectories created before any phase runs.
var Subdirs = []string{"src", "tests", "frontend", "logs"}

// Workspace scopes file operations to a project root. The root is passed
// explicitly so concurrent runs cannot interfere through a process-global
// working directory.
type Workspace struct {
	root   string
	logger *logging.Logger
}

// New creates a Workspace for the given root. The root is made absolute.
func New(root string, logger *logging.Logger) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	if logger == nil {
		logger = logging.New().WithComponent("workspace")
	}
	return &Workspace{root: abs, logger: logger}, nil
}

// Root returns the absolute project root.
func (w *Workspace) Root() string {
	return w.root
}

// Prepare creates the root and the fixed project subdirectories.
func (w *Workspace) Prepare() error {
	for _, sub := range Subdirs {
		if err := os.MkdirAll(filepath.Join(w.root, sub), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", sub, err)
		}
	}
	return nil
}

// resolve joins path with the root and verifies containment. A path that
// escapes the root is a policy violation, never silently corrected.
func (w *Workspace) resolve(path, action string) (string, error) {
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(w.root, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path")
	}
	rel, err := filepath.Rel(w.root, abs)
	// Rel errors on cross-volume paths; that is a violation too.
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		w.logger.SecurityWarning("path traversal blocked", map[string]interface{}{
			"action": action,
			"path":   path,
		})
		return "", fmt.Errorf("security violation: cannot %s outside project root", action)
	}
	return abs, nil
}

// Write writes content to a relative path, creating parent directories.
// The return value is plain text either way: errors are reported back
// into the model conversation, not raised.
func (w *Workspace) Write(path, content string) string {
	abs, err := w.resolve(path, "write")
	if err != nil {
		return "Error: " + err.Error()
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Sprintf("Error writing file: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return fmt.Sprintf("Error writing file: %v", err)
	}
	w.logger.Debug("wrote file", map[string]interface{}{"path": path})
	return fmt.Sprintf("Successfully wrote to %s", path)
}

// Read returns the content of a relative path, or a textual error.
func (w *Workspace) Read(path string) string {
	abs, err := w.resolve(path, "read")
	if err != nil {
		return "Error: " + err.Error()
	}
	content, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return fmt.Sprintf("Error: File %s does not exist.", path)
	}
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err)
	}
	return string(content)
}

// List returns the entries of a relative directory path, one per line.
func (w *Workspace) List(path string) string {
	abs, err := w.resolve(path, "list")
	if err != nil {
		return "Error: " + err.Error()
	}
	entries, err := os.ReadDir(abs)
	if os.IsNotExist(err) {
		return fmt.Sprintf("Error: Directory %s does not exist.", path)
	}
	if err != nil {
		return fmt.Sprintf("Error listing directory: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return strings.Join(names, "\n")
}

// ArtifactExists reports whether a phase deliverable exists under the root.
// A directory artifact counts only if it contains at least one entry.
func (w *Workspace) ArtifactExists(path string) bool {
	abs, err := w.resolve(path, "check")
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return false
	}
	if info.IsDir() {
		entries, err := os.ReadDir(abs)
		return err == nil && len(entries) > 0
	}
	return true
}

var (
	slugSpecials   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s\-]+`)
	slugRepeats    = regexp.MustCompile(`_+`)
)

// Slugify converts a requirement into a safe directory name:
// "Build a snake game" -> "build_a_snake_game".
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = slugSpecials.ReplaceAllString(text, "")
	text = slugSeparators.ReplaceAllString(text, "_")
	text = strings.Trim(slugRepeats.ReplaceAllString(text, "_"), "_")
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}

// ResolveCollision appends a timestamp suffix if dir already exists, so a
// previous build of the same project is never overwritten.
func ResolveCollision(dir string, now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Sprintf("%s_%s", dir, now().Format("20060102_150405"))
	}
	return dir
}
