package context

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"coda/internal/workspace"
)

const (
	// maxAnalyzeSize skips files too large to scan for imports.
	maxAnalyzeSize = 1 << 20 // 1MB

	// maxResolvedImports bounds the one-hop neighborhood of a file.
	maxResolvedImports = 5
)

var (
	pythonImportRe = regexp.MustCompile(`^(?:import\s+([a-zA-Z_][a-zA-Z0-9_.]*)|from\s+([a-zA-Z_.][a-zA-Z0-9_.]*)\s+import)`)
	jsImportRe     = regexp.MustCompile(`(?:import\s+.*?from\s+['"]([^'"]+)['"]|import\s+['"]([^'"]+)['"]|require\(['"]([^'"]+)['"]\))`)
)

// ImportAnalyzer extracts one-hop local file dependencies from a source file.
// It is best-effort: unreadable files, oversized files and unresolvable
// references all yield an empty or shortened result, never an error.
type ImportAnalyzer struct {
	ws workspace.Workspace
}

// NewImportAnalyzer creates an analyzer bound to a workspace.
func NewImportAnalyzer(ws workspace.Workspace) *ImportAnalyzer {
	return &ImportAnalyzer{ws: ws}
}

// Analyze returns up to maxResolvedImports files under the workspace that
// the given file references. References that do not resolve to an existing
// file are dropped.
func (a *ImportAnalyzer) Analyze(path string) []string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > maxAnalyzeSize {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	content := string(data)

	switch filepath.Ext(path) {
	case ".py":
		return a.pythonImports(path, content)
	case ".js", ".jsx", ".mjs", ".ts", ".tsx":
		return a.jsImports(path, content)
	default:
		return nil
	}
}

func (a *ImportAnalyzer) pythonImports(path, content string) []string {
	var resolved []string
	seen := map[string]bool{}

	for _, line := range strings.Split(content, "\n") {
		if len(resolved) >= maxResolvedImports {
			break
		}
		m := pythonImportRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		module := m[1]
		if module == "" {
			module = m[2]
		}

		var base string
		if strings.HasPrefix(module, ".") {
			// Relative import resolves against the file's directory.
			parts := strings.Split(strings.TrimLeft(module, "."), ".")
			base = filepath.Join(append([]string{filepath.Dir(path)}, parts...)...)
		} else {
			parts := strings.Split(module, ".")
			base = filepath.Join(append([]string{a.ws.Root}, parts...)...)
		}

		for _, suffix := range []string{".py", string(filepath.Separator) + "__init__.py"} {
			candidate := base + suffix
			if seen[candidate] {
				break
			}
			if fileExists(candidate) && a.ws.Contains(candidate) {
				seen[candidate] = true
				resolved = append(resolved, candidate)
				break
			}
		}
	}
	return resolved
}

func (a *ImportAnalyzer) jsImports(path, content string) []string {
	var resolved []string
	seen := map[string]bool{}

	for _, m := range jsImportRe.FindAllStringSubmatch(content, -1) {
		if len(resolved) >= maxResolvedImports {
			break
		}
		module := m[1]
		if module == "" {
			module = m[2]
		}
		if module == "" {
			module = m[3]
		}
		// Bare specifiers are package imports, not local files.
		if !strings.HasPrefix(module, ".") {
			continue
		}

		base := filepath.Join(filepath.Dir(path), module)
		for _, suffix := range []string{"", ".js", ".jsx", ".ts", ".tsx", "/index.js", "/index.ts"} {
			candidate := base + suffix
			if seen[candidate] {
				break
			}
			if fileExists(candidate) && a.ws.Contains(candidate) {
				seen[candidate] = true
				resolved = append(resolved, candidate)
				break
			}
		}
	}
	return resolved
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
