package context

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"coda/internal/git"
	"coda/internal/workspace"
)

// CandidateFile is a ranked file produced by the Ranker. Transient: built
// per query, never persisted.
type CandidateFile struct {
	Path      string // absolute
	Score     int
	SizeBytes int64
}

// excludedDirs are directories never worth indexing.
var excludedDirs = map[string]bool{
	"node_modules": true, "__pycache__": true,
	".git": true, ".hg": true, ".svn": true,
	"venv": true, ".venv": true, "env": true,
	"build": true, "dist": true, "target": true,
	".next": true, ".nuxt": true, "vendor": true,
	".idea": true, ".vscode": true, ".pytest_cache": true,
	".mypy_cache": true, ".tox": true, "coverage": true,
}

// defaultPatterns maps a workspace language to its include patterns.
var defaultPatterns = map[workspace.Language][]string{
	workspace.LangGo:         {"*.go"},
	workspace.LangJavaScript: {"*.js", "*.jsx", "*.mjs"},
	workspace.LangTypeScript: {"*.ts", "*.tsx"},
	workspace.LangPython:     {"*.py"},
	workspace.LangRust:       {"*.rs"},
	workspace.LangJava:       {"*.java"},
	workspace.LangRuby:       {"*.rb"},
	workspace.LangPHP:        {"*.php"},
	workspace.LangC:          {"*.c", "*.h", "*.cpp", "*.hpp"},
}

// commonPatterns are appended regardless of language.
var commonPatterns = []string{"*.md", "*.json", "*.yaml", "*.yml"}

// Ranker finds files relevant to a free-text query inside a workspace.
type Ranker struct {
	ws     workspace.Workspace
	ignore *git.Ignore
}

// NewRanker creates a Ranker for the given workspace. The workspace's root
// .gitignore is honored when present.
func NewRanker(ws workspace.Workspace) *Ranker {
	ig, err := git.LoadIgnore(ws.Root)
	if err != nil {
		ig = nil
	}
	return &Ranker{ws: ws, ignore: ig}
}

// DefaultPatterns returns the include patterns for the workspace language.
func (r *Ranker) DefaultPatterns() []string {
	patterns := append([]string{}, defaultPatterns[r.ws.Language]...)
	return append(patterns, commonPatterns...)
}

// RelevantFiles enumerates files matching the include patterns, scores them
// against the query and returns at most maxFiles candidates, best first.
// Scoring is a pure function of (query, filename, depth); ties break on
// lexical path order so repeated runs on an unchanged tree are identical.
func (r *Ranker) RelevantFiles(query string, maxFiles int, includePatterns []string) []CandidateFile {
	if maxFiles <= 0 {
		return nil
	}
	if len(includePatterns) == 0 {
		includePatterns = r.DefaultPatterns()
	}

	var candidates []CandidateFile
	filepath.WalkDir(r.ws.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			if r.ignore != nil && path != r.ws.Root && r.ignore.Match(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchesAny(includePatterns, d.Name()) {
			return nil
		}
		if r.ignore != nil && r.ignore.Match(path, false) {
			return nil
		}

		score := scoreFile(query, d.Name(), r.depth(path))
		if score <= 0 {
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		candidates = append(candidates, CandidateFile{Path: path, Score: score, SizeBytes: size})
		return nil
	})

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Path < candidates[j].Path
	})

	if len(candidates) > maxFiles {
		candidates = candidates[:maxFiles]
	}
	return candidates
}

// scoreFile computes the relevance of a filename to the query:
// +10 when the filename contains the whole query, +5 per matching query
// word, minus directory depth as a shallow-first tie-breaker.
func scoreFile(query, name string, depth int) int {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	nameLower := strings.ToLower(name)

	score := 0
	if queryLower != "" && strings.Contains(nameLower, queryLower) {
		score += 10
	}
	for _, word := range strings.Fields(queryLower) {
		if strings.Contains(nameLower, word) {
			score += 5
		}
	}
	return score - depth
}

func (r *Ranker) depth(path string) int {
	rel, err := filepath.Rel(r.ws.Root, path)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator))
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
