package git

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignorePattern is a single parsed .gitignore line.
type ignorePattern struct {
	glob     string
	negation bool // starts with !
	dirOnly  bool // ends with /
	anchored bool // contains a non-trailing /
}

// Ignore matches paths against the workspace's root .gitignore. The ranker
// and list tools use it to keep noise out of results; nested .gitignore
// files are not consulted.
type Ignore struct {
	root     string
	patterns []ignorePattern
}

// LoadIgnore parses the root .gitignore under root. A missing file yields an
// empty matcher, not an error; the .git directory is always ignored.
func LoadIgnore(root string) (*Ignore, error) {
	ig := &Ignore{root: root}

	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return ig, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p, ok := parseIgnoreLine(scanner.Text()); ok {
			ig.patterns = append(ig.patterns, p)
		}
	}
	return ig, scanner.Err()
}

func parseIgnoreLine(line string) (ignorePattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}

	var p ignorePattern
	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.Contains(line, "/") {
		p.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	p.glob = line
	return p, true
}

// Match reports whether the path (absolute or root-relative) is ignored.
// Patterns apply in file order; the last matching pattern wins.
func (ig *Ignore) Match(path string, isDir bool) bool {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(ig.root, path)
		if err != nil {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)

	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return true
	}

	ignored := false
	for _, p := range ig.patterns {
		if p.dirOnly && !isDir && !strings.Contains(rel, "/") {
			continue
		}
		if p.matches(rel) {
			ignored = !p.negation
		}
	}
	return ignored
}

func (p ignorePattern) matches(rel string) bool {
	if p.anchored {
		return globMatch(p.glob, rel) || globMatch(p.glob+"/**", rel)
	}
	if globMatch("**/"+p.glob, rel) || globMatch("**/"+p.glob+"/**", rel) {
		return true
	}
	return globMatch(p.glob, filepath.Base(rel))
}

func globMatch(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}
