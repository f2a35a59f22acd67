// Package workspace locates the project root and infers project metadata.
package workspace

import (
	"os"
	"path/filepath"
)

// ProjectType identifies the kind of project at the workspace root.
type ProjectType string

const (
	ProjectTypeGo      ProjectType = "go"
	ProjectTypeNode    ProjectType = "node"
	ProjectTypeRust    ProjectType = "rust"
	ProjectTypePython  ProjectType = "python"
	ProjectTypeJava    ProjectType = "java"
	ProjectTypeRuby    ProjectType = "ruby"
	ProjectTypePHP     ProjectType = "php"
	ProjectTypeC       ProjectType = "c"
	ProjectTypeUnknown ProjectType = "unknown"
)

// Language is the dominant source language of a workspace.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangC          Language = "c"
	LangUnknown    Language = "unknown"
)

// Workspace is the detected project root plus inferred metadata.
// It is immutable; detect again if the working directory changes.
type Workspace struct {
	Root     string
	Type     ProjectType
	Language Language
}

// vcsMarkers are version-control root markers, checked before project markers.
var vcsMarkers = []string{".git", ".hg", ".svn"}

// detection maps marker files to project type and language, in priority order.
var detections = []struct {
	markers  []string
	projType ProjectType
	language Language
}{
	{[]string{"go.mod", "go.sum"}, ProjectTypeGo, LangGo},
	{[]string{"tsconfig.json"}, ProjectTypeNode, LangTypeScript},
	{[]string{"package.json", "yarn.lock", "pnpm-lock.yaml"}, ProjectTypeNode, LangJavaScript},
	{[]string{"Cargo.toml", "Cargo.lock"}, ProjectTypeRust, LangRust},
	{[]string{"pyproject.toml", "setup.py", "requirements.txt", "Pipfile"}, ProjectTypePython, LangPython},
	{[]string{"pom.xml", "build.gradle", "build.gradle.kts"}, ProjectTypeJava, LangJava},
	{[]string{"Gemfile", "Rakefile"}, ProjectTypeRuby, LangRuby},
	{[]string{"composer.json"}, ProjectTypePHP, LangPHP},
	{[]string{"CMakeLists.txt", "Makefile"}, ProjectTypeC, LangC},
}

// projectMarkers is the flat set of all markers used during the upward walk.
var projectMarkers = func() []string {
	var all []string
	for _, d := range detections {
		all = append(all, d.markers...)
	}
	all = append(all, ".editorconfig")
	return all
}()

// Detect walks upward from startDir looking first for a version-control root,
// then for known project markers. If nothing matches by the filesystem root
// it falls back to startDir. Detect never fails.
func Detect(startDir string) Workspace {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		abs = startDir
	}

	root := findRoot(abs, vcsMarkers)
	if root == "" {
		root = findRoot(abs, projectMarkers)
	}
	if root == "" {
		root = abs
	}

	projType, language := classify(root)
	return Workspace{Root: root, Type: projType, Language: language}
}

// findRoot walks from dir to the filesystem root, returning the first
// directory containing any of the given markers.
func findRoot(dir string, markers []string) string {
	current := dir
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// classify inspects marker files at root to infer project type and language.
func classify(root string) (ProjectType, Language) {
	for _, d := range detections {
		for _, marker := range d.markers {
			if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
				return d.projType, d.language
			}
		}
	}
	return ProjectTypeUnknown, LangUnknown
}

// Contains reports whether path is inside the workspace root.
func (w Workspace) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

// Resolve resolves a possibly relative path against the workspace root.
func (w Workspace) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(w.Root, path)
}

// String returns a short human-readable description.
func (t ProjectType) String() string {
	switch t {
	case ProjectTypeGo:
		return "Go"
	case ProjectTypeNode:
		return "Node.js"
	case ProjectTypeRust:
		return "Rust"
	case ProjectTypePython:
		return "Python"
	case ProjectTypeJava:
		return "Java"
	case ProjectTypeRuby:
		return "Ruby"
	case ProjectTypePHP:
		return "PHP"
	case ProjectTypeC:
		return "C/C++"
	default:
		return "Unknown"
	}
}
