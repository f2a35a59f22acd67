package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"coda/internal/workspace"
)

func TestAnalyzePythonImports(t *testing.T) {
	ws := pyWorkspace(t)
	utils := seed(t, ws.Root, "utils.py", "def helper(): pass\n")
	pkgInit := seed(t, ws.Root, "pkg/__init__.py", "")
	main := seed(t, ws.Root, "main.py", strings.Join([]string{
		"import os",
		"import utils",
		"from pkg import thing",
		"from missing import nothing",
		"",
	}, "\n"))

	got := NewImportAnalyzer(ws).Analyze(main)

	// Stdlib and unresolvable imports are dropped; local modules resolve to
	// files, packages to their __init__.py.
	assert.Equal(t, []string{utils, pkgInit}, got)
}

func TestAnalyzePythonRelativeImport(t *testing.T) {
	ws := pyWorkspace(t)
	helpers := seed(t, ws.Root, "sub/helpers.py", "def f(): pass\n")
	app := seed(t, ws.Root, "sub/app.py", "from .helpers import f\n")

	got := NewImportAnalyzer(ws).Analyze(app)
	assert.Equal(t, []string{helpers}, got)
}

func TestAnalyzeJSImports(t *testing.T) {
	ws := workspace.Workspace{Root: t.TempDir(), Language: workspace.LangJavaScript}
	lib := seed(t, ws.Root, "lib.js", "export const a = 1;\n")
	storeIndex := seed(t, ws.Root, "store/index.js", "export const b = 2;\n")
	app := seed(t, ws.Root, "app.js", strings.Join([]string{
		`import { a } from './lib';`,
		`const b = require('./store');`,
		`import 'react';`,
		"",
	}, "\n"))

	got := NewImportAnalyzer(ws).Analyze(app)

	// Bare specifiers are package imports and are skipped.
	assert.Equal(t, []string{lib, storeIndex}, got)
}

func TestAnalyzeCapsResolvedImports(t *testing.T) {
	ws := pyWorkspace(t)
	var lines []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		seed(t, ws.Root, name+".py", "x = 1\n")
		lines = append(lines, "import "+name)
	}
	main := seed(t, ws.Root, "main.py", strings.Join(lines, "\n")+"\n")

	got := NewImportAnalyzer(ws).Analyze(main)
	assert.Len(t, got, maxResolvedImports)
}

func TestAnalyzeUnsupportedAndMissing(t *testing.T) {
	ws := pyWorkspace(t)
	goFile := seed(t, ws.Root, "main.go", "package main\n")

	analyzer := NewImportAnalyzer(ws)
	assert.Nil(t, analyzer.Analyze(goFile))
	assert.Nil(t, analyzer.Analyze(ws.Root+"/does-not-exist.py"))
}

func TestAnalyzeDeduplicates(t *testing.T) {
	ws := pyWorkspace(t)
	utils := seed(t, ws.Root, "utils.py", "x = 1\n")
	main := seed(t, ws.Root, "main.py", "import utils\nfrom utils import x\n")

	got := NewImportAnalyzer(ws).Analyze(main)
	assert.Equal(t, []string{utils}, got)
}
