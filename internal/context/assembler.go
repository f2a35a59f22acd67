// Package context builds the budget-bounded project context supplied to the
// model: a workspace summary, the current file, its one-hop imports and a
// ranked list of relevant files.
package context

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coda/internal/logging"
	"coda/internal/workspace"
)

const (
	// DefaultTokenBudget bounds the assembled block.
	DefaultTokenBudget = 8000

	// Per-file character ceilings. Imports are cut harder than ranked
	// files because several of them ride along with the current file.
	importCharLimit   = 2000
	relevantCharLimit = 3000

	// maxCurrentImports bounds the one-hop import sections.
	maxCurrentImports = 3

	// Later sections reserve headroom: imports stop at 80% of the budget,
	// ranked files at 90%.
	importsThreshold  = 0.8
	relevantThreshold = 0.9

	sectionSeparator = "\n\n---\n\n"
)

// Section is one titled slice of the context block with its estimated cost.
type Section struct {
	Title  string
	Body   string
	Tokens int
}

// Block is an ordered, budget-bounded sequence of sections. Built fresh per
// user turn and discarded afterwards.
type Block struct {
	Sections []Section
	Budget   int
}

// Tokens returns the total estimated token cost of the block.
func (b *Block) Tokens() int {
	total := 0
	for _, s := range b.Sections {
		total += s.Tokens
	}
	return total
}

// Render concatenates the sections with separators.
func (b *Block) Render() string {
	parts := make([]string, 0, len(b.Sections))
	for _, s := range b.Sections {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s", s.Title, s.Body))
	}
	return strings.Join(parts, sectionSeparator)
}

// Assembler composes workspace, ranker and import-analyzer output into a
// Block. Deterministic given identical filesystem state and query.
type Assembler struct {
	ws       workspace.Workspace
	ranker   *Ranker
	analyzer *ImportAnalyzer

	budget           int
	maxRelevantFiles int
}

// NewAssembler creates an Assembler over the workspace. budget <= 0 selects
// DefaultTokenBudget; maxRelevantFiles <= 0 disables the ranked section.
func NewAssembler(ws workspace.Workspace, budget, maxRelevantFiles int) *Assembler {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	return &Assembler{
		ws:               ws,
		ranker:           NewRanker(ws),
		analyzer:         NewImportAnalyzer(ws),
		budget:           budget,
		maxRelevantFiles: maxRelevantFiles,
	}
}

// Build assembles the context block for a query. currentFile may be empty;
// a missing current file is skipped, not an error. Sections are appended in
// fixed order and never split: once the projected total would cross a
// section's threshold, that section and everything after it is dropped.
func (a *Assembler) Build(query, currentFile string) *Block {
	block := &Block{Budget: a.budget}

	a.append(block, "Project", a.summary(), a.budget)

	var current string
	if currentFile != "" {
		current = a.ws.Resolve(currentFile)
		if data, err := os.ReadFile(current); err == nil {
			title := "Current file: " + a.relPath(current)
			a.append(block, title, string(data), a.budget)
		} else {
			logging.Debug("context: current file unreadable", "path", current, "error", err)
			current = ""
		}
	}

	importBudget := int(float64(a.budget) * importsThreshold)
	if current != "" {
		imports := a.analyzer.Analyze(current)
		if len(imports) > maxCurrentImports {
			imports = imports[:maxCurrentImports]
		}
		for _, imp := range imports {
			data, err := os.ReadFile(imp)
			if err != nil {
				continue
			}
			title := "Imported: " + a.relPath(imp)
			if !a.append(block, title, truncate(string(data), importCharLimit), importBudget) {
				break
			}
		}
	}

	relevantBudget := int(float64(a.budget) * relevantThreshold)
	for _, cand := range a.ranker.RelevantFiles(query, a.maxRelevantFiles, nil) {
		if cand.Path == current {
			continue
		}
		data, err := os.ReadFile(cand.Path)
		if err != nil {
			continue
		}
		title := "Relevant: " + a.relPath(cand.Path)
		if !a.append(block, title, truncate(string(data), relevantCharLimit), relevantBudget) {
			break
		}
	}

	logging.Debug("context assembled",
		"sections", len(block.Sections),
		"tokens", block.Tokens(),
		"budget", a.budget)
	return block
}

// append adds a section unless the projected total would exceed limit (and
// never past the overall budget). Returns false when the section was dropped.
func (a *Assembler) append(block *Block, title, body string, limit int) bool {
	s := Section{Title: title, Body: body}
	s.Tokens = EstimateTokens(s.Title) + EstimateTokens(s.Body)

	projected := block.Tokens() + s.Tokens
	if projected > limit || projected > a.budget {
		return false
	}
	block.Sections = append(block.Sections, s)
	return true
}

func (a *Assembler) summary() string {
	return fmt.Sprintf("Root: %s\nType: %s\nLanguage: %s",
		a.ws.Root, a.ws.Type, a.ws.Language)
}

func (a *Assembler) relPath(path string) string {
	rel, err := filepath.Rel(a.ws.Root, path)
	if err != nil {
		return path
	}
	return rel
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (truncated)"
}
