// Package app wires the assistant together and runs the interactive loop.
package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"coda/internal/agent"
	"coda/internal/chat"
	"coda/internal/client"
	"coda/internal/config"
	ctxbuild "coda/internal/context"
	"coda/internal/logging"
	"coda/internal/tools"
	"coda/internal/workspace"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// App is the assembled application: workspace, model client, tool registry,
// executor and session state.
type App struct {
	cfg       *config.Config
	ws        workspace.Workspace
	client    client.Client
	registry  *tools.Registry
	executor  *agent.Executor
	assembler *ctxbuild.Assembler
	history   *chat.History
	store     *chat.Store
	sessionID string
}

// New assembles the application for the given working directory. resume
// selects an existing session id to continue; empty starts a fresh session.
func New(ctx context.Context, cfg *config.Config, workDir, resume string) (*App, error) {
	ws := workspace.Detect(workDir)
	logging.Info("workspace detected", "root", ws.Root, "type", ws.Type.String(), "language", string(ws.Language))

	c, err := client.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := tools.DefaultRegistry(ws, cfg.Tools)

	a := &App{
		cfg:       cfg,
		ws:        ws,
		client:    c,
		registry:  registry,
		executor:  agent.NewExecutor(c, registry, cfg.Agent.MaxIterations),
		assembler: ctxbuild.NewAssembler(ws, cfg.Context.TokenBudget, cfg.Context.MaxRelevantFiles),
		history:   chat.NewHistory(systemPrompt(ws)),
		sessionID: uuid.NewString(),
	}

	if cfg.Session.Persist {
		if err := a.openStore(ctx, resume); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context, resume string) error {
	dbPath := a.cfg.Session.DBPath
	if dbPath == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		dbPath = filepath.Join(dir, "sessions.db")
	}

	store, err := chat.OpenStore(dbPath)
	if err != nil {
		return err
	}
	a.store = store

	if resume == "" {
		return nil
	}

	sessionID := resume
	if sessionID == "latest" {
		sessions, err := store.ListSessions(ctx)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println(infoStyle.Render("No previous sessions; starting fresh."))
			return nil
		}
		sessionID = sessions[0]
	}

	messages, err := store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Println(infoStyle.Render("Session not found; starting fresh."))
		return nil
	}

	a.sessionID = sessionID
	a.history = chat.NewHistory("")
	for _, msg := range messages {
		a.history.Append(msg)
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("Resumed session %s (%d messages).", sessionID, len(messages))))
	return nil
}

// Run drives the interactive loop until EOF or /exit.
func (a *App) Run() error {
	defer a.Close()

	fmt.Printf("coda (%s) in %s\n", a.client.Model(), a.ws.Root)
	fmt.Println(infoStyle.Render("Type /help for commands."))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Print(promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if done := a.handleCommand(input); done {
				return nil
			}
			continue
		}

		a.handleQuery(input)
	}
}

// Close releases the model client and session store.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.client.Close()
	logging.Close()
}

// handleQuery runs one user turn through the executor. The turn is
// interruptible: Ctrl-C cancels between loop iterations and inside any
// blocking call.
func (a *App) handleQuery(query string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a.history.Append(chat.Message{Role: chat.RoleUser, Content: a.userTurn(query)})

	// Save whatever the turn produced even when it was interrupted; the
	// turn's own context is already canceled by then.
	defer func() {
		a.history.Trim(4 * a.cfg.Context.TokenBudget)
		a.persist(context.Background())
	}()

	result, err := a.executor.Run(ctx, a.history)
	if err != nil {
		fmt.Println(errorStyle.Render("error: " + err.Error()))
		return
	}

	if result.Exhausted {
		fmt.Println(errorStyle.Render(fmt.Sprintf(
			"Stopped after %d tool iterations without a final answer. Rephrase or narrow the request.",
			result.Iterations)))
	} else {
		a.history.Append(chat.Message{Role: chat.RoleAssistant, Content: result.Answer})
		fmt.Println(result.Answer)
	}
}

// userTurn prepends the assembled project context to the first query of a
// session; later turns carry the raw query, the context is already in the
// conversation.
func (a *App) userTurn(query string) string {
	for _, msg := range a.history.Messages() {
		if msg.Role == chat.RoleUser {
			return query
		}
	}

	block := a.assembler.Build(query, "")
	if len(block.Sections) == 0 {
		return query
	}
	return "Project context:\n\n" + block.Render() + "\n\n---\n\nRequest: " + query
}

func (a *App) persist(ctx context.Context) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(ctx, a.sessionID, a.history.Messages()); err != nil {
		logging.Warn("saving session failed", "session", a.sessionID, "error", err)
	}
}

func systemPrompt(ws workspace.Workspace) string {
	return fmt.Sprintf(`You are coda, a coding assistant working inside a local project.

Project root: %s
Project type: %s (%s)

Use the available tools to inspect and modify the project. Prefer
preview_changes before apply_patch so edits stay reviewable. Paths are
relative to the project root. When you have enough information, answer in
plain text without calling further tools.`,
		ws.Root, ws.Type.String(), ws.Language)
}
