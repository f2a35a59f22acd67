package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"coda/internal/chat"
	"coda/internal/fileutil"
	"coda/internal/patch"
)

// handleCommand runs one slash command. Returns true when the app should
// exit.
func (a *App) handleCommand(input string) bool {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/exit", "/quit":
		a.persist(context.Background())
		return true

	case "/help":
		a.printHelp()

	case "/clear":
		a.history.Clear()
		fmt.Println(infoStyle.Render("Conversation cleared."))

	case "/tools":
		for _, tool := range a.registry.List() {
			fmt.Printf("%-16s %s\n", tool.Name(), firstLine(tool.Description()))
		}

	case "/git":
		res := a.registry.Execute(context.Background(), "git_status", nil)
		fmt.Println(res.Text())

	case "/undo":
		if len(args) != 1 {
			fmt.Println(errorStyle.Render("usage: /undo <path>"))
			break
		}
		if err := patch.RestoreBackup(a.ws.Resolve(args[0])); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(infoStyle.Render("Restored " + args[0] + " from backup."))

	case "/diff":
		if len(args) != 1 {
			fmt.Println(errorStyle.Render("usage: /diff <path>"))
			break
		}
		a.showBackupDiff(args[0])

	case "/export":
		if len(args) != 1 {
			fmt.Println(errorStyle.Render("usage: /export <file>"))
			break
		}
		if err := a.exportTranscript(args[0]); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(infoStyle.Render("Transcript written to " + args[0]))

	case "/sessions":
		a.listSessions()

	default:
		fmt.Println(errorStyle.Render("unknown command: " + cmd + " (try /help)"))
	}
	return false
}

func (a *App) printHelp() {
	fmt.Print(`Commands:
  /help            show this help
  /tools           list available tools
  /git             show git status
  /diff <path>     show changes against the file's backup
  /undo <path>     restore a file from its backup
  /export <file>   write the conversation transcript to a file
  /sessions        list stored sessions
  /clear           clear the conversation (keeps the system prompt)
  /exit            save and quit
`)
}

// showBackupDiff diffs a file against its backup: what changed since the
// last apply_patch or create_backup.
func (a *App) showBackupDiff(path string) {
	resolved := a.ws.Resolve(path)
	if !patch.HasBackup(resolved) {
		fmt.Println(errorStyle.Render("no backup exists for " + path))
		return
	}

	backup, err := os.ReadFile(patch.BackupPath(resolved))
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	current, err := os.ReadFile(resolved)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}

	fmt.Println(patch.Preview(patch.Generate(string(backup), string(current), path)))
}

func (a *App) exportTranscript(path string) error {
	var b strings.Builder
	for _, msg := range a.history.Messages() {
		switch msg.Role {
		case chat.RoleSystem:
			continue
		case chat.RoleUser:
			fmt.Fprintf(&b, "## User\n\n%s\n\n", msg.Content)
		case chat.RoleAssistant:
			if msg.Content != "" {
				fmt.Fprintf(&b, "## Assistant\n\n%s\n\n", msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				fmt.Fprintf(&b, "*requested tool %s*\n\n", tc.Name)
			}
		case chat.RoleTool:
			if msg.ToolOutcome != nil {
				fmt.Fprintf(&b, "```\n%s\n```\n\n", msg.ToolOutcome.Content)
			}
		}
	}
	return fileutil.AtomicWrite(a.ws.Resolve(path), []byte(b.String()), 0644)
}

func (a *App) listSessions() {
	if a.store == nil {
		fmt.Println(infoStyle.Render("Session persistence is disabled."))
		return
	}
	sessions, err := a.store.ListSessions(context.Background())
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	if len(sessions) == 0 {
		fmt.Println(infoStyle.Render("No stored sessions."))
		return
	}
	for _, id := range sessions {
		marker := "  "
		if id == a.sessionID {
			marker = "* "
		}
		fmt.Println(marker + id)
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		return s[:idx+1]
	}
	return s
}
