package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ChatCmd starts the interactive terminal UI.
type ChatCmd struct {
	CommonOptions
	Session   string `short:"s" long:"session" description:"session id" default:"cli"`
	AltScreen bool   `long:"alt-screen"        description:"use the terminal's alternate screen"`
}

func (c *ChatCmd) Execute(_ []string) error {
	// The UI owns the terminal, so logs only go to --log.
	bt, cleanup, err := c.open(io.Discard)
	if err != nil {
		return err
	}
	defer cleanup()

	m := newChatModel(bt, c.Session)
	defer m.unsubscribe()

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if c.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}
