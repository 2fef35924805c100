package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run blocks on the dashboard until the user quits. Mouse support is not
// enabled; scrolling is keyboard-driven.
func Run(cfg Config) error {
	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
