package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexanderramin/scopesync/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ErrNotConfirmed is returned when a destructive command is declined or
// cannot be confirmed.
var ErrNotConfirmed = errors.New("not confirmed")

func scopesyncHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// confirmKeyMap lets esc abort a prompt as well as ctrl+c.
func confirmKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))
	return km
}

// confirm asks before a destructive write. --yes skips the prompt; without a
// terminal the command refuses rather than guessing.
func (a *App) confirm(title, description string) error {
	if a.Config.AssumeYes {
		return nil
	}

	var ok bool
	switch {
	case a.Confirm != nil:
		var err error
		if ok, err = a.Confirm(title); err != nil {
			return err
		}
	case a.IsInteractive != nil && a.IsInteractive():
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(title).
					Description(description).
					Affirmative("Yes").
					Negative("No").
					Value(&ok),
			),
		).WithTheme(scopesyncHuhTheme()).
			WithKeyMap(confirmKeyMap()).
			WithShowHelp(false).
			WithProgramOptions(tea.WithOutput(os.Stderr))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return ErrNotConfirmed
			}
			return fmt.Errorf("confirmation prompt: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s (pass --yes to proceed without a terminal)", ErrNotConfirmed, title)
	}

	if !ok {
		return ErrNotConfirmed
	}
	return nil
}
