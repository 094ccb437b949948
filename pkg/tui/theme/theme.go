package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Panel  PanelTheme
	Modal  ModalTheme
	Keypad KeypadTheme
	List   ListTheme
}

// FooterTheme groups styles used by the bottom status/help bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// ModalTheme styles centered modal overlays (onboarding, vault, settings).
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
	Error lipgloss.Style
}

// KeypadTheme styles the PIN dots and the line under the title.
type KeypadTheme struct {
	Filled   lipgloss.Style
	Empty    lipgloss.Style
	Subtitle lipgloss.Style
	Error    lipgloss.Style
}

// ListTheme styles note rows.
type ListTheme struct {
	Item     lipgloss.Style
	Selected lipgloss.Style
	Meta     lipgloss.Style
	Empty    lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("99")
	muted := lipgloss.Color("244")
	errColor := lipgloss.Color("203")

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2)

	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(muted),
			Error:  lipgloss.NewStyle().Foreground(errColor),
		},
		Panel: PanelTheme{
			Frame: frame,
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
		},
		Modal: ModalTheme{
			Frame: frame.BorderForeground(accent),
			Title: lipgloss.NewStyle().Bold(true).Foreground(accent),
			Body:  lipgloss.NewStyle(),
			Error: lipgloss.NewStyle().Foreground(errColor),
		},
		Keypad: KeypadTheme{
			Filled:   lipgloss.NewStyle().Foreground(accent),
			Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
			Subtitle: lipgloss.NewStyle().Foreground(muted),
			Error:    lipgloss.NewStyle().Foreground(errColor).Bold(true),
		},
		List: ListTheme{
			Item:     lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Meta:     lipgloss.NewStyle().Foreground(muted),
			Empty:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		},
	}
}
