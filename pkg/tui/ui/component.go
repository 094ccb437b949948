// Package ui declares the contracts shared by the TUI's screens.
package ui

import tea "github.com/charmbracelet/bubbletea/v2"

// Component is a Bubble Tea widget that the root model sizes and renders.
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Overlay is a Component shown on demand above the notes screen. Locking
// the session closes every open overlay.
type Overlay interface {
	Component
	Open()
	IsOpen() bool
	Close()
}
