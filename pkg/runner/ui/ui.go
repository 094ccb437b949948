// Package ui launches the terminal user interface.
package ui

import (
	"context"

	"go.uber.org/zap"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
	tuiapp "tableflip.dev/beho/pkg/tui/app"
)

type UI struct {
	Session *session.Manager
	Notes   *note.Service
	Store   store.Store
	Logger  *zap.Logger
}

func (u *UI) Do(ctx context.Context) error {
	if !prompt.Interactive() {
		return prompt.ErrNoTerminal
	}
	return tuiapp.Run(ctx, tuiapp.Options{
		Session: u.Session,
		Notes:   u.Notes,
		Store:   u.Store,
		Logger:  u.Logger,
	})
}
