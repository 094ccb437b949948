package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/runner/prompt"
	"tableflip.dev/beho/pkg/session"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	// Out receives JSON errors; defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

var errorCodes = []struct {
	err  error
	code string
}{
	{session.ErrWrongPIN, "wrong_pin"},
	{session.ErrLocked, "locked"},
	{session.ErrNoCredential, "no_pin"},
	{session.ErrNotConfirmed, "not_confirmed"},
	{session.ErrInvalidDuration, "invalid_duration"},
	{session.ErrAlreadyEnrolled, "already_enrolled"},
	{note.ErrNotFound, "not_found"},
	{prompt.ErrNoTerminal, "no_terminal"},
	{prompt.ErrTooManyAttempts, "too_many_attempts"},
}

// ErrorCode names err for scripts; unknown errors are "error".
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "error"
}

func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
			"code":  ErrorCode(err),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		w := o.Out
		if w == nil {
			w = color.Output
		}
		_, _ = fmt.Fprintln(w, string(b))
		return nil
	}
	return err
}
