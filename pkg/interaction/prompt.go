// pkg/interaction/prompt.go

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Prompter asks the operator questions. Prompts go to Out (stderr by default)
// so stdout stays clean for automation.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool

	reader *bufio.Reader
}

// NewPrompter reads from stdin and writes prompts to stderr.
func NewPrompter() *Prompter {
	return &Prompter{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: IsTerminal(os.Stdin),
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func (p *Prompter) bufReader() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

// PromptYesNo asks a yes/no question. Empty or unrecognised input yields defaultYes.
// A read failure (including EOF) returns defaultYes with the error.
func (p *Prompter) PromptYesNo(ctx context.Context, prompt string, defaultYes bool) (bool, error) {
	defPrompt := DefaultYesPrompt
	if !defaultYes {
		defPrompt = DefaultNoPrompt
	}
	label := fmt.Sprintf("%s [%s]", prompt, defPrompt)

	input, err := ReadLine(ctx, p.bufReader(), p.Out, label)
	if err != nil {
		return defaultYes, err
	}

	if answer, ok := NormalizeYesNoInput(input); ok {
		otelzap.Ctx(ctx).Info("User answered prompt", zap.String("prompt", prompt), zap.Bool("answer", answer))
		return answer, nil
	}

	otelzap.Ctx(ctx).Debug("Default applied", zap.String("prompt", prompt), zap.Bool("default_yes", defaultYes))
	return defaultYes, nil
}

// Confirm gates an irreversible action. It returns nil when the operator
// explicitly agrees, a user-cancelled error when they decline, and
// shared.ErrNotTTY when nobody can be asked.
func (p *Prompter) Confirm(ctx context.Context, action string) error {
	if !p.Interactive {
		return nyx_err.NewExpectedError(ctx, fmt.Errorf("cannot confirm %s: %w (pass --non-interactive to proceed without a prompt)", action, shared.ErrNotTTY))
	}
	ok, err := p.PromptYesNo(ctx, "Proceed to "+action+"?", false)
	if err != nil {
		return nyx_err.NewUserCancelledError(action + " (no answer: " + err.Error() + ")")
	}
	if !ok {
		return nyx_err.NewUserCancelledError(action)
	}
	return nil
}

// NormalizeYesNoInput returns (answer, recognised) for y/yes/n/no, case-insensitively.
func NormalizeYesNoInput(input string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case YesShort, YesLong:
		return true, true
	case NoShort, NoLong:
		return false, true
	}
	return false, false
}
