// pkg/nyx_err/util.go

package nyx_err

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var debugMode bool

func SetDebugMode(enabled bool) {
	debugMode = enabled
}

func DebugEnabled() bool {
	return debugMode
}

// ExtractSummary extracts a concise error summary from full command output.
func ExtractSummary(ctx context.Context, output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "No output provided."
	}

	lines := strings.Split(trimmed, "\n")
	var candidates []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "error") ||
			strings.Contains(lowerLine, "failed") ||
			strings.Contains(lowerLine, "cannot") ||
			strings.Contains(lowerLine, "panic") ||
			strings.Contains(lowerLine, "fatal") ||
			strings.Contains(lowerLine, "timeout") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if maxCandidates > 0 && len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		otelzap.Ctx(ctx).Debug("Extracted error summary", zap.Int("candidates", len(candidates)))
		return strings.Join(candidates, " - ")
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}

	return "Unknown error."
}

// NewExpectedError wraps an error for softer UX handling.
func NewExpectedError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	otelzap.Ctx(ctx).Debug("Marking error as expected", zap.Error(err))
	return &UserError{cause: err}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// PrintError prints a human-readable error to stderr without exiting.
// Hints attached with cerr.WithHint are always shown; --debug adds the
// full chain with stack traces.
func PrintError(userMessage string, err error) {
	fprintError(os.Stderr, userMessage, err)
}

func fprintError(w io.Writer, userMessage string, err error) {
	if err == nil {
		return
	}
	label := "Error"
	if IsExpectedUserError(err) {
		label = "Notice"
		zap.L().Warn(userMessage, zap.Error(err))
	} else {
		zap.L().Error(userMessage, zap.Error(err))
	}

	if DebugEnabled() {
		fmt.Fprintf(w, "%s: %s: %+v\n", label, userMessage, err)
	} else {
		fmt.Fprintf(w, "%s: %s: %v\n", label, userMessage, err)
	}
	if hints := cerr.FlattenHints(err); hints != "" {
		for _, hint := range strings.Split(hints, "\n--\n") {
			fmt.Fprintf(w, "Hint: %s\n", hint)
		}
	}
	if label == "Error" && !DebugEnabled() {
		fmt.Fprintln(w, "Tip: rerun with --debug for the full error chain.")
	}
}
