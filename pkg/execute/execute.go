// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Package execute runs system tools with structured logging, per-attempt
// timeouts and retries. Shell interpretation is never used: callers pass
// argv explicitly.

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct {
	Logger *zap.Logger
}

// Default is the process-wide Runner.
var Default Runner = &ExecRunner{}

// Run executes a command with structured logging and proper error handling.
// The combined stdout/stderr of the last attempt is returned in all cases.
func (r *ExecRunner) Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := CommandString(opts.Command, opts.Args...)

	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	if logger == nil {
		logger = DefaultLogger
	}
	if logger == nil {
		logger = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := telemetry.Start(ctx, "execute.Run",
		attribute.String("command", opts.Command),
		attribute.String("args", telemetry.TruncateArgs(opts.Args)),
	)
	defer span.End()

	if opts.DryRun {
		logger.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	logger.Debug("Starting execution", zap.String("command", cmdStr))

	attempts := max(1, opts.Retries)
	var output string
	var err error

	for i := 1; i <= attempts; i++ {
		output, err = r.runOnce(ctx, opts)
		if err == nil {
			logger.Debug("Execution succeeded", zap.String("command", cmdStr), zap.Int("attempt", i))
			return output, nil
		}

		span.RecordError(err)
		logger.Debug("Execution failed",
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("summary", nyx_err.ExtractSummary(ctx, output, 2)),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
		if i < attempts && opts.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.Delay):
			}
		}
	}

	return output, cerr.Wrapf(err, "%s failed after %d attempt(s): %s",
		cmdStr, attempts, nyx_err.ExtractSummary(ctx, output, 2))
}

func (r *ExecRunner) runOnce(ctx context.Context, opts Options) (string, error) {
	rc, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	cmd := exec.CommandContext(rc, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if opts.Stream {
		w = io.MultiWriter(os.Stderr, &buf)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	if rc.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s: %w", defaultTimeout(opts.Timeout), rc.Err())
	}
	return strings.TrimRight(buf.String(), "\n"), err
}

// Exists reports whether name resolves on PATH.
func Exists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
