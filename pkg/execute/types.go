// pkg/execute/types.go

package execute

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
)

// Options describes one external command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string  // appended to the inherited environment
	Stdin   io.Reader // nil means no input
	Timeout time.Duration
	Retries int
	Delay   time.Duration
	Stream  bool // mirror output live to stderr
	DryRun  bool
	Logger  *zap.Logger
}

// Runner executes external commands. Every system change goes through one.
type Runner interface {
	Run(ctx context.Context, opts Options) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, opts Options) (string, error)

func (f RunnerFunc) Run(ctx context.Context, opts Options) (string, error) {
	return f(ctx, opts)
}

// DefaultLogger is used when neither Options.Logger nor the runner's Logger is set.
// main points it at the nyx logger once logging is initialized.
var DefaultLogger *zap.Logger
