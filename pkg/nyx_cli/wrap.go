// pkg/nyx_cli/wrap.go

package nyx_cli

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunFunc is a command body that receives a ready RuntimeContext.
type RunFunc func(rc *nyx_io.RuntimeContext, cmd *cobra.Command, args []string) error

// Wrap ensures panic recovery, telemetry, logging, and argument validation
func Wrap(fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		rc := nyx_io.NewContext(parent, cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = nyx_err.NewInternalError(fmt.Sprintf("nyx %s panicked", cmd.Name()),
					cerr.AssertionFailedf("panic: %v", r))
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		nyx_io.LogRuntimeExecutionContext(rc)

		if verr := shared.ValidateCommandArgs(args); verr != nil {
			rc.Log.Error("Input validation failed", zap.Error(verr), zap.String("command", cmd.Name()))
			return nyx_err.NewExpectedError(rc.Ctx, nyx_err.NewValidationError(verr.Error()))
		}

		err = fn(rc, cmd, args)
		if err != nil && !nyx_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
