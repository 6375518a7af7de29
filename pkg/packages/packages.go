// pkg/packages/packages.go

package packages

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const installTimeout = 10 * time.Minute

// Missing returns the names rpm does not report as installed.
func Missing(ctx context.Context, runner execute.Runner, names []string) []string {
	var missing []string
	for _, name := range names {
		if _, err := runner.Run(ctx, execute.Options{Command: "rpm", Args: []string{"-q", name}}); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Ensure installs whichever of names are missing with a single dnf transaction.
// It returns the packages it asked dnf to install.
func Ensure(ctx context.Context, runner execute.Runner, names []string) ([]string, error) {
	logger := otelzap.Ctx(ctx)

	missing := Missing(ctx, runner, names)
	if len(missing) == 0 {
		logger.Info("Prerequisite packages already installed", zap.Strings("packages", names))
		return nil, nil
	}

	logger.Info("Installing prerequisite packages", zap.Strings("packages", missing))
	args := append([]string{"install", "-y"}, missing...)
	if _, err := runner.Run(ctx, execute.Options{
		Command: "dnf",
		Args:    args,
		Timeout: installTimeout,
		Retries: 2,
		Delay:   5 * time.Second,
	}); err != nil {
		return nil, cerr.Wrapf(err, "install %v", missing)
	}
	return missing, nil
}
