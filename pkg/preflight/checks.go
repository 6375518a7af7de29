// pkg/preflight/checks.go

package preflight

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/policy"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const checkTimeout = 30 * time.Second

// Check represents a single preflight check
type Check struct {
	Name        string
	Description string
	Check       func(context.Context) error
	Required    bool
}

// CheckResult contains the result of running preflight checks
type CheckResult struct {
	Name    string
	Passed  bool
	Error   error
	Warning string
}

// RunChecks executes checks in order and stops at the first required failure.
// Optional failures are recorded as warnings.
func RunChecks(ctx context.Context, checks []Check) ([]CheckResult, error) {
	logger := otelzap.Ctx(ctx)
	logger.Info("Running preflight checks", zap.Int("total_checks", len(checks)))

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		logger.Debug("Running check", zap.String("check", check.Name), zap.String("description", check.Description))

		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := check.Check(checkCtx)
		cancel()

		result := CheckResult{Name: check.Name, Passed: err == nil, Error: err}
		if err == nil {
			logger.Debug("Check passed", zap.String("check", check.Name))
			results = append(results, result)
			continue
		}
		if check.Required {
			logger.Error("Required check failed", zap.String("check", check.Name), zap.Error(err))
			results = append(results, result)
			return results, cerr.Wrapf(err, "preflight %s", check.Name)
		}
		logger.Warn("Optional check failed", zap.String("check", check.Name), zap.Error(err))
		result.Warning = err.Error()
		results = append(results, result)
	}

	logger.Info("All required preflight checks passed")
	return results, nil
}

// ProvisionChecks is the check list that gates a provisioning run.
func (c *Checker) ProvisionChecks(cfg *config.Config) []Check {
	return []Check{
		{
			Name:        "root",
			Description: "effective uid is 0",
			Required:    true,
			Check:       c.RequireRoot,
		},
		{
			Name:        "os",
			Description: "RHEL-family release at or above " + cfg.MinOSVersion,
			Required:    true,
			Check: func(ctx context.Context) error {
				_, err := c.CheckOS(ctx, cfg.MinOSVersion, cfg.StrictOS)
				return err
			},
		},
		{
			Name:        "installer-url",
			Description: "installer source present when the installer is enabled",
			Required:    true,
			Check: func(ctx context.Context) error {
				return RequireInstallerURL(ctx, cfg)
			},
		},
		{
			Name:        "policy",
			Description: "provisioning policy allows this configuration",
			Required:    true,
			Check: func(ctx context.Context) error {
				return policy.Enforce(ctx, cfg.PolicyInput(), cfg.PolicyFile)
			},
		},
		{
			Name:        "tools",
			Description: "commands invoked during provisioning are installed",
			// Missing tools may be fixed by the packages step.
			Required: false,
			Check: func(ctx context.Context) error {
				return c.RequireTools(ctx, RequiredTools(cfg))
			},
		},
	}
}
