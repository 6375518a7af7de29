package systemd

import (
	"context"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Exit codes of `systemctl is-active` (see systemctl(1)).
const (
	ExitInactive  = 3
	ExitUnknown   = 4
	ExitNotLoaded = 5
)

const restartTimeout = 2 * time.Minute

// Manager runs systemctl through a Runner.
type Manager struct {
	Runner execute.Runner
}

func (m *Manager) systemctl(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	return m.Runner.Run(ctx, execute.Options{Command: "systemctl", Args: args, Timeout: timeout})
}

// Restart restarts unit and waits for systemctl to return.
func (m *Manager) Restart(ctx context.Context, unit string) error {
	logger := otelzap.Ctx(ctx)

	// ASSESS
	if !m.Exists(ctx, unit) {
		return cerr.WithHintf(cerr.Newf("unit %s is not installed", unit),
			"Check the installer ran and the service name is correct (`systemctl list-unit-files | grep %s`)", unit)
	}

	// INTERVENE
	logger.Info("Restarting service", zap.String("unit", unit))
	if _, err := m.systemctl(ctx, restartTimeout, "restart", unit); err != nil {
		return cerr.Wrapf(err, "restart %s", unit)
	}

	// EVALUATE
	state, err := m.IsActive(ctx, unit)
	if err != nil || state != "active" {
		logger.Warn("Service not active after restart", zap.String("unit", unit), zap.String("state", state))
		return cerr.Newf("unit %s is %s after restart; see `journalctl -u %s`", unit, state, unit)
	}
	logger.Info("Service active", zap.String("unit", unit))
	return nil
}

// IsActive returns the ActiveState word systemctl prints ("active", "failed", ...).
// A non-active unit is not an error.
func (m *Manager) IsActive(ctx context.Context, unit string) (string, error) {
	out, err := m.systemctl(ctx, 0, "is-active", unit)
	state := strings.TrimSpace(out)
	if state == "" && err != nil {
		return "unknown", cerr.Wrapf(err, "is-active %s", unit)
	}
	return state, nil
}

// Exists reports whether systemd knows unit.
func (m *Manager) Exists(ctx context.Context, unit string) bool {
	out, err := m.systemctl(ctx, 0, "list-unit-files", "--no-legend", unitName(unit))
	return err == nil && strings.TrimSpace(out) != ""
}

// DaemonReload re-reads unit files.
func (m *Manager) DaemonReload(ctx context.Context) error {
	_, err := m.systemctl(ctx, 0, "daemon-reload")
	return cerr.Wrap(err, "daemon-reload")
}

func unitName(unit string) string {
	if strings.Contains(unit, ".") {
		return unit
	}
	return unit + ".service"
}
