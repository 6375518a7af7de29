// pkg/selinux/selinux.go

package selinux

import (
	"context"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/configpatch"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	ModeEnforcing  = "enforcing"
	ModePermissive = "permissive"
	ModeDisabled   = "disabled"
	ModeUnchanged  = "unchanged"
)

// Manager reads and changes the SELinux mode.
type Manager struct {
	Runner     execute.Runner
	ConfigPath string
}

func New(runner execute.Runner) *Manager {
	return &Manager{Runner: runner, ConfigPath: shared.SELinuxConfigPath}
}

// Change is what Apply did, for rollback hints.
type Change struct {
	Previous       string
	Mode           string
	RuntimeChanged bool
	Persisted      bool
	Backup         string
}

// Current returns the runtime mode reported by getenforce, lowercased.
func (m *Manager) Current(ctx context.Context) (string, error) {
	out, err := m.Runner.Run(ctx, execute.Options{Command: "getenforce"})
	if err != nil {
		return "", cerr.Wrap(err, "getenforce")
	}
	return strings.ToLower(strings.TrimSpace(out)), nil
}

// Apply sets the runtime mode with setenforce and persists SELINUX=<mode>.
// A host with SELinux disabled at boot cannot change mode at runtime; only
// the persistent setting is written then.
func (m *Manager) Apply(ctx context.Context, mode string) (*Change, error) {
	logger := otelzap.Ctx(ctx)
	if mode == "" || mode == ModeUnchanged {
		return nil, nil
	}

	current, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	change := &Change{Previous: current, Mode: mode}

	if current != ModeDisabled && runtimeMode(mode) != current {
		flag := "0"
		if mode == ModeEnforcing {
			flag = "1"
		}
		if _, err := m.Runner.Run(ctx, execute.Options{Command: "setenforce", Args: []string{flag}}); err != nil {
			return change, cerr.Wrapf(err, "setenforce %s", flag)
		}
		change.RuntimeChanged = true
		logger.Info("SELinux runtime mode changed", zap.String("from", current), zap.String("to", runtimeMode(mode)))
	}

	if _, err := os.Stat(m.ConfigPath); err != nil {
		logger.Warn("SELinux config not found, mode not persisted", zap.String("path", m.ConfigPath), zap.Error(err))
		return change, nil
	}
	res, err := configpatch.Set(m.ConfigPath, "SELINUX", mode, configpatch.Options{Separator: "="})
	if err != nil {
		return change, cerr.Wrap(err, "persist SELinux mode")
	}
	change.Persisted = res.Changed
	change.Backup = res.Backup
	if res.Changed {
		logger.Info("SELinux mode persisted", zap.String("path", m.ConfigPath), zap.String("mode", mode))
	}
	return change, nil
}

// disabled can only take effect at boot; the running system goes permissive.
func runtimeMode(mode string) string {
	if mode == ModeDisabled {
		return ModePermissive
	}
	return mode
}

// RollbackCommand restores the previous runtime mode.
func (c *Change) RollbackCommand() string {
	if c == nil || c.Previous == "" || c.Previous == ModeDisabled {
		return ""
	}
	if c.Previous == ModeEnforcing {
		return "setenforce 1"
	}
	return "setenforce 0"
}
