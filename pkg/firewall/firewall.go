// pkg/firewall/firewall.go

package firewall

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Backend opens ports on one firewall implementation.
type Backend interface {
	Name() string
	Available(ctx context.Context) bool
	// AllowPorts opens ports and returns the ones that were not already open.
	AllowPorts(ctx context.Context, ports []Port) ([]Port, error)
	RemoveCommand(p Port) string
}

// Detect returns firewalld when it is installed, else ufw, else nil.
func Detect(ctx context.Context, runner execute.Runner, lookPath func(string) bool) Backend {
	logger := otelzap.Ctx(ctx)
	if lookPath("firewall-cmd") {
		logger.Info("Using firewalld for firewall changes")
		return &Firewalld{Runner: runner}
	}
	if lookPath("ufw") {
		logger.Info("Using UFW for firewall changes")
		return &UFW{Runner: runner}
	}
	logger.Warn("No supported firewall backend found (firewalld, ufw)")
	return nil
}

// Firewalld drives firewall-cmd, writing permanent rules then reloading.
type Firewalld struct {
	Runner execute.Runner
}

func (f *Firewalld) Name() string { return "firewalld" }

func (f *Firewalld) run(ctx context.Context, args ...string) (string, error) {
	return f.Runner.Run(ctx, execute.Options{Command: "firewall-cmd", Args: args})
}

func (f *Firewalld) Available(ctx context.Context) bool {
	out, err := f.run(ctx, "--state")
	return err == nil && strings.TrimSpace(out) == "running"
}

func (f *Firewalld) AllowPorts(ctx context.Context, ports []Port) ([]Port, error) {
	logger := otelzap.Ctx(ctx)

	if !f.Available(ctx) {
		logger.Info("firewalld not running, starting it")
		if _, err := f.Runner.Run(ctx, execute.Options{Command: "systemctl", Args: []string{"enable", "--now", "firewalld"}}); err != nil {
			return nil, cerr.Wrap(err, "firewalld is not running and could not be started")
		}
	}

	var added []Port
	for _, p := range ports {
		if out, err := f.run(ctx, "--permanent", "--query-port="+p.String()); err == nil && strings.TrimSpace(out) == "yes" {
			logger.Debug("Port already open", zap.String("port", p.String()))
			continue
		}
		if _, err := f.run(ctx, "--permanent", "--add-port="+p.String()); err != nil {
			logger.Error("Failed to allow port in firewalld", zap.String("port", p.String()), zap.Error(err))
			return added, cerr.Wrapf(err, "allow %s", p)
		}
		added = append(added, p)
	}

	if len(added) == 0 {
		return nil, nil
	}
	if _, err := f.run(ctx, "--reload"); err != nil {
		return added, cerr.Wrap(err, "reload firewalld")
	}
	return added, nil
}

func (f *Firewalld) RemoveCommand(p Port) string {
	return execute.Quote("firewall-cmd", "--permanent", "--remove-port="+p.String()) + " && firewall-cmd --reload"
}

// UFW drives ufw. Rules take effect immediately; reload is for consistency with firewalld.
type UFW struct {
	Runner execute.Runner
}

func (u *UFW) Name() string { return "ufw" }

func (u *UFW) run(ctx context.Context, args ...string) (string, error) {
	return u.Runner.Run(ctx, execute.Options{Command: "ufw", Args: args})
}

func (u *UFW) Available(ctx context.Context) bool {
	out, err := u.run(ctx, "status")
	return err == nil && strings.Contains(out, "Status: active")
}

func (u *UFW) AllowPorts(ctx context.Context, ports []Port) ([]Port, error) {
	logger := otelzap.Ctx(ctx)

	status, _ := u.run(ctx, "status")
	if !strings.Contains(status, "Status: active") {
		logger.Warn("UFW inactive; rules are recorded but not enforced until `ufw enable`")
	}

	var added []Port
	for _, p := range ports {
		if ufwHasRule(status, p) {
			logger.Debug("Port already open", zap.String("port", p.UFW()))
			continue
		}
		if _, err := u.run(ctx, "allow", p.UFW()); err != nil {
			logger.Error("Failed to allow port", zap.String("port", p.UFW()), zap.Error(err))
			return added, cerr.Wrapf(err, "allow %s", p.UFW())
		}
		added = append(added, p)
	}
	if len(added) == 0 {
		return nil, nil
	}
	if _, err := u.run(ctx, "reload"); err != nil {
		return added, cerr.Wrap(err, "reload ufw")
	}
	return added, nil
}

func ufwHasRule(status string, p Port) bool {
	for _, line := range strings.Split(status, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == p.UFW() && fields[1] == "ALLOW" {
			return true
		}
	}
	return false
}

func (u *UFW) RemoveCommand(p Port) string {
	return execute.Quote("ufw", "delete", "allow", p.UFW())
}
