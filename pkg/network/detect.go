// pkg/network/detect.go

package network

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Interface is the primary interface and the NetworkManager profile bound to it.
type Interface struct {
	Name       string `yaml:"name"`
	Connection string `yaml:"connection,omitempty"`
}

// Detector finds the interface carrying the default route.
type Detector interface {
	DefaultInterface(ctx context.Context) (string, error)
}

// RouteDetector parses `ip -o route show default`.
type RouteDetector struct {
	Runner execute.Runner
}

func (d *RouteDetector) DefaultInterface(ctx context.Context) (string, error) {
	out, err := d.Runner.Run(ctx, execute.Options{
		Command: "ip",
		Args:    []string{"-o", "route", "show", "default"},
	})
	if err != nil {
		return "", cerr.Wrap(err, "list default routes")
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		for i := 0; i+1 < len(fields); i++ {
			if fields[i] == "dev" {
				return fields[i+1], nil
			}
		}
	}
	return "", cerr.New("no default route found")
}

// ChainDetector returns the first successful answer from Detectors.
type ChainDetector []Detector

func (c ChainDetector) DefaultInterface(ctx context.Context) (string, error) {
	var result *multierror.Error
	for _, d := range c {
		name, err := d.DefaultInterface(ctx)
		if err == nil && name != "" {
			return name, nil
		}
		if err != nil {
			otelzap.Ctx(ctx).Debug("Interface detector failed", zap.Error(err))
			result = multierror.Append(result, err)
		}
	}
	if result == nil {
		return "", cerr.New("no detector configured")
	}
	return "", result
}

// DefaultDetector prefers netlink and falls back to parsing ip(8).
func DefaultDetector(runner execute.Runner) Detector {
	return ChainDetector{&NetlinkDetector{}, &RouteDetector{Runner: runner}}
}

// ConnectionFor returns the NetworkManager profile active on iface, or "" if none.
func ConnectionFor(ctx context.Context, runner execute.Runner, iface string) (string, error) {
	out, err := runner.Run(ctx, execute.Options{
		Command: "nmcli",
		Args:    []string{"-g", "GENERAL.CONNECTION", "device", "show", iface},
	})
	if err != nil {
		return "", cerr.Wrapf(err, "query connection for %s", iface)
	}
	conn := strings.TrimSpace(out)
	if conn == "--" {
		return "", nil
	}
	return conn, nil
}

// Detect resolves the primary interface and its connection profile.
// A missing profile is not an error; the persistent alias is skipped then.
func Detect(ctx context.Context, detector Detector, runner execute.Runner) (*Interface, error) {
	logger := otelzap.Ctx(ctx)

	name, err := detector.DefaultInterface(ctx)
	if err != nil {
		return nil, cerr.WithHint(cerr.Wrap(err, "detect primary interface"),
			"Check `ip route show default`; nyx needs a default route to pick an interface")
	}

	iface := &Interface{Name: name}
	conn, err := ConnectionFor(ctx, runner, name)
	if err != nil {
		logger.Warn("Cannot determine NetworkManager connection", zap.String("interface", name), zap.Error(err))
	}
	iface.Connection = conn

	logger.Info("Primary interface detected",
		zap.String("interface", iface.Name),
		zap.String("connection", iface.Connection))
	return iface, nil
}
