// pkg/preflight/preflight.go

package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-version"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Checker holds the host probes preflight depends on.
type Checker struct {
	Geteuid       func() int
	LookPath      func(string) (string, error)
	OSReleasePath string
}

// New returns a Checker wired to the real host.
func New() *Checker {
	return &Checker{
		Geteuid:       unix.Geteuid,
		LookPath:      exec.LookPath,
		OSReleasePath: shared.OSReleasePath,
	}
}

// RequireRoot fails unless the effective uid is 0.
func (c *Checker) RequireRoot(ctx context.Context) error {
	logger := otelzap.Ctx(ctx)
	euid := c.Geteuid()
	if euid == 0 {
		return nil
	}
	logger.Info("Root privileges required", zap.Int("current_uid", euid))
	return nyx_err.NewExpectedError(ctx, nyx_err.NewPermissionError("this host", "provision",
		fmt.Sprintf("re-run as root (current euid %d): sudo %s", euid, strings.Join(os.Args, " "))))
}

// CheckOS verifies a RHEL-family host at or above minVersion.
// Mismatches are warnings unless strict.
func (c *Checker) CheckOS(ctx context.Context, minVersion string, strict bool) (*OSReleaseInfo, error) {
	logger := otelzap.Ctx(ctx)

	f, err := os.Open(c.OSReleasePath)
	if err != nil {
		if strict {
			return nil, nyx_err.NewFilesystemError("cannot read "+c.OSReleasePath, err)
		}
		logger.Warn("Cannot read os-release, skipping OS check", zap.Error(err))
		return nil, nil
	}
	defer f.Close()

	info, err := ParseOSRelease(f)
	if err != nil {
		return nil, cerr.Wrapf(err, "parse %s", c.OSReleasePath)
	}

	problem := osProblem(info, minVersion)
	if problem == "" {
		logger.Info("Operating system supported",
			zap.String("id", info.ID), zap.String("version", info.VersionID))
		return info, nil
	}
	if strict {
		return info, nyx_err.NewValidationError("unsupported operating system: "+problem,
			"Unset strict_os to continue on a best-effort basis")
	}
	logger.Warn("Operating system outside the supported set, continuing", zap.String("reason", problem))
	return info, nil
}

func osProblem(info *OSReleaseInfo, minVersion string) string {
	if !info.IsRHELFamily() {
		return fmt.Sprintf("%s is not a RHEL-family distribution", info.ID)
	}
	if minVersion == "" {
		return ""
	}
	want, err := version.NewVersion(minVersion)
	if err != nil {
		return fmt.Sprintf("invalid min_os_version %q", minVersion)
	}
	have, err := version.NewVersion(info.VersionID)
	if err != nil {
		return fmt.Sprintf("unparseable VERSION_ID %q", info.VersionID)
	}
	if have.LessThan(want) {
		return fmt.Sprintf("%s %s is older than %s", info.ID, have, want)
	}
	return ""
}

// RequireTools reports every missing tool at once.
func (c *Checker) RequireTools(ctx context.Context, tools []string) error {
	var result *multierror.Error
	for _, tool := range tools {
		if _, err := c.LookPath(tool); err != nil {
			otelzap.Ctx(ctx).Debug("Tool not found", zap.String("tool", tool))
			result = multierror.Append(result, nyx_err.NewDependencyError(tool, "provisioning",
				"Install it with: dnf install -y "+packageFor(tool)))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return cerr.Wrap(err, "required tools missing")
	}
	return nil
}

// RequiredTools lists the commands a provisioning run will invoke.
func RequiredTools(cfg *config.Config) []string {
	tools := []string{"ip", "nmcli", "systemctl", "dnf", "rpm"}
	if cfg.SELinuxMode != "unchanged" {
		tools = append(tools, "getenforce", "setenforce")
	}
	if cfg.Installer.Enabled {
		tools = append(tools, "bash")
	}
	return tools
}

func packageFor(tool string) string {
	switch tool {
	case "ip":
		return "iproute"
	case "nmcli":
		return "NetworkManager"
	case "getenforce", "setenforce":
		return "libselinux-utils"
	case "firewall-cmd":
		return "firewalld"
	case "systemctl":
		return "systemd"
	default:
		return tool
	}
}

// RequireInstallerURL fails when the installer is enabled without a source.
func RequireInstallerURL(ctx context.Context, cfg *config.Config) error {
	if cfg.Installer.Enabled && cfg.Installer.URL == "" {
		return nyx_err.NewExpectedError(ctx, nyx_err.NewValidationError(
			"installer.enabled is set but installer.url is empty",
			"Pass --installer-url or disable the installer step"))
	}
	return nil
}
