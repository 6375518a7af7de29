// cmd/provision/provision.go

package provision

import (
	"os"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var ProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision this host for the agent",
	Long: `Run the provisioning procedure once against the local host.

STEPS (critical steps abort the run, the rest are best-effort):
  1. preflight          critical     root, OS, installer source, policy, tools
  2. packages                        dnf install missing prerequisites
  3. selinux                         setenforce and persist SELINUX=<mode>
  4. detect-interface   critical     primary interface and NetworkManager profile
  5. ip-alias                        ip addr add, then nmcli +ipv4.addresses
  6. firewall                        firewalld (or ufw) ports
  7. license            critical     copy or download, optional sha256
  8. installer          critical     fetch, preview, confirm, run with bash
  9. patch-config                    key = value in the installer config
 10. restart-service                 systemctl restart, then is-active
 11. rollback-hints                  print hints, save the action log

EXAMPLES:
  # Local license, alias IP, default ports
  nyx provision --license-path ./license.key --alias-ip 10.0.0.50

  # Unattended run with a remote installer pinned by checksum
  nyx provision -y --installer --installer-url https://vendor.example/install.sh \
      --installer-sha256 <hex> --license-url https://vendor.example/license.key

  # Show what would change
  nyx provision --dry-run`,
	Args: cobra.NoArgs,
	RunE: nyx_cli.Wrap(runProvision),
}

func init() {
	AddFlags(ProvisionCmd)
}

// AddFlags registers every provisioning setting as a flag bound to its config key.
func AddFlags(cmd *cobra.Command) {
	cli.AddStringFlag(cmd, "license-path", "", "", "local license file to install", "license.path")
	cli.AddStringFlag(cmd, "license-url", "", "", "URL to download the license from", "license.url")
	cli.AddStringFlag(cmd, "license-sha256", "", "", "expected SHA-256 of the license", "license.sha256")

	cli.AddStringFlag(cmd, "alias-ip", "", "", "alias IP to add to the primary interface", "alias.ip")
	cli.AddIntFlag(cmd, "alias-prefix", "", 24, "prefix length of the alias IP", "alias.prefix")

	cli.AddBoolFlag(cmd, "installer", "", false, "fetch and run the vendor installer", "installer.enabled")
	cli.AddStringFlag(cmd, "installer-url", "", "", "installer script URL", "installer.url")
	cli.AddStringFlag(cmd, "installer-sha256", "", "", "expected SHA-256 of the installer", "installer.sha256")
	cli.AddStringSliceFlag(cmd, "installer-arg", "", nil, "argument passed to the installer (repeatable)", "installer.args")
	cli.AddDurationFlag(cmd, "installer-timeout", "", 0, "installer run timeout", "installer.timeout")
	cli.AddIntFlag(cmd, "preview-lines", "", shared.DefaultPreviewLines, "installer lines shown before confirmation", "installer.preview_lines")

	cli.AddStringFlag(cmd, "installer-config-dir", "", shared.DefaultInstallerConfigDir, "installer config directory (license destination)", "installer_config_dir")
	cli.AddStringFlag(cmd, "patch-file", "", shared.DefaultInstallerConfig, "config file to patch, relative to the installer config dir", "config_patch.file")
	cli.AddStringFlag(cmd, "patch-key", "", shared.DefaultPatchKey, "config key to set", "config_patch.key")
	cli.AddStringFlag(cmd, "patch-value", "", "", "config value (default: installed license path)", "config_patch.value")
	cli.AddStringFlag(cmd, "service", "", shared.DefaultService, "systemd service to restart", "service")

	cli.AddStringSliceFlag(cmd, "port", "p", nil, "firewall port, e.g. 443/tcp or 8000-8010/udp (repeatable)", "firewall.ports")
	cli.AddBoolFlag(cmd, "skip-firewall", "", false, "leave the firewall untouched", "skip_firewall")
	cli.AddStringSliceFlag(cmd, "package", "", nil, "prerequisite package (repeatable)", "packages")
	cli.AddStringFlag(cmd, "selinux-mode", "", shared.DefaultSELinuxMode, "enforcing, permissive, disabled or unchanged", "selinux_mode")
	cli.AddStringFlag(cmd, "min-os-version", "", shared.DefaultMinOSVersion, "minimum RHEL-family VERSION_ID", "min_os_version")
	cli.AddBoolFlag(cmd, "strict-os", "", false, "fail instead of warn on an unsupported OS", "strict_os")

	cli.AddBoolFlag(cmd, "non-interactive", "y", false, "run the installer without confirmation", "non_interactive")
	cli.AddBoolFlag(cmd, "dry-run", "n", false, "run read-only steps and report the rest", "dry_run")
	cli.AddBoolFlag(cmd, "allow-insecure-download", "", false, "accept non-https license and installer URLs", "allow_insecure_download")
	cli.AddBoolFlag(cmd, "require-checksum", "", false, "refuse downloads without a pinned sha256", "require_checksum")
	cli.AddStringFlag(cmd, "policy-file", "", "", "extra rego policy (package nyx.provision)", "policy_file")
	cli.AddStringFlag(cmd, "state-dir", "", shared.NyxStateDir, "directory for action logs", "state_dir")
}

func runProvision(rc *nyx_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	cfg, used, err := config.Load(cmd, config.OptionsFromFlags(cmd))
	if err != nil {
		return nyx_err.NewExpectedError(rc.Ctx, nyx_err.WrapValidationError(err))
	}
	if used != "" {
		logger.Info("Using config file", zap.String("path", used))
		rc.Attributes["config_file"] = used
	}

	deps, err := bootstrap.DefaultDeps()
	if err != nil {
		return err
	}

	run := bootstrap.Plan(deps, cfg)
	report, runErr := run.Run(rc)
	if err := report.Render(os.Stderr); err != nil {
		logger.Warn("Failed to render summary", zap.Error(err))
	}
	if run.State.LogPath != "" {
		rc.Terminal("Show these hints again with: nyx rollback hints", zap.String("action_log", run.State.LogPath))
	}
	return runErr
}
