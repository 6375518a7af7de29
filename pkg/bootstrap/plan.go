// pkg/bootstrap/plan.go

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/configpatch"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/firewall"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/installer"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/license"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/network"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/packages"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/selinux"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/systemd"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/ui"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/undo"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Step names, in run order.
const (
	StepPreflight       = "preflight"
	StepPackages        = "packages"
	StepSELinux         = "selinux"
	StepDetectInterface = "detect-interface"
	StepIPAlias         = "ip-alias"
	StepFirewall        = "firewall"
	StepLicense         = "license"
	StepInstaller       = "installer"
	StepPatchConfig     = "patch-config"
	StepRestartService  = "restart-service"
	StepRollbackHints   = "rollback-hints"
)

// Fetcher downloads a URL to a local path. *httpclient.Downloader satisfies it.
type Fetcher interface {
	Download(ctx context.Context, url, dest string, perm os.FileMode) (*httpclient.Result, error)
}

// Deps are the host-facing collaborators of a run.
type Deps struct {
	Runner            execute.Runner
	Checker           *preflight.Checker
	Detector          network.Detector
	Fetcher           Fetcher
	Confirmer         installer.Confirmer
	LookPath          func(string) bool
	Out               io.Writer // operator-facing output
	SELinuxConfigPath string
}

// DefaultDeps wires Deps to the real host.
func DefaultDeps() (*Deps, error) {
	downloader, err := httpclient.NewDownloader(nil)
	if err != nil {
		return nil, err
	}
	runner := execute.Default
	return &Deps{
		Runner:    runner,
		Checker:   preflight.New(),
		Detector:  network.DefaultDetector(runner),
		Fetcher:   downloader,
		Confirmer: interaction.NewPrompter(),
		LookPath:  execute.Exists,
		Out:       os.Stderr,
	}, nil
}

type planner struct {
	deps *Deps
}

// Plan builds the provisioning run for cfg.
func Plan(deps *Deps, cfg *config.Config) *Orchestrator {
	p := &planner{deps: deps}
	return &Orchestrator{
		DryRun: cfg.DryRun,
		State:  &State{Config: cfg, Undo: undo.NewLog()},
		Steps: []Step{
			{
				Name:        StepPreflight,
				Description: "check root, OS, installer source, policy and tools",
				Critical:    true,
				ReadOnly:    true,
				Run:         p.preflight,
			},
			{
				Name:        StepPackages,
				Description: "install missing prerequisite packages with dnf",
				SkipIf: func(s *State) string {
					if len(s.Config.Packages) == 0 {
						return "no packages configured"
					}
					return ""
				},
				Run: p.packages,
			},
			{
				Name:        StepSELinux,
				Description: "set the SELinux mode",
				SkipIf: func(s *State) string {
					if s.Config.SELinuxMode == "" || s.Config.SELinuxMode == selinux.ModeUnchanged {
						return "selinux_mode is unchanged"
					}
					return ""
				},
				Run: p.selinux,
			},
			{
				Name:        StepDetectInterface,
				Description: "detect the primary interface and its connection profile",
				Critical:    true,
				ReadOnly:    true,
				SkipIf:      skipWithoutAlias,
				Run:         p.detectInterface,
			},
			{
				Name:        StepIPAlias,
				Description: "add the alias IP to the primary interface",
				SkipIf: func(s *State) string {
					if reason := skipWithoutAlias(s); reason != "" {
						return reason
					}
					if s.Interface == nil {
						return "primary interface unknown"
					}
					return ""
				},
				Run: p.ipAlias,
			},
			{
				Name:        StepFirewall,
				Description: "open firewall ports",
				SkipIf: func(s *State) string {
					if s.Config.SkipFirewall {
						return "skip_firewall is set"
					}
					if len(s.Config.Firewall.Ports) == 0 {
						return "no firewall ports configured"
					}
					return ""
				},
				Run: p.firewall,
			},
			{
				Name:        StepLicense,
				Description: "install the license file",
				Critical:    true,
				SkipIf: func(s *State) string {
					if s.Config.License.Path == "" && s.Config.License.URL == "" {
						return "no license source configured"
					}
					return ""
				},
				Run: p.license,
			},
			{
				Name:        StepInstaller,
				Description: "fetch, preview, confirm and run the installer",
				Critical:    true,
				SkipIf: func(s *State) string {
					if !s.Config.Installer.Enabled {
						return "installer disabled"
					}
					return ""
				},
				Run: p.installer,
			},
			{
				Name:        StepPatchConfig,
				Description: "point the installer config at the license",
				SkipIf: func(s *State) string {
					c := s.Config
					if c.ConfigPatch.Key == "" || c.PatchFilePath() == "" {
						return "no config_patch file or key configured"
					}
					if c.ConfigPatch.Value == "" && s.LicensePath == "" {
						return "no config_patch value and no license installed"
					}
					return ""
				},
				Run: p.patchConfig,
			},
			{
				Name:        StepRestartService,
				Description: "restart the service",
				SkipIf: func(s *State) string {
					if s.Config.Service == "" {
						return "no service configured"
					}
					return ""
				},
				Run: p.restartService,
			},
			{
				Name:        StepRollbackHints,
				Description: "print rollback hints and save the action log",
				ReadOnly:    true,
				Always:      true,
				Run:         p.rollbackHints,
			},
		},
	}
}

func skipWithoutAlias(s *State) string {
	if !s.Config.AliasEnabled() {
		return "no alias ip configured"
	}
	return ""
}

func (p *planner) preflight(rc *nyx_io.RuntimeContext, s *State) error {
	_, err := preflight.RunChecks(rc.Ctx, p.deps.Checker.ProvisionChecks(s.Config))
	return err
}

func (p *planner) packages(rc *nyx_io.RuntimeContext, s *State) error {
	installed, err := packages.Ensure(rc.Ctx, p.deps.Runner, s.Config.Packages)
	if len(installed) > 0 {
		s.Undo.Record(undo.Action{
			Type:     undo.TypePackages,
			Target:   strings.Join(installed, " "),
			Rollback: execute.Quote("dnf", append([]string{"remove", "-y"}, installed...)...),
		})
	}
	return err
}

func (p *planner) selinux(rc *nyx_io.RuntimeContext, s *State) error {
	m := selinux.New(p.deps.Runner)
	if p.deps.SELinuxConfigPath != "" {
		m.ConfigPath = p.deps.SELinuxConfigPath
	}
	change, err := m.Apply(rc.Ctx, s.Config.SELinuxMode)
	if change != nil && (change.RuntimeChanged || change.Persisted) {
		s.Undo.Record(undo.Action{
			Type:       undo.TypeSELinux,
			Target:     m.ConfigPath,
			Detail:     fmt.Sprintf("%s -> %s", orUnknown(change.Previous), change.Mode),
			BackupPath: change.Backup,
			Rollback:   change.RollbackCommand(),
		})
	}
	return err
}

func (p *planner) detectInterface(rc *nyx_io.RuntimeContext, s *State) error {
	iface, err := network.Detect(rc.Ctx, p.deps.Detector, p.deps.Runner)
	if err != nil {
		return err
	}
	s.Interface = iface
	return nil
}

func (p *planner) ipAlias(rc *nyx_io.RuntimeContext, s *State) error {
	logger := otelzap.Ctx(rc.Ctx)
	cfg := s.Config

	alias, err := network.ParseAlias(cfg.Alias.IP, cfg.Alias.Prefix)
	if err != nil {
		return err
	}

	var result *multierror.Error
	if added, err := network.AddEphemeral(rc.Ctx, p.deps.Runner, s.Interface.Name, alias); err != nil {
		result = multierror.Append(result, err)
	} else if added {
		s.Undo.Record(undo.Action{
			Type:     undo.TypeAliasIP,
			Target:   s.Interface.Name,
			Detail:   alias.String(),
			Rollback: network.EphemeralRollback(s.Interface.Name, alias),
		})
	}

	if s.Interface.Connection == "" {
		logger.Warn("No NetworkManager connection profile; alias will not survive a reboot",
			zap.String("interface", s.Interface.Name))
		return result.ErrorOrNil()
	}
	if added, err := network.AddPersistent(rc.Ctx, p.deps.Runner, s.Interface.Connection, alias); err != nil {
		result = multierror.Append(result, err)
	} else if added {
		s.Undo.Record(undo.Action{
			Type:     undo.TypeAliasNM,
			Target:   s.Interface.Connection,
			Detail:   alias.String(),
			Rollback: network.PersistentRollback(s.Interface.Connection, alias),
		})
	}
	return result.ErrorOrNil()
}

func (p *planner) firewall(rc *nyx_io.RuntimeContext, s *State) error {
	ports, err := firewall.ParsePorts(s.Config.Firewall.Ports)
	if err != nil {
		return err
	}
	backend := firewall.Detect(rc.Ctx, p.deps.Runner, p.deps.LookPath)
	if backend == nil {
		return cerr.WithHint(cerr.New("no supported firewall backend installed"),
			"Install firewalld (`dnf install -y firewalld`) or pass --skip-firewall")
	}
	added, err := backend.AllowPorts(rc.Ctx, ports)
	for _, port := range added {
		s.Undo.Record(undo.Action{
			Type:     undo.TypeFirewall,
			Target:   backend.Name(),
			Detail:   port.String(),
			Rollback: backend.RemoveCommand(port),
		})
	}
	return err
}

func (p *planner) license(rc *nyx_io.RuntimeContext, s *State) error {
	cfg := s.Config
	res, err := license.Install(rc.Ctx, p.deps.Fetcher, license.Source{
		Path:   cfg.License.Path,
		URL:    cfg.License.URL,
		SHA256: cfg.License.SHA256,
	}, cfg.LicenseDest())
	if err != nil {
		return err
	}
	s.LicensePath = res.Dest
	if res.Changed {
		a := undo.Action{
			Type:       undo.TypeLicense,
			Target:     res.Dest,
			Detail:     "sha256 " + res.SHA256,
			BackupPath: res.Backup,
		}
		if res.Backup == "" {
			a.Rollback = execute.Quote("rm", "-f", res.Dest)
		}
		s.Undo.Record(a)
	}
	return nil
}

func (p *planner) installer(rc *nyx_io.RuntimeContext, s *State) error {
	cfg := s.Config
	inst := &installer.Installer{
		Runner:  p.deps.Runner,
		Fetcher: p.deps.Fetcher,
		Confirm: p.deps.Confirmer,
		Out:     p.deps.Out,
	}
	res, err := inst.Run(rc.Ctx, installer.Options{
		URL:            cfg.Installer.URL,
		SHA256:         cfg.Installer.SHA256,
		Args:           cfg.Installer.Args,
		Timeout:        cfg.Installer.Timeout,
		PreviewLines:   cfg.Installer.PreviewLines,
		NonInteractive: cfg.NonInteractive,
	})
	if err != nil {
		return err
	}
	s.InstallerRan = true
	s.Undo.Record(undo.Action{
		Type:   undo.TypeInstaller,
		Target: res.URL,
		Detail: "sha256 " + res.SHA256 + "; use the vendor's uninstall procedure",
	})
	return nil
}

func (p *planner) patchConfig(rc *nyx_io.RuntimeContext, s *State) error {
	logger := otelzap.Ctx(rc.Ctx)
	cfg := s.Config
	path := cfg.PatchFilePath()

	res, err := configpatch.Set(path, cfg.ConfigPatch.Key, cfg.PatchValue(), configpatch.Options{CreateIfMissing: true})
	if err != nil {
		return err
	}
	if !res.Changed {
		logger.Info("Config already up to date", zap.String("path", path), zap.String("key", cfg.ConfigPatch.Key))
		return nil
	}
	a := undo.Action{
		Type:       undo.TypeConfigEdit,
		Target:     path,
		Detail:     cfg.ConfigPatch.Key + " = " + cfg.PatchValue(),
		BackupPath: res.Backup,
	}
	if res.Created {
		a.Rollback = execute.Quote("rm", "-f", path)
	}
	s.Undo.Record(a)
	logger.Info("Config patched",
		zap.String("path", path),
		zap.String("key", cfg.ConfigPatch.Key),
		zap.Bool("appended", res.Appended),
		zap.String("backup", res.Backup))
	return nil
}

func (p *planner) restartService(rc *nyx_io.RuntimeContext, s *State) error {
	sd := &systemd.Manager{Runner: p.deps.Runner}
	if s.InstallerRan {
		if err := sd.DaemonReload(rc.Ctx); err != nil {
			otelzap.Ctx(rc.Ctx).Warn("daemon-reload failed", zap.Error(err))
		}
	}
	if err := sd.Restart(rc.Ctx, s.Config.Service); err != nil {
		return err
	}
	s.Undo.Record(undo.Action{
		Type:   undo.TypeService,
		Target: s.Config.Service,
		Detail: "restart it again after reverting the changes above",
	})
	return nil
}

func (p *planner) rollbackHints(rc *nyx_io.RuntimeContext, s *State) error {
	s.Hints = s.Undo.Hints()
	if len(s.Hints) == 0 {
		_, _ = fmt.Fprintln(p.deps.Out, ui.Muted("No host changes recorded; nothing to roll back."))
	} else {
		_, _ = fmt.Fprintln(p.deps.Out, ui.Box("Rollback hints (newest first)", strings.Join(s.Hints, "\n")))
	}
	if s.Config.DryRun {
		return nil
	}

	// An empty log is still saved so latest.yaml always describes this run.
	path, err := s.Undo.Save(rc.Ctx, s.Config.StateDir)
	if err != nil {
		return err
	}
	s.LogPath = path
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
