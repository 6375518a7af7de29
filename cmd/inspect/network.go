// cmd/inspect/network.go

package inspect

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/network"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/ui"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var InspectNetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show the primary interface, its connection profile and alias state",
	Args:  cobra.NoArgs,
	RunE:  nyx_cli.Wrap(runInspectNetwork),
}

func init() {
	cli.AddStringFlag(InspectNetworkCmd, "alias-ip", "", "", "alias IP to look for", "alias.ip")
	cli.AddIntFlag(InspectNetworkCmd, "alias-prefix", "", 24, "prefix length of the alias IP", "alias.prefix")
}

func runInspectNetwork(rc *nyx_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	cfg, _, err := config.Load(cmd, config.OptionsFromFlags(cmd))
	if err != nil {
		return nyx_err.NewExpectedError(rc.Ctx, err)
	}

	runner := execute.Default
	iface, err := network.Detect(rc.Ctx, network.DefaultDetector(runner), runner)
	if err != nil {
		return err
	}

	pairs := [][2]string{
		{"Interface", iface.Name},
		{"Connection", orNone(iface.Connection)},
	}
	if cfg.AliasEnabled() {
		alias, err := network.ParseAlias(cfg.Alias.IP, cfg.Alias.Prefix)
		if err != nil {
			return nyx_err.NewExpectedError(rc.Ctx, err)
		}
		pairs = append(pairs, [2]string{"Alias", alias.String()})

		bound, err := network.HasEphemeral(rc.Ctx, runner, iface.Name, alias)
		if err != nil {
			logger.Warn("Cannot list interface addresses", zap.Error(err))
		}
		pairs = append(pairs, [2]string{"Bound now", presence(bound, err)})

		if iface.Connection != "" {
			persisted, err := network.HasPersistent(rc.Ctx, runner, iface.Connection, alias)
			if err != nil {
				logger.Warn("Cannot read connection profile", zap.Error(err))
			}
			pairs = append(pairs, [2]string{"In profile", presence(persisted, err)})
		}
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), ui.KeyValues(pairs))
	return err
}

func orNone(s string) string {
	if s == "" {
		return ui.Muted("(none)")
	}
	return s
}

func presence(ok bool, err error) string {
	switch {
	case err != nil:
		return ui.Warn("unknown")
	case ok:
		return "yes"
	default:
		return "no"
	}
}
