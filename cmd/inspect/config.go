// cmd/inspect/config.go

package inspect

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/nyx/cmd/provision"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var InspectConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML",
	Long: `Resolve configuration exactly as provision would (flags, NYX_* environment,
config file, defaults) and print the result. Accepts every provision flag.`,
	Args: cobra.NoArgs,
	RunE: nyx_cli.Wrap(runInspectConfig),
}

func init() {
	provision.AddFlags(InspectConfigCmd)
}

func runInspectConfig(rc *nyx_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	cfg, used, err := config.Load(cmd, config.OptionsFromFlags(cmd))
	if err != nil {
		return nyx_err.NewExpectedError(rc.Ctx, err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return cerr.Wrap(err, "marshal config")
	}

	w := cmd.OutOrStdout()
	source := used
	if source == "" {
		source = "(no config file; defaults, environment and flags)"
	}
	if _, err := fmt.Fprintf(w, "# source: %s\n", source); err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
