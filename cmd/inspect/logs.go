/* cmd/inspect/logs.go
 */
package inspect

import (
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/ui"
	"github.com/spf13/cobra"
)

var InspectLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List nyx log and telemetry files",
	Args:  cobra.NoArgs,
	RunE: nyx_cli.Wrap(func(rc *nyx_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		candidates := append(logger.PlatformLogPaths(), shared.NyxTelemetry)

		rows := make([][]string, 0, len(candidates))
		for _, path := range candidates {
			if path == "" {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				rows = append(rows, []string{path, ui.Muted("absent"), "", ""})
				continue
			}
			rows = append(rows, []string{path, "present",
				fmt.Sprintf("%d", info.Size()), info.ModTime().Format("2006-01-02 15:04:05")})
		}
		_, err := fmt.Fprintln(w, ui.Table([]string{"Path", "State", "Bytes", "Modified"}, rows))
		return err
	}),
}
