// cmd/inspect/inspect.go

package inspect

import (
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// InspectCmd is the root command for read-only inspection
var InspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Inspect host state and resolved configuration",
	Aliases: []string{"show"},
	Run: func(cmd *cobra.Command, args []string) {
		logger.GetLogger().Info("No subcommand provided for inspect.", zap.String("command", cmd.Use))
		_ = cmd.Help()
	},
}

func init() {
	InspectCmd.AddCommand(InspectNetworkCmd)
	InspectCmd.AddCommand(InspectConfigCmd)
	InspectCmd.AddCommand(InspectLogsCmd)
}
