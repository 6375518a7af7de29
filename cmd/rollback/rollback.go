// cmd/rollback/rollback.go

package rollback

import (
	"github.com/spf13/cobra"
)

// RollbackCmd groups commands that help revert a provisioning run.
var RollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Help revert changes made by nyx provision",
	Long: `Nyx never reverts changes on its own. These commands read the action log a
provisioning run saved and print the commands that undo each change, newest first.`,
	Aliases: []string{"undo"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	RollbackCmd.AddCommand(hintsCmd)
}
