/* cmd/version.go */

package cmd

import (
	"fmt"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/spf13/cobra"
)

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nyx version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "nyx %s (%s, %s/%s)\n",
			shared.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return err
	},
}
