/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/nyx/cmd/inspect"
	"github.com/CodeMonkeyCybersecurity/nyx/cmd/provision"
	"github.com/CodeMonkeyCybersecurity/nyx/cmd/rollback"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the base command for nyx.
var RootCmd = &cobra.Command{
	Use:   "nyx",
	Short: "One-shot host provisioning for a licensed agent",
	Long: `Nyx prepares a RHEL-family host for a licensed agent in one pass: prerequisite
packages, SELinux mode, an alias IP on the primary interface, firewall ports,
the license file, an optional vendor installer, the agent config and a service
restart. Every change is recorded so it can be reverted by hand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var debug bool

func init() {
	RootCmd.PersistentFlags().String("config", "", "config file (default: nyx.yaml in /etc/nyx, $XDG_CONFIG_HOME/nyx or .)")
	RootCmd.PersistentFlags().String("env-file", "", "env file loaded before resolving config (default: ./.env)")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print full error chains")
	cli.Unbound(RootCmd.PersistentFlags(), "config")
	cli.Unbound(RootCmd.PersistentFlags(), "env-file")
	cli.Unbound(RootCmd.PersistentFlags(), "debug")

	RootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		nyx_err.SetDebugMode(debug)
	}
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	for _, subCmd := range []*cobra.Command{
		provision.ProvisionCmd,
		inspect.InspectCmd,
		rollback.RollbackCmd,
		VersionCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute runs the root command and returns the process exit code.
// SIGINT and SIGTERM cancel the context, which stops any running command.
func Execute() int {
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush logs: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	RegisterCommands()

	err := RootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	code := nyx_err.GetExitCode(err)
	if ctx.Err() != nil {
		code = 130
	}
	logger.GetLogger().Debug("CLI execution finished with error", zap.Int("exit_code", code), zap.Error(err))
	nyx_err.PrintError("nyx failed", err)
	return code
}
