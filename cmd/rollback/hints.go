// cmd/rollback/hints.go

package rollback

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/ui"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/undo"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var hintsCmd = &cobra.Command{
	Use:   "hints",
	Short: "Print rollback commands from the latest action log",
	Args:  cobra.NoArgs,
	RunE:  nyx_cli.Wrap(runHints),
}

func init() {
	cli.AddStringFlag(hintsCmd, "state-dir", "", shared.NyxStateDir, "directory holding action logs", "state_dir")
}

func runHints(rc *nyx_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	cfg, _, err := config.Load(cmd, config.OptionsFromFlags(cmd))
	if err != nil {
		return nyx_err.NewExpectedError(rc.Ctx, err)
	}

	log, err := undo.LoadLatest(rc.Ctx, cfg.StateDir)
	if err != nil {
		if cerr.Is(err, os.ErrNotExist) {
			logger.Warn("No action log found", zap.String("dir", cfg.StateDir))
			return nyx_err.NewExpectedError(rc.Ctx, fmt.Errorf("no action log in %s; nothing has been provisioned from here", cfg.StateDir))
		}
		return err
	}
	logger.Info("Loaded action log", zap.String("run_id", log.RunID), zap.Int("actions", len(log.Actions)))

	w := cmd.OutOrStdout()
	fmt.Fprint(w, ui.KeyValues([][2]string{
		{"Run", log.RunID},
		{"Host", log.Host},
		{"Started", log.StartedAt.Local().Format(time.RFC1123)},
		{"Changes", fmt.Sprintf("%d", len(log.Actions))},
	}))

	hints := log.Hints()
	if len(hints) == 0 {
		_, err = fmt.Fprintln(w, ui.Muted("The run recorded no host changes."))
		return err
	}
	_, err = fmt.Fprintln(w, ui.Box("Rollback hints (newest first)", strings.Join(hints, "\n")))
	return err
}
