/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
)

// PlatformLogPaths returns candidate log paths in order of priority.
func PlatformLogPaths() []string {
	switch runtime.GOOS {
	case "linux":
		return []string{
			shared.NyxLogs,
			stateLogPath(),
			shared.NyxLogsPWD,
			"/tmp/nyx/nyx.log",
		}
	default:
		return []string{stateLogPath(), shared.NyxLogsPWD}
	}
}

func stateLogPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, shared.NyxID, "nyx.log")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", shared.NyxID, "nyx.log")
	}
	return ""
}
