// pkg/execute/helpers.go

package execute

import (
	"strings"
	"time"
)

func defaultTimeout(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return 30 * time.Second
}

// CommandString renders a command line for logs and dry-run output.
func CommandString(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// shellQuote quotes args for operator-facing hints.
func shellQuote(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "" && !strings.ContainsAny(arg, " \t\n'\"$`\\|&;<>(){}*?") {
			quoted = append(quoted, arg)
			continue
		}
		quoted = append(quoted, "'"+strings.ReplaceAll(arg, "'", `'\''`)+"'")
	}
	return strings.Join(quoted, " ")
}

// Quote renders command and args as a copy-pastable shell line.
func Quote(command string, args ...string) string {
	return shellQuote(append([]string{command}, args...))
}
