// pkg/installer/preview.go

package installer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/ui"
	"mvdan.cc/sh/v3/syntax"
)

const maxHeadWidth = 160

// Commands that deserve the operator's attention before running a script.
var notable = map[string]bool{
	"rm": true, "dd": true, "mkfs": true, "eval": true, "curl": true, "wget": true,
	"chmod": true, "chown": true, "useradd": true, "systemctl": true, "setenforce": true,
	"iptables": true, "firewall-cmd": true, "sudo": true,
}

// Preview summarises a script: its first lines and the commands it calls.
type Preview struct {
	Path       string
	Head       []string
	TotalLines int
	Statements int
	Functions  []string
	Commands   []string // distinct, in first-seen order
	Notable    []string
}

// Inspect parses the bash script at path. A script that does not parse is rejected.
func Inspect(ctx context.Context, path string, headLines int) (*Preview, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nyx_err.NewFilesystemError("cannot read installer "+path, err)
	}

	p := &Preview{Path: path}
	lines := splitLines(data)
	p.TotalLines = len(lines)
	for _, line := range lines[:max(0, min(headLines, len(lines)))] {
		p.Head = append(p.Head, clip(line))
	}

	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(bytes.NewReader(data), path)
	if err != nil {
		return nil, nyx_err.NewExpectedError(ctx, nyx_err.NewValidationError(
			"installer script does not parse as bash: "+err.Error(),
			"Verify the installer URL points at a shell script, not an HTML error page"))
	}
	p.Statements = len(file.Stmts)

	seen := map[string]bool{}
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.FuncDecl:
			p.Functions = append(p.Functions, n.Name.Value)
		case *syntax.CallExpr:
			if len(n.Args) == 0 {
				return true
			}
			name := wordString(n.Args[0])
			if name == "" || seen[name] {
				return true
			}
			seen[name] = true
			p.Commands = append(p.Commands, name)
			if notable[name] {
				p.Notable = append(p.Notable, name)
			}
		}
		return true
	})
	return p, nil
}

// splitLines has no line-length limit; installers often embed a long payload on one line.
func splitLines(data []byte) []string {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func clip(line string) string {
	if r := []rune(line); len(r) > maxHeadWidth {
		return string(r[:maxHeadWidth-3]) + "..."
	}
	return line
}

func wordString(w *syntax.Word) string {
	if lit := w.Lit(); lit != "" {
		return lit
	}
	var buf bytes.Buffer
	if err := syntax.NewPrinter().Print(&buf, w); err != nil {
		return ""
	}
	return buf.String()
}

// Render draws the preview for the operator.
func (p *Preview) Render() string {
	var body strings.Builder
	for _, line := range p.Head {
		body.WriteString(line + "\n")
	}
	if p.TotalLines > len(p.Head) {
		body.WriteString(ui.Muted(fmt.Sprintf("... %d more lines", p.TotalLines-len(p.Head))) + "\n")
	}

	summary := [][2]string{
		{"script", p.Path},
		{"lines", fmt.Sprint(p.TotalLines)},
		{"statements", fmt.Sprint(p.Statements)},
		{"commands", strings.Join(p.Commands, ", ")},
	}
	if len(p.Functions) > 0 {
		summary = append(summary, [2]string{"functions", strings.Join(p.Functions, ", ")})
	}
	if len(p.Notable) > 0 {
		summary = append(summary, [2]string{"review", ui.Warn(strings.Join(p.Notable, ", "))})
	}

	return ui.Box("Installer preview", body.String()) + "\n" + ui.KeyValues(summary)
}
