// pkg/bootstrap/report.go

package bootstrap

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/ui"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxDetail = 72

// Report is the outcome of every step in a run, in order.
type Report struct {
	RunID   string
	Results []StepResult
}

func (r *Report) add(res StepResult) {
	r.Results = append(r.Results, res)
}

// Result returns the outcome of the named step.
func (r *Report) Result(name string) (StepResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return StepResult{}, false
}

// Failed lists the steps that ran and failed.
func (r *Report) Failed() []StepResult {
	var out []StepResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) failedNames() string {
	names := make([]string, 0)
	for _, res := range r.Failed() {
		names = append(names, res.Name)
	}
	return strings.Join(names, ",")
}

// Render writes the summary table.
func (r *Report) Render(w io.Writer) error {
	title := cases.Title(language.English)

	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		kind := "best-effort"
		if res.Critical {
			kind = "critical"
		}
		duration := ""
		if res.Status != StatusSkipped {
			duration = res.Duration.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			title.String(strings.ReplaceAll(res.Name, "-", " ")),
			kind,
			ui.Status(string(res.Status)),
			duration,
			detail(res),
		})
	}

	heading := "Provisioning summary"
	if id := r.RunID; id != "" {
		heading += " " + ui.Muted("("+shortID(id)+")")
	}
	_, err := fmt.Fprintln(w, ui.Title(heading)+"\n"+ui.Table(
		[]string{"Step", "Kind", "Status", "Duration", "Detail"}, rows))
	return err
}

func detail(res StepResult) string {
	text := res.Reason
	if res.Err != nil {
		text = res.Err.Error()
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if r := []rune(text); len(r) > maxDetail {
		text = string(r[:maxDetail-3]) + "..."
	}
	return text
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
