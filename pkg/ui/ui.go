// Package ui renders operator-facing output: boxes, tables and status marks.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accent = lipgloss.Color("39")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	TitleStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	OKStyle    = lipgloss.NewStyle().Foreground(green)
	FailStyle  = lipgloss.NewStyle().Foreground(red)
	WarnStyle  = lipgloss.NewStyle().Foreground(yellow)
	MutedStyle = lipgloss.NewStyle().Foreground(dim)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(faint).
			Padding(0, 1)
)

func Title(s string) string { return TitleStyle.Render(s) }
func Muted(s string) string { return MutedStyle.Render(s) }
func Warn(s string) string  { return WarnStyle.Render(s) }

// Status renders a step outcome mark.
func Status(status string) string {
	switch status {
	case "ok":
		return OKStyle.Render("✓ ok")
	case "failed":
		return FailStyle.Render("✗ failed")
	case "skipped":
		return MutedStyle.Render("- skipped")
	default:
		return status
	}
}

// Box frames body under a title.
func Box(title, body string) string {
	return Title(title) + "\n" + boxStyle.Render(strings.TrimRight(body, "\n"))
}

// KeyValues renders aligned "key:  value" lines with a trailing newline.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var sb strings.Builder
	for _, p := range pairs {
		label := fmt.Sprintf("%-*s", width+1, p[0]+":")
		sb.WriteString(MutedStyle.Render(label) + " " + p[1] + "\n")
	}
	return sb.String()
}

// Table renders rows under headers with rounded borders.
func Table(headers []string, rows [][]string) string {
	header := lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
