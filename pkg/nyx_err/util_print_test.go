package nyx_err

import (
	"bytes"
	"context"
	"errors"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestPrintErrorShowsHints(t *testing.T) {
	originalDebug := debugMode
	defer func() { debugMode = originalDebug }()

	stepErr := WrapStepError("firewall", cerr.WithHint(
		cerr.New("no supported firewall backend installed"),
		"Install firewalld (`dnf install -y firewalld`) or pass --skip-firewall"))

	tests := []struct {
		name        string
		debug       bool
		err         error
		contains    []string
		notContains []string
	}{
		{
			name:  "hints without debug",
			debug: false,
			err:   stepErr,
			contains: []string{
				"Error: nyx failed: step firewall: no supported firewall backend installed",
				"Hint: Install firewalld",
				"Hint: re-run after fixing firewall",
				"Tip: rerun with --debug",
			},
			notContains: []string{"runtime.", ".go:"},
		},
		{
			name:     "debug prints the chain",
			debug:    true,
			err:      stepErr,
			contains: []string{"Hint: Install firewalld", ".go:"},
			notContains: []string{
				"Tip: rerun",
			},
		},
		{
			name:        "expected errors are notices",
			debug:       false,
			err:         NewExpectedError(context.Background(), errors.New("must be root")),
			contains:    []string{"Notice: nyx failed: must be root"},
			notContains: []string{"Tip:", "Hint:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debugMode = tt.debug
			var buf bytes.Buffer
			fprintError(&buf, "nyx failed", tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}

	t.Run("nil prints nothing", func(t *testing.T) {
		var buf bytes.Buffer
		fprintError(&buf, "nyx failed", nil)
		assert.Empty(t, buf.String())
	})
}
