// pkg/bootstrap/step.go
//
// A provisioning run is a fixed, ordered list of steps over shared state.
// Critical steps abort the run; best-effort steps log and continue.

package bootstrap

import (
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/network"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/undo"
)

// Status is the outcome of one step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Step is one stage of the provisioning procedure.
type Step struct {
	Name        string
	Description string
	Critical    bool
	// ReadOnly steps still run under dry-run.
	ReadOnly bool
	// Always steps run even after a critical failure.
	Always bool
	// SkipIf returns a non-empty reason to skip the step.
	SkipIf func(s *State) string
	Run    func(rc *nyx_io.RuntimeContext, s *State) error
}

// State is threaded through every step of a run.
type State struct {
	Config *config.Config
	Undo   *undo.Log

	Interface    *network.Interface // set by detect-interface
	LicensePath  string             // set by license
	InstallerRan bool
	Hints        []string
	LogPath      string
}

// StepResult records what happened to one step.
type StepResult struct {
	Name        string
	Description string
	Critical    bool
	Status      Status
	Reason      string // why the step was skipped
	Err         error
	Duration    time.Duration
}
