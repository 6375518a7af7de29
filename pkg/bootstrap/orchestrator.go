// pkg/bootstrap/orchestrator.go

package bootstrap

import (
	"fmt"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Orchestrator runs steps in order against one State.
type Orchestrator struct {
	Steps  []Step
	State  *State
	DryRun bool
}

const skippedAfterAbort = "not run: an earlier critical step failed"

// Run executes every step and returns the report. The error is the first
// critical failure, naming its step; best-effort failures only appear in the report.
func (o *Orchestrator) Run(rc *nyx_io.RuntimeContext) (*Report, error) {
	logger := otelzap.Ctx(rc.Ctx)

	report := &Report{RunID: o.State.Undo.RunID}
	rc.Attributes["run_id"] = report.RunID
	logger.Info("Starting provisioning run",
		zap.String("run_id", report.RunID),
		zap.Int("steps", len(o.Steps)),
		zap.Bool("dry_run", o.DryRun))

	var abort error
	for i, step := range o.Steps {
		if abort != nil && !step.Always {
			report.add(skipped(step, skippedAfterAbort))
			continue
		}
		if reason := o.skipReason(step); reason != "" {
			logger.Info("Skipping step", zap.String("step", step.Name), zap.String("reason", reason))
			report.add(skipped(step, reason))
			continue
		}

		res := o.runStep(rc, i, step)
		report.add(res)
		if res.Err == nil {
			continue
		}
		if step.Critical && abort == nil {
			logger.Error("Critical step failed, aborting run", zap.String("step", step.Name), zap.Error(res.Err))
			abort = nyx_err.WrapStepError(step.Name, res.Err)
			continue
		}
		logger.Warn("Best-effort step failed, continuing", zap.String("step", step.Name), zap.Error(res.Err))
	}

	rc.Attributes["failed_steps"] = report.failedNames()
	return report, abort
}

func (o *Orchestrator) skipReason(step Step) string {
	if o.DryRun && !step.ReadOnly {
		return "dry run: would " + step.Description
	}
	if step.SkipIf != nil {
		return step.SkipIf(o.State)
	}
	return ""
}

func (o *Orchestrator) runStep(rc *nyx_io.RuntimeContext, index int, step Step) StepResult {
	ctx, span := telemetry.Start(rc.Ctx, "step."+step.Name,
		attribute.Int("step.index", index+1),
		attribute.Bool("step.critical", step.Critical),
	)
	defer span.End()

	stepRC := *rc
	stepRC.Ctx = ctx
	logger := otelzap.Ctx(ctx)
	logger.Info("Step started",
		zap.String("step", step.Name),
		zap.String("description", step.Description),
		zap.Int("index", index+1),
		zap.Int("total", len(o.Steps)))

	start := time.Now()
	err := safeRun(&stepRC, o.State, step)
	res := StepResult{
		Name:        step.Name,
		Description: step.Description,
		Critical:    step.Critical,
		Status:      StatusOK,
		Err:         err,
		Duration:    time.Since(start),
	}
	if err != nil {
		res.Status = StatusFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		logger.Info("Step completed", zap.String("step", step.Name), zap.Duration("duration", res.Duration))
	}
	span.SetAttributes(attribute.String("step.status", string(res.Status)))
	return res
}

func safeRun(rc *nyx_io.RuntimeContext, s *State, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = nyx_err.NewInternalError(fmt.Sprintf("step %s panicked", step.Name),
				cerr.AssertionFailedf("panic: %v", r))
		}
	}()
	return step.Run(rc, s)
}

func skipped(step Step, reason string) StepResult {
	return StepResult{
		Name:        step.Name,
		Description: step.Description,
		Critical:    step.Critical,
		Status:      StatusSkipped,
		Reason:      reason,
	}
}
