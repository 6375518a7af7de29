// pkg/nyx_err/wrap.go

package nyx_err

import (
	cerr "github.com/cockroachdb/errors"
)

func WrapValidationError(err error) error {
	return cerr.WithHint(cerr.WithStack(err), "validation failed")
}

func WrapPolicyError(err error) error {
	return cerr.WithHint(cerr.WithStack(err), "provisioning policy denied the plan")
}

// WrapStepError names the bootstrap step a failure came from.
func WrapStepError(step string, err error) error {
	if err == nil {
		return nil
	}
	return cerr.WithHintf(cerr.Wrapf(err, "step %s", step), "re-run after fixing %s; completed steps are idempotent", step)
}
