// pkg/policy/policy.go

package policy

import (
	"context"
	_ "embed"
	"os"
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Query is the rule every provisioning policy module contributes to.
const Query = "data.nyx.provision.deny"

//go:embed provision.rego
var builtin string

// Evaluate runs the built-in provisioning policy, plus extraFile when set,
// against input and returns the sorted deny messages.
// Extra modules must declare `package nyx.provision` to add deny rules.
func Evaluate(ctx context.Context, input map[string]interface{}, extraFile string) ([]string, error) {
	ctx, span := telemetry.Start(ctx, "policy.Evaluate",
		attribute.String("extra_file", extraFile),
	)
	defer span.End()

	opts := []func(*rego.Rego){
		rego.Query(Query),
		rego.Module("provision.rego", builtin),
	}
	if extraFile != "" {
		src, err := os.ReadFile(extraFile)
		if err != nil {
			return nil, nyx_err.NewFilesystemError("failed to read policy file "+extraFile, err)
		}
		opts = append(opts, rego.Module(extraFile, string(src)))
	}

	pq, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, nyx_err.NewValidationError("failed to compile policy: "+err.Error(),
			"Custom policies must use rego v1 syntax and `package nyx.provision`")
	}

	rs, err := pq.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, cerr.Wrap(err, "policy evaluation failed")
	}

	var denials []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			set, ok := expr.Value.([]interface{})
			if !ok {
				return nil, cerr.Newf("policy returned %T, want a set of strings", expr.Value)
			}
			for _, m := range set {
				if s, ok := m.(string); ok {
					denials = append(denials, s)
				}
			}
		}
	}
	sort.Strings(denials)
	return denials, nil
}

// Enforce fails with a validation error when the policy denies the input.
func Enforce(ctx context.Context, input map[string]interface{}, extraFile string) error {
	log := otelzap.Ctx(ctx)

	denials, err := Evaluate(ctx, input, extraFile)
	if err != nil {
		return err
	}
	if len(denials) == 0 {
		log.Debug("Provisioning policy allowed the plan")
		return nil
	}

	for _, d := range denials {
		log.Warn("Policy denial", zap.String("reason", d))
	}
	return nyx_err.WrapPolicyError(nyx_err.NewValidationError(
		"provisioning policy denied the plan: "+strings.Join(denials, "; "),
		"Adjust the configuration or pass --allow-insecure-download where appropriate",
	))
}
