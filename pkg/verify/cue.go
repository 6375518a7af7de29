// pkg/verify/cue.go

package verify

import (
	"bytes"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

// ValidateYAMLWithCUE checks a YAML document against the definition at defPath
// (for example "#Config") in schemaSrc. Definitions are closed, so unknown keys fail.
func ValidateYAMLWithCUE(schemaSrc, defPath, yamlName string, yamlData []byte) error {
	if len(bytes.TrimSpace(yamlData)) == 0 {
		return nil
	}

	cueCtx := cuecontext.New()

	schema := cueCtx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("build cue schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath(defPath))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup %s in cue schema: %w", defPath, err)
	}

	file, err := yaml.Extract(yamlName, yamlData)
	if err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	input := cueCtx.BuildFile(file)
	if err := input.Err(); err != nil {
		return fmt.Errorf("build cue from yaml: %w", err)
	}

	if err := def.Unify(input).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("cue validation failed: %w", err)
	}
	return nil
}
