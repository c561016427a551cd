package names

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// checkSchema validates a YAML alias table against schema.cue: a list of
// closed objects whose alias and canonical are non-blank strings. Unknown
// keys such as a misspelled "canonical" are rejected.
func checkSchema(data []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Table"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("alias table schema: %w", err)
	}

	f, err := cueyaml.Extract("aliases.yaml", data)
	if err != nil {
		return fmt.Errorf("alias table schema: %w", err)
	}
	table := ctx.BuildFile(f)
	if err := schema.Unify(table).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("alias table schema: %w", err)
	}
	return nil
}
