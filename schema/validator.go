// Package schema checks mviewer configuration documents against the JSON
// Schema generated from config.Config.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/grovetools/mviewer/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed mviewer.embedded.schema.json
var embeddedSchemaData []byte

const schemaURL = "mviewer.json"

// Validator validates configuration against the embedded schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(string(embeddedSchemaData))); err != nil {
		return nil, fmt.Errorf("failed to add embedded schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile embedded schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Violation is one failed constraint, located by its dotted config key.
type Violation struct {
	Key     string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Key, v.Message)
}

// Validate checks a decoded configuration document. A failure is a
// CONFIG_VALIDATION error listing every offending key; the keys are also
// attached as the "keys" detail.
func (v *Validator) Validate(configData interface{}) error {
	// yaml and toml decoders produce types the validator does not know
	jsonData, err := json.Marshal(configData)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode config for validation")
	}
	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to decode config for validation")
	}

	err = v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "configuration does not match schema")
	}

	violations := Violations(verr)
	lines := make([]string, 0, len(violations))
	keys := make([]string, 0, len(violations))
	for _, vi := range violations {
		lines = append(lines, "- "+vi.String())
		keys = append(keys, vi.Key)
	}
	return errors.New(errors.ErrCodeConfigValidation,
		"configuration does not match schema:\n"+strings.Join(lines, "\n")).
		WithDetail("keys", keys)
}

// Violations flattens a validation error into its leaf failures, sorted by
// key.
func Violations(err *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{Key: configKey(e.InstanceLocation), Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// configKey turns a JSON pointer such as /server/port into server.port.
func configKey(pointer string) string {
	key := strings.ReplaceAll(strings.TrimPrefix(pointer, "/"), "/", ".")
	if key == "" {
		return "(root)"
	}
	return key
}
