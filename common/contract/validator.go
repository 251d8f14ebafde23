package contract

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Schema resource names inside the embedded filesystem.
const (
	rawSchemaFile       = "schemas/raw_event_envelope.v0.1.schema.json"
	canonicalSchemaFile = "schemas/canonical_envelope.v0.1.schema.json"
	dlqSchemaFile       = "schemas/dead_letter_envelope.v1.schema.json"
)

// Validator checks envelopes against the embedded capability schemas. It is
// used at runtime boundaries and by fixture-based contract tests.
type Validator struct {
	raw       *jsonschema.Schema
	canonical *jsonschema.Schema
	dlq       *jsonschema.Schema
}

// NewValidator compiles the embedded schemas. Compilation failure means the
// binary ships broken contracts, so callers treat an error as fatal.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()

	for _, name := range []string{rawSchemaFile, canonicalSchemaFile, dlqSchemaFile} {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read embedded schema %s: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	v := &Validator{}
	var err error
	if v.raw, err = compiler.Compile(rawSchemaFile); err != nil {
		return nil, fmt.Errorf("compile raw envelope schema: %w", err)
	}
	if v.canonical, err = compiler.Compile(canonicalSchemaFile); err != nil {
		return nil, fmt.Errorf("compile canonical envelope schema: %w", err)
	}
	if v.dlq, err = compiler.Compile(dlqSchemaFile); err != nil {
		return nil, fmt.Errorf("compile dead-letter schema: %w", err)
	}
	return v, nil
}

// ValidateRaw checks a raw controller envelope.
func (v *Validator) ValidateRaw(envelope RawEventEnvelope) *StructuredError {
	return v.validate(v.raw, envelope, "raw envelope")
}

// ValidateCanonical checks a normalized envelope.
func (v *Validator) ValidateCanonical(envelope CanonicalEnvelope) *StructuredError {
	return v.validate(v.canonical, envelope, "canonical envelope")
}

// ValidateDeadLetter checks a dead-letter envelope.
func (v *Validator) ValidateDeadLetter(envelope DeadLetterEnvelope) *StructuredError {
	return v.validate(v.dlq, envelope, "dead-letter envelope")
}

// validate round-trips the typed envelope through JSON so the schema sees
// exactly the wire representation.
func (v *Validator) validate(schema *jsonschema.Schema, envelope interface{}, kind string) *StructuredError {
	data, err := json.Marshal(envelope)
	if err != nil {
		return &StructuredError{
			Code:    CodeSchemaValidation,
			Message: fmt.Sprintf("marshal %s: %v", kind, err),
		}
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return &StructuredError{
			Code:    CodeSchemaValidation,
			Message: fmt.Sprintf("unmarshal %s: %v", kind, err),
		}
	}

	if err := schema.Validate(instance); err != nil {
		serr := &StructuredError{
			Code:    CodeSchemaValidation,
			Message: fmt.Sprintf("%s failed schema validation", kind),
		}
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			serr.Details = map[string]interface{}{
				"violations": flattenCauses(verr),
			}
		}
		return serr
	}
	return nil
}

// flattenCauses collects leaf validation messages in schema order.
func flattenCauses(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		return []string{err.Error()}
	}
	var out []string
	for _, cause := range err.Causes {
		out = append(out, flattenCauses(cause)...)
	}
	return out
}
