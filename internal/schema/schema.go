// Package schema validates workflow files and merged-stream records
// against an embedded CUE schema.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

// Validator holds the compiled schema definitions. It is safe for
// sequential reuse across many documents; compile it once per run.
type Validator struct {
	record   cue.Value
	workflow cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v := &Validator{
		record:   root.LookupPath(cue.ParsePath("#Record")),
		workflow: root.LookupPath(cue.ParsePath("#Workflow")),
	}
	if !v.record.Exists() || !v.workflow.Exists() {
		return nil, fmt.Errorf("compile schema: missing #Record or #Workflow definition")
	}
	return v, nil
}

// ValidateRecord checks one merged-stream line.
func (v *Validator) ValidateRecord(data []byte) error {
	return validateAgainst(v.record, data)
}

// ValidateWorkflow checks one workflow definition file.
func (v *Validator) ValidateWorkflow(data []byte) error {
	return validateAgainst(v.workflow, data)
}

// validateAgainst parses data as JSON (a subset of CUE) and unifies it
// with the schema. Required fields missing from the document surface as
// non-concrete values, so validation runs in concrete mode.
func validateAgainst(schema cue.Value, data []byte) error {
	doc := schema.Context().CompileBytes(data)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if err := schema.Unify(doc).Validate(cue.Concrete(true), cue.Final()); err != nil {
		return err
	}
	return nil
}
