package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// createSchema checks the shape of a create request. Content is not
// validated: an empty body is a valid to-do.
const createSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["body"],
	"properties": {
		"body": {"type": "string"},
		"completed": {"type": "boolean"}
	}
}`

var createRequestSchema = jsonschema.MustCompileString("create-todo.json", createSchema)

// validateCreate returns a short description of the first violation.
func validateCreate(v any) error {
	err := createRequestSchema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	leaf := firstLeaf(ve)
	loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if loc == "" {
		return errors.New(leaf.Message)
	}
	return fmt.Errorf("%s: %s", loc, leaf.Message)
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
