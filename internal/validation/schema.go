// Package validation checks serialized editor payloads against the document
// JSON Schema before they are decoded into a page tree.
package validation

import (
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrPayloadInvalid is the sentinel wrapped by every schema validation failure.
var ErrPayloadInvalid = errors.New("validation: payload invalid")

// documentSchema describes the persisted editor payload: a root object, an
// ordered content list of node objects, and nested zone contents keyed by
// "<containerID>:<zoneName>".
const documentSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["content"],
	"properties": {
		"root": {"type": "object"},
		"content": {"$ref": "#/$defs/nodeList"},
		"zones": {
			"type": "object",
			"additionalProperties": {"$ref": "#/$defs/nodeList"}
		}
	},
	"$defs": {
		"nodeList": {
			"type": "array",
			"items": {"$ref": "#/$defs/node"}
		},
		"node": {
			"type": "object",
			"required": ["type", "props"],
			"properties": {
				"type": {"type": "string", "minLength": 1},
				"props": {
					"type": "object",
					"required": ["id"],
					"properties": {
						"id": {"type": "string", "minLength": 1}
					}
				}
			}
		}
	}
}`

var compiledDocumentSchema = jsonschema.MustCompileString("pagebuilder://schemas/document.json", documentSchema)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrPayloadInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrPayloadInvalid
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// ValidateDocumentPayload checks a serialized document against the payload
// schema. The payload must be built from plain JSON types.
func ValidateDocumentPayload(payload map[string]any) error {
	if payload == nil {
		return &PayloadValidationError{Issues: []ValidationIssue{{Message: "payload required"}}}
	}
	if err := compiledDocumentSchema.Validate(any(payload)); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &PayloadValidationError{Issues: collectValidationIssues(validationErr), Cause: err}
		}
		return &PayloadValidationError{Cause: err}
	}
	return nil
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
