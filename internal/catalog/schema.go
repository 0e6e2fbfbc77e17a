package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const resourceSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "id":            {"type": "integer"},
    "type":          {"enum": ["YouTube", "PDF", "QuestionPaper"]},
    "grade":         {"type": "string", "minLength": 1},
    "exam":          {"type": "string", "minLength": 1},
    "subject":       {"type": "string", "minLength": 1},
    "topic":         {"type": "string", "minLength": 1},
    "difficulty":    {"enum": ["Easy", "Medium", "Hard"]},
    "url":           {"type": "string", "minLength": 1},
    "solutions_url": {"type": ["string", "null"]},
    "description":   {"type": ["string", "null"]}
  },
  "required": ["type", "grade", "exam", "subject", "topic", "difficulty", "url"],
  "additionalProperties": false
}`

const weightageSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "grade":     {"type": "string", "minLength": 1},
    "exam":      {"type": "string", "minLength": 1},
    "subject":   {"type": "string", "minLength": 1},
    "topic":     {"type": "string", "minLength": 1},
    "weightage": {"type": "number", "minimum": 0, "maximum": 100}
  },
  "required": ["grade", "exam", "subject", "topic", "weightage"],
  "additionalProperties": false
}`

var (
	compiledResourceSchema  = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compile(resourceSchema) })
	compiledWeightageSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compile(weightageSchema) })
)

// ValidationError lists every rule a payload broke.
type ValidationError struct {
	Kind     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(e.Problems, "; "))
}

// ValidateResourceJSON checks a raw resource payload.
func ValidateResourceJSON(data []byte) error {
	return validate("resource", compiledResourceSchema, data)
}

// ValidateWeightageJSON checks a raw weightage payload.
func ValidateWeightageJSON(data []byte) error {
	return validate("weightage", compiledWeightageSchema, data)
}

// ValidateResource checks r against the same rules as ValidateResourceJSON.
func ValidateResource(r Resource) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal resource: %w", err)
	}
	return ValidateResourceJSON(data)
}

// ValidateWeightage checks w against the same rules as ValidateWeightageJSON.
func ValidateWeightage(w Weightage) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal weightage: %w", err)
	}
	return ValidateWeightageJSON(data)
}

func validate(kind string, schemaFn func() (*gojsonschema.Schema, error), data []byte) error {
	schema, err := schemaFn()
	if err != nil {
		return fmt.Errorf("compile %s schema: %w", kind, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Kind: kind, Problems: []string{"body is not valid JSON"}}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Kind: kind, Problems: problems}
}

func compile(schema string) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
}
