package extraction

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sells-group/po-matcher/internal/model"
)

// responseSchema is the minimum shape the pipeline relies on: an array of
// objects, each with a non-empty "Request Item" string. Other fields are
// allowed and passed through untouched.
var responseSchema = map[string]any{
	"type":  "array",
	"items": map[string]any{
		"type":     "object",
		"required": []string{model.RequestItemField},
		"properties": map[string]any{
			model.RequestItemField: map[string]any{
				"type":      "string",
				"minLength": 1,
			},
		},
	},
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		b, err := json.Marshal(responseSchema)
		if err != nil {
			compileErr = eris.Wrap(err, "extraction: marshal schema")
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
			compileErr = eris.Wrap(err, "extraction: add schema")
			return
		}
		compiledSchema, compileErr = compiler.Compile("extraction.json")
		if compileErr != nil {
			compileErr = eris.Wrap(compileErr, "extraction: compile schema")
		}
	})
	return compiledSchema, compileErr
}

// ValidateResponse checks a raw extraction response body against the schema.
func ValidateResponse(data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return eris.Wrap(err, "extraction: response is not JSON")
	}
	if err := s.Validate(v); err != nil {
		return eris.Wrap(err, "extraction: response does not match schema")
	}
	return nil
}
