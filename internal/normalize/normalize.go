// Package normalize turns free-form model completions into UIDocuments.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/extract"
	"github.com/Jrygg01/FrameForge/internal/llm"
	"github.com/Jrygg01/FrameForge/internal/llmutil"
)

// documentSchema accepts an object with string html (non-empty) and css,
// and an optional string js. Extra keys are ignored.
const documentSchema = `{
  "type": "object",
  "required": ["html", "css"],
  "properties": {
    "html": {"type": "string", "minLength": 1},
    "css":  {"type": "string"},
    "js":   {"type": "string"}
  }
}`

var schema = mustSchema(documentSchema)

func mustSchema(s string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("normalize: compile document schema: %v", err))
	}
	return compiled
}

// Normalize parses raw completion text into a UIDocument. It tries the text
// as JSON, then strips code fences and tries again, then falls back to the
// first balanced JSON object inside it. Failures are MalformedOutput errors
// carrying the last parser error.
func Normalize(raw string) (core.UIDocument, error) {
	if doc, err := decodeDocument(strings.TrimSpace(raw)); err == nil {
		return doc, nil
	}
	stripped := extract.StripFences(raw)
	if stripped == "" {
		return core.UIDocument{}, core.MalformedError("empty completion", nil)
	}

	doc, directErr := decodeDocument(stripped)
	if directErr == nil {
		return doc, nil
	}

	candidate, ok := extract.JSONObject(stripped)
	if !ok {
		return core.UIDocument{}, core.MalformedError("no JSON object found in completion", directErr)
	}
	if candidate == stripped {
		return core.UIDocument{}, core.MalformedError(directErr.Error(), directErr)
	}
	doc, err := decodeDocument(candidate)
	if err != nil {
		return core.UIDocument{}, core.MalformedError(err.Error(), err)
	}
	return doc, nil
}

// FromResult normalizes a completion result. Refusals, truncation and
// transport failures are reported as their own kinds and never parsed.
func FromResult(result llm.CompletionResult, budget int, knob string) (core.UIDocument, error) {
	if err := llmutil.ResultError(result, budget, knob); err != nil {
		return core.UIDocument{}, err
	}
	return Normalize(result.Text)
}

func decodeDocument(text string) (core.UIDocument, error) {
	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return core.UIDocument{}, fmt.Errorf("parse json: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(probe))
	if err != nil {
		return core.UIDocument{}, fmt.Errorf("validate json: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return core.UIDocument{}, fmt.Errorf("schema validation errors: %s", strings.Join(problems, "; "))
	}
	var doc core.UIDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return core.UIDocument{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
