// Package validation provides the structural check for LLM extraction
// output. It is usable both as a request-time guard and as a standalone
// evaluation metric over candidate model outputs.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the outcome of a structural check: a binary score plus an
// itemized reason listing every violated condition, not just the first.
type Result struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Valid reports whether the candidate passed.
func (r Result) Valid() bool {
	return r.Score == 1.0
}

// CheckExtractionShape verifies that candidate is an object containing
// both required fields "add" and "rm", each an array of strings. Every
// failing condition is collected into the reason string.
func CheckExtractionShape(candidate any) Result {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return Result{Score: 0.0, Reason: "output is not a JSON object"}
	}

	var violations []string
	violations = append(violations, checkStringArrayField(obj, "add")...)
	violations = append(violations, checkStringArrayField(obj, "rm")...)

	if len(violations) > 0 {
		return Result{Score: 0.0, Reason: strings.Join(violations, "; ")}
	}
	return Result{Score: 1.0, Reason: "output matches the expected shape"}
}

// CheckExtractionJSON decodes raw JSON and applies CheckExtractionShape.
func CheckExtractionJSON(raw []byte) Result {
	var candidate any
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return Result{Score: 0.0, Reason: "output is not valid JSON"}
	}
	return CheckExtractionShape(candidate)
}

func checkStringArrayField(obj map[string]any, field string) []string {
	value, present := obj[field]
	if !present {
		return []string{fmt.Sprintf("missing required field %q", field)}
	}

	arr, ok := value.([]any)
	if !ok {
		return []string{fmt.Sprintf("field %q is not an array", field)}
	}

	var violations []string
	for i, elem := range arr {
		if _, ok := elem.(string); !ok {
			violations = append(violations, fmt.Sprintf("field %q element %d is not a string", field, i))
		}
	}
	return violations
}
