// Package plan is the trust boundary between untrusted model output and a WorkoutPlan.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/schema"
)

// MalformedPlanError means the payload was not JSON, or did not match the plan schema.
type MalformedPlanError struct {
	Reason string
	Err    error
}

func (e *MalformedPlanError) Error() string {
	if e.Err == nil {
		return "malformed plan: " + e.Reason
	}
	return fmt.Sprintf("malformed plan: %s: %v", e.Reason, e.Err)
}

func (e *MalformedPlanError) Unwrap() error {
	return e.Err
}

// IsMalformedPlan reports whether err (or anything it wraps) is a *MalformedPlanError.
func IsMalformedPlan(err error) bool {
	var malformed *MalformedPlanError
	return errors.As(err, &malformed)
}

// fencePattern matches a payload wrapped in a markdown code block: ```json { ... } ```
var fencePattern = regexp.MustCompile("(?s)^```(?:json|JSON)?\\s*\\n?(.*?)\\s*```$")

// Parse turns raw service output into a WorkoutPlan.
// The text is decoded, checked against the canonical schema, and only then
// decoded into the typed plan. No semantic checks happen here.
func Parse(raw string) (*domain.WorkoutPlan, error) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, &MalformedPlanError{Reason: "empty payload"}
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedPlanError{Reason: "payload is not valid JSON", Err: err}
	}
	if dec.More() {
		return nil, &MalformedPlanError{Reason: "trailing data after JSON document"}
	}

	if err := schema.Check(doc, schema.WorkoutPlan()); err != nil {
		return nil, &MalformedPlanError{Reason: "payload does not match the workout plan schema", Err: err}
	}

	var p domain.WorkoutPlan
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		// Check passed, so this only happens on shapes Check does not model.
		return nil, &MalformedPlanError{Reason: "payload could not be decoded", Err: err}
	}
	// The typed decode matches keys differently from Check; validate what it actually produced.
	if err := checkDecoded(&p); err != nil {
		return nil, &MalformedPlanError{Reason: "decoded plan does not match the workout plan schema", Err: err}
	}
	return &p, nil
}

func checkDecoded(p *domain.WorkoutPlan) error {
	raw, err := Marshal(p)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Check(doc, schema.WorkoutPlan())
}

// Marshal serializes a plan with the canonical field names. Parse(Marshal(p)) equals p.
func Marshal(p *domain.WorkoutPlan) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func stripFence(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// DuplicateIDs lists exercise ids that appear more than once, in first-seen order.
// Parse accepts such plans; callers decide whether to care.
func DuplicateIDs(p *domain.WorkoutPlan) []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]int, len(p.Exercises))
	var dups []string
	for _, ex := range p.Exercises {
		seen[ex.ID]++
		if seen[ex.ID] == 2 {
			dups = append(dups, ex.ID)
		}
	}
	return dups
}
