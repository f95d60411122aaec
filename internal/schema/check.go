package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// ViolationError describes the first place a decoded document breaks the schema.
type ViolationError struct {
	Path    string // e.g. "exercises[2].instructions"
	Problem string
}

func (e *ViolationError) Error() string {
	if e.Path == "" {
		return e.Problem
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Problem)
}

// Check walks a document decoded by encoding/json (maps, slices, strings,
// numbers as float64 or json.Number, bools) and verifies it against s.
// Required properties must be present and non-null; required strings must not be blank.
// Properties the schema does not mention are ignored, unless they differ from a
// declared property only by case: encoding/json folds case when decoding into
// structs, so such a key could replace a checked value.
func Check(value any, s *genai.Schema) error {
	return check(value, s, "")
}

func check(value any, s *genai.Schema, path string) error {
	if s == nil {
		return nil
	}

	switch s.Type {
	case genai.TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return violation(path, "expected an object, got %s", describe(value))
		}
		for _, name := range s.Required {
			v, present := obj[name]
			if !present || v == nil {
				return violation(join(path, name), "required field is missing")
			}
			if str, isString := v.(string); isString && strings.TrimSpace(str) == "" {
				return violation(join(path, name), "required field is empty")
			}
		}
		if key := caseVariantKey(obj, s); key != "" {
			return violation(join(path, key), "key differs from a schema field only by case")
		}
		for _, name := range propertyNames(s) {
			prop := s.Properties[name]
			v, present := obj[name]
			if !present || v == nil {
				continue
			}
			if err := check(v, prop, join(path, name)); err != nil {
				return err
			}
		}

	case genai.TypeArray:
		items, ok := value.([]any)
		if !ok {
			return violation(path, "expected an array, got %s", describe(value))
		}
		for i, item := range items {
			if err := check(item, s.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case genai.TypeString:
		if _, ok := value.(string); !ok {
			return violation(path, "expected a string, got %s", describe(value))
		}

	case genai.TypeInteger, genai.TypeNumber:
		switch value.(type) {
		case float64, json.Number:
		default:
			return violation(path, "expected a number, got %s", describe(value))
		}

	case genai.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return violation(path, "expected a boolean, got %s", describe(value))
		}
	}
	return nil
}

// propertyNames lists properties in declared order so the reported violation is stable.
func propertyNames(s *genai.Schema) []string {
	names := make([]string, 0, len(s.Properties))
	seen := make(map[string]bool, len(s.Properties))
	for _, name := range s.PropertyOrdering {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// caseVariantKey returns the first (sorted) key of obj that is not a declared
// property but folds to one.
func caseVariantKey(obj map[string]any, s *genai.Schema) string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		if _, declared := s.Properties[key]; !declared {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		for name := range s.Properties {
			if strings.EqualFold(key, name) {
				return key
			}
		}
	}
	return ""
}

func violation(path, format string, args ...any) error {
	return &ViolationError{Path: path, Problem: fmt.Sprintf(format, args...)}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64, json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
