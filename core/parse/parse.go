package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/discernus/discernus-sub017/core/extract"
)

// ParseStringAs parses model output into T.
// Primitive kinds (string, bool, int, uint, float) are converted directly
// from the trimmed content, falling back to a schema-wrapped
// {"type": ..., "value": ...} object. Strings are returned untouched unless
// the content is such a wrapper. Every other kind is extracted with the
// default [extract.Extractor] and decoded by [ParseResultAs].
//
// Example usage:
//
//	type Verdict struct {
//	    Label string  `json:"label"`
//	    Score float64 `json:"score"`
//	}
//
//	v, err := ParseStringAs[Verdict]("```json\n{label: 'populist', score: 0.7,}\n```")
//	n, err := ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := tryUnwrapPrimitive(content); err == nil {
				target.SetString(unwrapped)
				return result, nil
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool:
		err := parsePrimitive(content, func(s string) error {
			val, err := strconv.ParseBool(s)
			if err == nil {
				target.SetBool(val)
			}
			return err
		})
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		return result, nil

	case reflect.Float32, reflect.Float64:
		err := parsePrimitive(content, func(s string) error {
			val, err := strconv.ParseFloat(s, 64)
			if err == nil {
				target.SetFloat(val)
			}
			return err
		})
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		err := parsePrimitive(content, func(s string) error {
			val, err := strconv.ParseInt(s, 10, target.Type().Bits())
			if err == nil {
				target.SetInt(val)
			}
			return err
		})
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		err := parsePrimitive(content, func(s string) error {
			val, err := strconv.ParseUint(s, 10, target.Type().Bits())
			if err == nil {
				target.SetUint(val)
			}
			return err
		})
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		return result, nil

	default:
		return ParseResultAs[T](extract.Extract(content))
	}
}

// parsePrimitive applies set to the trimmed content and, if that fails, to
// the value inside a schema wrapper. set only writes the target on success.
func parsePrimitive(content string, set func(string) error) error {
	err := set(strings.TrimSpace(content))
	if err == nil {
		return nil
	}
	if unwrapped, unwrapErr := tryUnwrapPrimitive(content); unwrapErr == nil {
		if set(unwrapped) == nil {
			return nil
		}
	}
	return err
}

// ParseResultAs decodes the value of a successful extraction into T. A
// failed extraction returns res.Err().
func ParseResultAs[T any](res extract.Result) (T, error) {
	if err := res.Err(); err != nil {
		var zero T
		return zero, err
	}
	return ParseValueAs[T](res.Value)
}

// ParseValueAs converts a generic JSON value into T by re-encoding it. If
// the plain decode fails, schema wrappers are stripped and it is retried.
func ParseValueAs[T any](value any) (T, error) {
	var result T

	encoded, err := json.Marshal(value)
	if err != nil {
		return result, fmt.Errorf("failed to encode value: %w", err)
	}
	err = json.Unmarshal(encoded, &result)
	if err == nil {
		return result, nil
	}

	unwrapped, unwrapErr := json.Marshal(recursiveUnwrap(value))
	if unwrapErr == nil {
		var retry T
		if json.Unmarshal(unwrapped, &retry) == nil {
			return retry, nil
		}
	}
	return result, fmt.Errorf("failed to decode value as %T: %w", result, err)
}

// ExtractAs extracts raw with ex and decodes the payload into T. The Result
// is returned in every case so that callers can log or store the attempts.
func ExtractAs[T any](ex *extract.Extractor, raw string) (T, extract.Result, error) {
	res := ex.Extract(raw)
	value, err := ParseResultAs[T](res)
	return value, res, err
}

// tryUnwrapPrimitive returns the string form of the value inside a
// {"type": ..., "value": ...} object.
func tryUnwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &data); err != nil {
		return "", err
	}

	value, ok := schemaWrapped(data)
	if !ok {
		return "", fmt.Errorf("not a schema-wrapped value")
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprintf("%v", v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// schemaWrapped reports whether m is exactly {"type": ..., "value": ...}.
func schemaWrapped(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}

// recursiveUnwrap replaces every schema wrapper in data with its value.
//
// Example input:
//
//	{"name": {"type": "string", "value": "John"}, "age": {"type": "integer", "value": 30}}
//
// Example output:
//
//	{"name": "John", "age": 30}
func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := schemaWrapped(v); ok {
			return recursiveUnwrap(value)
		}
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = recursiveUnwrap(val)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = recursiveUnwrap(val)
		}
		return result

	default:
		return data
	}
}
