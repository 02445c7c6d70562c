// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"math"
	"slices"
)

// suppliedName identifies a data set that didn't come from a file.
const suppliedName = "[config data]"

// Data is a raw or validated configuration data set keyed by schema key.
// Keys the schema doesn't know are carried along but never consulted.
type Data map[string]any

// String identifies a data set handed to Resolve directly instead of being
// read from a file. It stands in for the file name in messages.
func (d Data) String() string {
	return suppliedName
}

// Clone returns a copy of d that shares no lists with it.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	c := make(Data, len(d))
	for k, v := range d {
		c[k] = cloneValue(v)
	}
	return c
}

// Merge overlays raw on the schema defaults and validates the result.
//
// With reset every schema key takes its default. Otherwise a key that is
// absent or null takes its default and a key holding a value of the wrong
// kind is an *InvalidValueError naming filename. Integer values are
// normalized to int. List elements are kept as they are, unchecked, so a
// saved file round-trips them. raw is never modified.
func Merge(raw Data, schema Schema, reset bool, filename string) (Data, error) {
	out := make(Data, len(raw)+len(schema.entries))
	for k, v := range raw {
		if _, known := schema.Lookup(k); !known {
			out[k] = cloneValue(v)
		}
	}

	for _, e := range schema.entries {
		v, present := raw[e.Key]
		if reset || !present || v == nil {
			out[e.Key] = e.DefaultValue()
			continue
		}

		if e.Kind == KindStringList {
			if !isList(v) {
				return nil, &InvalidValueError{File: filename, Key: e.Key, Expected: KindStringList, Actual: kindOf(v)}
			}
			out[e.Key] = cloneValue(v)
			continue
		}

		norm, ok := coerce(e.Kind, v)
		if !ok {
			return nil, &InvalidValueError{File: filename, Key: e.Key, Expected: e.Kind, Actual: kindOf(v)}
		}
		out[e.Key] = norm
	}
	return out, nil
}

// coerce returns v as a value of kind k, if it is one.
func coerce(k Kind, v any) (any, bool) {
	switch k {
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindBoolean:
		b, ok := v.(bool)
		return b, ok
	case KindInteger:
		return toInt(v)
	default:
		return nil, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case float32:
		return toInt(float64(n))
	default:
		return 0, false
	}
}

func isList(v any) bool {
	switch v.(type) {
	case []string, []any:
		return true
	default:
		return false
	}
}

// toStrings returns the elements of a list value as text. Anything that
// isn't a list yields an empty slice.
func toStrings(v any) []string {
	switch l := v.(type) {
	case []string:
		return slices.Clone(l)
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			if s, ok := e.(string); ok {
				out[i] = s
			} else {
				out[i] = fmt.Sprint(e)
			}
		}
		return out
	default:
		return []string{}
	}
}

// kindOf names the type of a raw value the way validation messages do.
func kindOf(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int32, int64:
		return "integer"
	case float32, float64:
		if _, ok := toInt(n); ok {
			return "integer"
		}
		return "number"
	case []string, []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func cloneValue(v any) any {
	switch l := v.(type) {
	case []string:
		return slices.Clone(l)
	case []any:
		return slices.Clone(l)
	default:
		return v
	}
}
