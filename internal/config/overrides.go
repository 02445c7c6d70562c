// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
)

type (
	// Warning is a non-fatal problem found while applying overrides.
	Warning struct {
		Key     string
		Message string
	}

	// Override records a --<key> value that replaced a data value.
	Override struct {
		Key   string
		Value any
	}
)

func (w Warning) String() string {
	return w.Message
}

// ApplyOverrides replaces data values with same-named command line flags.
//
// "null" restores the schema default. String keys take the value as is,
// integer keys must parse as a whole number and boolean keys are false only
// for "false". List keys can't be set from the command line and produce a
// Warning instead. data is not modified.
func ApplyOverrides(data Data, schema Schema, flags Lookup, filename string, logger *log.Logger) (Data, []Override, []Warning, error) {
	logger = orDiscard(logger)
	out := data.Clone()
	if out == nil {
		out = Data{}
	}

	var (
		applied  []Override
		warnings []Warning
	)
	for _, e := range schema.entries {
		raw, ok := flags.Lookup(e.Key)
		if !ok {
			continue
		}

		var value any
		switch {
		case raw == NullToken:
			value = e.DefaultValue()
		case e.Kind == KindString:
			value = raw
		case e.Kind == KindInteger:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, nil, nil, &InvalidValueError{File: "command line", Key: e.Key, Expected: KindInteger, Actual: kindOf(raw)}
			}
			value = n
		case e.Kind == KindBoolean:
			value = truthy(raw)
		default:
			w := Warning{
				Key:     e.Key,
				Message: fmt.Sprintf("cannot set key %q of type %s from the command line, modify %s directly", e.Key, e.Kind, filename),
			}
			logger.Warn(w.Message)
			warnings = append(warnings, w)
			continue
		}

		out[e.Key] = value
		applied = append(applied, Override{Key: e.Key, Value: value})
		logger.Info("set config value", "key", e.Key, "value", value)
	}
	return out, applied, warnings, nil
}
