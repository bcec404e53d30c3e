// ABOUTME: Positional argument binding for model-supplied action input.
// ABOUTME: Validates arity and types against a tool's declared parameters.

package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// BindArgs validates a positional input array against the tool's declared
// parameters and converts it to the named-argument object handlers take.
// Arity or type mismatches fail before the handler runs.
func BindArgs(def *Definition, input []json.RawMessage) (json.RawMessage, error) {
	if len(input) != len(def.Params) {
		return nil, fmt.Errorf("%s expects %d argument(s) (%s), got %d",
			def.Name, len(def.Params), signature(def), len(input))
	}

	args := make(map[string]any, len(def.Params))
	for i, param := range def.Params {
		value, err := coerce(param, input[i])
		if err != nil {
			return nil, fmt.Errorf("%s argument %d (%s): %w", def.Name, i+1, param.Name, err)
		}
		args[param.Name] = value
	}

	bound, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding bound arguments: %w", err)
	}
	return bound, nil
}

// coerce checks a raw positional value against the parameter type. Integers
// sent as decimal strings are accepted; anything else mismatched is rejected.
func coerce(param Param, raw json.RawMessage) (any, error) {
	switch param.Type {
	case "string":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected string, got %s", compact(raw))
		}
		return s, nil

	case "integer":
		var n int64
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
		return nil, fmt.Errorf("expected integer, got %s", compact(raw))

	default:
		return nil, fmt.Errorf("unsupported parameter type %q", param.Type)
	}
}

// signature renders a tool's parameter list for error messages.
func signature(def *Definition) string {
	s := ""
	for i, p := range def.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name + " " + p.Type
	}
	if s == "" {
		return "no arguments"
	}
	return s
}

func compact(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}
