package schema

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var errMsgPrinter = message.NewPrinter(language.English)

// Failure describes one validation failure at a specific path within the
// validated value.
type Failure struct {
	Path     string
	Expected string
	Received string
	Message  string
}

// Validate checks value (already decoded into Go's any-tree shape, as
// produced by encoding/json.Unmarshal into an any) against s. It returns nil
// on success or a non-empty slice of Failure on rejection. Validate never
// calls the real tool; it is the single point of truth gating dispatch.
func Validate(s Schema, value any) ([]Failure, error) {
	doc := JSONDoc(s)
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := compiled.Validate(value); err != nil {
		return flatten(err), nil
	}
	return nil, nil
}

// ValidateJSON is a convenience wrapper over Validate that accepts the
// candidate argument as raw JSON bytes; empty input validates as null.
func ValidateJSON(s Schema, argsJSON []byte) ([]Failure, error) {
	var value any
	if len(argsJSON) == 0 {
		value = nil
	} else if err := json.Unmarshal(argsJSON, &value); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return Validate(s, value)
}

// flatten walks a jsonschema validation error tree (which may nest via
// Causes for anyOf/allOf branches) into a flat list of Failure records
// suitable for formatting into an agent-readable message.
func flatten(err error) []Failure {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Failure{{Message: err.Error()}}
	}
	var out []Failure
	var walk func(v *jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			out = append(out, Failure{
				Path:    instanceLocationString(v),
				Message: v.ErrorKind.LocalizedString(errMsgPrinter),
			})
			return
		}
		for _, c := range v.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}

func instanceLocationString(v *jsonschema.ValidationError) string {
	if len(v.InstanceLocation) == 0 {
		return "$"
	}
	path := "$"
	for _, seg := range v.InstanceLocation {
		path += "/" + seg
	}
	return path
}
