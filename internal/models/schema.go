package models

import (
	"github.com/invopop/jsonschema"
)

// Schemas returns JSON Schemas for the request and response envelopes, keyed by name.
func Schemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	return map[string]*jsonschema.Schema{
		"request":  r.Reflect(&Request{}),
		"response": r.Reflect(&Response{}),
	}
}
