package agentcli

import "github.com/google/jsonschema-go/jsonschema"

// schemaFor reflects over the Args type parameter and produces the JSON
// Schema advertised to the CLI for a tool's input. Falls back to an
// unconstrained object schema if reflection fails (e.g. Args is an
// interface type with no static shape).
func schemaFor[Args any]() interface{} {
	schema, err := jsonschema.For[Args](nil)
	if err != nil {
		return map[string]interface{}{"type": "object"}
	}
	return schema
}
