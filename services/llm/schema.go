package llm

import (
	"github.com/invopop/jsonschema"
)

// ResponseSchema carries one structured-output contract in both of the
// shapes our providers consume: OpenAI-style function parameters
// (a plain JSON-schema map) and Anthropic tool input properties.
type ResponseSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
	Properties  any
}

// ReflectProperties builds Anthropic tool input properties from a Go struct
// type using its json/jsonschema tags.
func ReflectProperties[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema.Properties
}
