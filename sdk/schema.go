package guide

import (
	"reflect"
	"strings"

	"github.com/namma-guide/guide-go/pkg/live/protocol"
)

// GenerateSchema generates a function parameter schema from a Go type.
// It supports struct tags:
//   - json:"name"        - field name in JSON
//   - desc:"description" - field description
//   - enum:"a,b,c"       - enum values
func GenerateSchema(t reflect.Type) *protocol.Schema {
	if t == nil {
		return &protocol.Schema{}
	}
	return schemaFromType(t)
}

// SchemaFromStruct generates a parameter schema from a struct type.
func SchemaFromStruct[T any]() *protocol.Schema {
	var zero T
	return GenerateSchema(reflect.TypeOf(zero))
}

func schemaFromType(t reflect.Type) *protocol.Schema {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return objectSchema(t)
	case reflect.Slice, reflect.Array:
		return &protocol.Schema{
			Type:  "array",
			Items: schemaFromType(t.Elem()),
		}
	case reflect.String:
		return &protocol.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &protocol.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &protocol.Schema{Type: "number"}
	case reflect.Bool:
		return &protocol.Schema{Type: "boolean"}
	case reflect.Map:
		return &protocol.Schema{Type: "object"}
	case reflect.Interface:
		return &protocol.Schema{}
	default:
		return &protocol.Schema{Type: "string"} // Fallback
	}
}

func objectSchema(t reflect.Type) *protocol.Schema {
	schema := &protocol.Schema{
		Type:       "object",
		Properties: make(map[string]protocol.Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		jsonName := field.Name
		omitempty := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				jsonName = parts[0]
			}
			for _, part := range parts[1:] {
				if part == "omitempty" {
					omitempty = true
					break
				}
			}
		}

		fieldSchema := schemaFromType(field.Type)
		if desc := field.Tag.Get("desc"); desc != "" {
			fieldSchema.Description = desc
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			fieldSchema.Enum = parseEnumTag(enum)
		}
		schema.Properties[jsonName] = *fieldSchema

		required := field.Type.Kind() != reflect.Ptr && !omitempty
		if required {
			schema.Required = append(schema.Required, jsonName)
		}
	}

	return schema
}

func parseEnumTag(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
