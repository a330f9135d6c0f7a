package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema is the structural contract of the persisted document. It is
// deliberately permissive about unknown keys; the typed unmarshal plus
// Normalize handle the rest. A document that fails this check takes the same
// path as an unparsable one.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "version": { "type": "integer" },
    "activeWorkspace": { "type": "string" },
    "workspaces": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "baseUrl": { "type": "string" },
          "baseId": { "type": "string" },
          "workspaceId": { "type": "string" },
          "headers": { "type": "object", "additionalProperties": { "type": "string" } },
          "aliases": { "type": "object", "additionalProperties": { "type": "string" } }
        }
      }
    },
    "settings": {
      "type": "object",
      "properties": {
        "timeoutMs": { "type": "number" },
        "retryCount": { "type": "number" },
        "retryDelay": { "type": "number" },
        "retryStatusCodes": {
          "type": "array",
          "items": { "type": "integer", "minimum": 100, "maximum": 599 }
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
	if err != nil {
		panic(fmt.Sprintf("config: bad embedded schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", doc); err != nil {
		panic(fmt.Sprintf("config: schema resource: %v", err))
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		panic(fmt.Sprintf("config: schema compile: %v", err))
	}
	return schema
}

// validateDocument checks raw document bytes against the structural schema.
func validateDocument(data []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := compiledSchema.Validate(instance); err != nil {
		return fmt.Errorf("config document failed schema check: %w", err)
	}
	return nil
}
