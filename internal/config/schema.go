package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ConfigSchema is the JSON Schema for config file validation.
const ConfigSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "server": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "host": { "type": "string" },
        "port": { "type": "integer", "minimum": 1, "maximum": 65535 }
      }
    },
    "provider": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "kind": { "type": "string", "enum": ["azure-openai", "anthropic"] },
        "api_key": { "type": "string" },
        "endpoint": { "type": "string" },
        "api_version": { "type": "string" },
        "deployment": { "type": "string" },
        "model": { "type": "string" },
        "temperature": { "type": "number", "minimum": 0, "maximum": 2 },
        "max_tokens": { "type": "integer", "minimum": 1 }
      }
    },
    "prompt": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "system_prompt_file": { "type": "string" }
      }
    },
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": { "type": "string", "enum": ["debug", "info", "warn", "error"] },
        "file": { "type": "string" },
        "console": { "type": "boolean" },
        "pretty": { "type": "boolean" }
      }
    },
    "maintenance": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "stats_interval": { "type": "string" }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(ConfigSchema)

// ValidateDocument validates a raw config document against the schema.
func ValidateDocument(data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("config does not match schema: %s", strings.Join(problems, "; "))
}
