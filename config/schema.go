package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/matteriben/hedera-services/errors"
)

// configSchema is the JSON schema every configuration file must satisfy
// before typed parsing. Durations are strings ("250ms"); scheduler types
// are restricted to the known variants.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "pool": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "defaultPoolMultiplier": {"type": "number", "minimum": 0},
        "defaultPoolConstant": {"type": "integer"}
      }
    },
    "intake": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "eventHasherUnhandledCapacity": {"type": "integer", "minimum": 1},
        "forceIgnorePcesSignatures": {"type": "boolean"},
        "validateInitialState": {"type": "boolean"}
      }
    },
    "heartbeats": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "eventCreationPeriod": {"type": "string"},
        "statusStateMachinePeriod": {"type": "string"},
        "roundDurabilityBufferPeriod": {"type": "string"},
        "stateGarbageCollectorPeriod": {"type": "string"}
      }
    },
    "node": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "id": {"type": "integer", "minimum": 0},
        "signatureThreshold": {"type": "integer", "minimum": 1},
        "eventsPerRound": {"type": "integer", "minimum": 1},
        "ancientWindowSize": {"type": "integer", "minimum": 1},
        "creationRate": {"type": "number", "minimum": 0},
        "observationPeriod": {"type": "string"}
      }
    },
    "diagnostics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "address": {"type": "string"}
      }
    },
    "ancientMode": {
      "type": "string",
      "enum": ["generation_threshold", "birth_round_threshold"]
    },
    "schedulers": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "type": {
            "type": "string",
            "enum": ["sequential", "concurrent", "direct", "direct_threadsafe", "no_op"]
          },
          "unhandledCapacity": {"type": "integer", "minimum": 0},
          "flushable": {"type": "boolean"},
          "squelchable": {"type": "boolean"}
        },
        "required": ["type"]
      }
    }
  }
}`

// ValidateSchema checks configuration bytes against the schema. YAML is
// converted to JSON for validation, so error paths reference the document
// structure.
func ValidateSchema(data []byte) error {
	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return errors.WrapInvalid(err, "config", "ValidateSchema", "unmarshal yaml")
	}
	if document == nil {
		// An empty file means all defaults.
		return nil
	}

	jsonBytes, err := json.Marshal(document)
	if err != nil {
		return errors.WrapInvalid(err, "config", "ValidateSchema", "convert to json")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(jsonBytes),
	)
	if err != nil {
		return errors.WrapInvalid(err, "config", "ValidateSchema", "run schema validation")
	}
	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}
		return errors.WrapInvalid(
			fmt.Errorf("%s", strings.Join(descriptions, "; ")),
			"config", "ValidateSchema", "schema violations")
	}
	return nil
}
