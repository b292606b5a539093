// Package utils holds small payload-hygiene helpers shared by the insight
// provider path and the config loader.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON errors in LLM output before
// unmarshaling: missing quotes around keys, single quotes, unclosed
// arrays/objects, trailing commas, markdown code fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// DecodeLenientJSON repairs and unmarshals in one step.
func DecodeLenientJSON(raw string, out interface{}) error {
	repaired, err := RepairJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("JSON_STRUCTURAL_ERROR: %v", err)
	}
	return nil
}

// ParseHJSONToStruct parses Human-friendly JSON (comments, unquoted keys,
// optional commas) directly into a Go struct. Used for hand-written config
// files.
func ParseHJSONToStruct(hjsonData []byte, out interface{}) error {
	if err := hjson.Unmarshal(hjsonData, out); err != nil {
		return fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	return nil
}
