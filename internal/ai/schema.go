package ai

import (
	"encoding/json"
	"fmt"

	"stock-orders/internal/core"

	"github.com/invopop/jsonschema"
)

// DraftSchema reflects the JSON Schema of core.DraftDocument. Every property
// is required and no additional properties are allowed, as strict structured
// output demands.
func DraftSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&core.DraftDocument{})
}

// draftSchemaMap is DraftSchema as the generic map the Responses API takes.
func draftSchemaMap() (map[string]any, error) {
	schemaJSON, err := json.Marshal(DraftSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	// The Responses API rejects the $schema and $id keywords.
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")
	return schemaMap, nil
}
