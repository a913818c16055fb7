package settings

import (
	"encoding/json"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/invopop/jsonschema"
)

var addressType = reflect.TypeOf(common.Address{})

// Schema returns the JSON schema of the settings file
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == addressType {
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: "^0x[0-9a-fA-F]{40}$",
				}
			}
			return nil
		},
	}
	schema := r.Reflect(&Settings{})
	schema.Title = "Deployment settings"
	return json.MarshalIndent(schema, "", "  ")
}
