package utils

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ToYAMLSchema converts a struct decoded from YAML to a JSON schema with all
// definitions inlined. Properties are named after the yaml tags and only fields
// tagged jsonschema:"required" are required. time.Duration fields are duration
// strings such as "10s".
func ToYAMLSchema[T any](t T) (string, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               "yaml",
		Mapper: func(rt reflect.Type) *jsonschema.Schema {
			if rt == durationType {
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
					Description: "Duration such as 500ms, 10s or 1m30s",
				}
			}

			return nil
		},
	}
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// SecretFields returns the yaml names of the fields tagged `secret:"true"`,
// walking nested structs with a dotted path (e.g. "telegram.bot_token").
func SecretFields(v any) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	return secretFields(t, "")
}

func secretFields(t reflect.Type, prefix string) []string {
	var fields []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if name == "" || name == "-" {
			name = strings.ToLower(field.Name)
		}

		if prefix != "" {
			name = prefix + "." + name
		}

		if field.Tag.Get("secret") == "true" {
			fields = append(fields, name)

			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			fields = append(fields, secretFields(ft, name)...)
		}
	}

	return fields
}
