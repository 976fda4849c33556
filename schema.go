// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package configdoctor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cast"
)

// Schema validates a configuration document. Implementations must not
// modify the document.
type Schema interface {
	Validate(doc map[string]any) error
}

// SchemaFunc adapts an ordinary function to a [Schema].
type SchemaFunc func(doc map[string]any) error

// Validate calls f(doc).
func (f SchemaFunc) Validate(doc map[string]any) error {
	return f(doc)
}

// Validator is an interface for model structs that can validate their own configuration.
// It runs after decoding and tag validation.
type Validator interface {
	Validate() error
}

// jsonSchema validates documents against a compiled JSON Schema.
type jsonSchema struct {
	compiled *jsonschema.Schema
}

// CompileJSONSchema compiles a JSON Schema document into a [Schema].
func CompileJSONSchema(schema []byte) (Schema, error) {
	// Use a unique schema name to avoid caching issues
	//nolint:gosec // rand.Int() is used for a unique schema name, not security sensitive
	schemaName := fmt.Sprintf("inline_%d.json", rand.Int())
	compiler := jsonschema.NewCompiler()

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON schema: %w", err)
	}
	if err = compiler.AddResource(schemaName, doc); err != nil {
		return nil, fmt.Errorf("failed to add JSON schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile JSON schema: %w", err)
	}
	return &jsonSchema{compiled: compiled}, nil
}

// CompileJSONSchemaFile reads and compiles a JSON Schema file.
func CompileJSONSchemaFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON schema: %w", err)
	}
	return CompileJSONSchema(data)
}

// Validate checks doc against the schema. The document is first normalized
// to plain JSON values, since YAML and TOML decoders produce Go types the
// validator does not know about (typed slices, time.Time).
func (s *jsonSchema) Validate(doc map[string]any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document is not representable as JSON: %w", err)
	}
	normalized, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return err
	}
	return s.compiled.Validate(normalized)
}

// modelSchema validates documents by decoding them into a Go struct.
type modelSchema struct {
	typ      reflect.Type
	tag      string
	validate *validator.Validate
}

func newModelSchema(model any, tag string) (*modelSchema, error) {
	if model == nil {
		return nil, errors.New("model cannot be nil")
	}
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct or a pointer to a struct, got %s", typ)
	}
	return &modelSchema{typ: typ, tag: tag, validate: newTagValidator(tag)}, nil
}

// New decodes doc into a fresh instance of the model type and returns a pointer to it.
func (m *modelSchema) New(doc map[string]any) (any, error) {
	target := reflect.New(m.typ).Interface()
	if err := decodeInto(doc, target, m.tag, m.validate); err != nil {
		return nil, err
	}
	return target, nil
}

// Validate implements [Schema].
func (m *modelSchema) Validate(doc map[string]any) error {
	_, err := m.New(doc)
	return err
}

// newTagValidator returns a go-playground validator reporting fields by
// their config tag name.
func newTagValidator(tag string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get(tag)
		if name == "-" {
			return ""
		}
		if idx := strings.Index(name, ","); idx != -1 {
			name = name[:idx]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// decoderConfig returns the mapstructure configuration used for models.
func decoderConfig(tag string, result any) *mapstructure.DecoderConfig {
	if tag == "" {
		tag = defaultTag
	}
	return &mapstructure.DecoderConfig{
		TagName:          tag,
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           result,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToURLHookFunc(),
		),
	}
}

// decodeInto decodes doc into target, applies default tags and, for struct
// targets, runs tag validation and the [Validator] interface.
// A nil tagValidator skips tag validation.
func decodeInto(doc map[string]any, target any, tag string, tagValidator *validator.Validate) error {
	decoder, err := mapstructure.NewDecoder(decoderConfig(tag, target))
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err = decoder.Decode(doc); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	if !isStructPointer(target) {
		return nil
	}
	if err = applyDefaults(target); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	if tagValidator != nil {
		if err = tagValidator.Struct(target); err != nil {
			return err
		}
	}
	if v, ok := target.(Validator); ok {
		if err = v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func isNonNilPointer(v any) bool {
	val := reflect.ValueOf(v)
	return val.Kind() == reflect.Ptr && !val.IsNil()
}

func isStructPointer(v any) bool {
	val := reflect.ValueOf(v)
	return val.Kind() == reflect.Ptr && !val.IsNil() && val.Elem().Kind() == reflect.Struct
}

// applyDefaults applies default values from struct tags to a struct.
// It walks through the struct fields and sets defaults for fields that have the 'default' tag
// and are currently zero-valued.
func applyDefaults(target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr {
		return errors.New("target must be a pointer")
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return errors.New("target must be a pointer to a struct")
	}
	return setDefaults(val)
}

// setDefaults recursively sets default values on a struct.
func setDefaults(val reflect.Value) error {
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := setDefaults(field); err != nil {
				return err
			}
			continue
		}

		defaultTag := fieldType.Tag.Get("default")
		if defaultTag == "" || !field.IsZero() {
			continue
		}

		if err := setDefaultValue(field, defaultTag); err != nil {
			return fmt.Errorf("failed to set default for field %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// setDefaultValue sets a default value on a field based on its type.
func setDefaultValue(field reflect.Value, defaultVal string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(defaultVal)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(defaultVal)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := cast.ToInt64E(defaultVal)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := cast.ToUint64E(defaultVal)
		if err != nil {
			return err
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(defaultVal)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := cast.ToBoolE(defaultVal)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type() != reflect.TypeOf([]string(nil)) {
			return fmt.Errorf("unsupported slice type for default tag: %s", field.Type())
		}
		field.Set(reflect.ValueOf(strings.Split(defaultVal, ",")))
	default:
		return fmt.Errorf("unsupported type for default tag: %s", field.Kind())
	}
	return nil
}
