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
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// value returns the value at a dotted key and whether it exists.
func (p *Provider) value(key string) (any, bool) {
	if p == nil || key == "" {
		return nil, false
	}
	v := p.Get(key, missingValue)
	if v == missingValue {
		return nil, false
	}
	return v, true
}

// missingValue is a sentinel default distinguishing absent keys from nil values.
var missingValue = &struct{ byte }{}

// String returns the value at key as a string, or "" when absent or not convertible.
//
// Example:
//
//	host := p.String("server.host")
func (p *Provider) String(key string) string {
	v, _ := p.value(key)
	return cast.ToString(v)
}

// Int returns the value at key as an int, or 0 when absent or not convertible.
func (p *Provider) Int(key string) int {
	v, _ := p.value(key)
	return cast.ToInt(v)
}

// Int64 returns the value at key as an int64, or 0 when absent or not convertible.
func (p *Provider) Int64(key string) int64 {
	v, _ := p.value(key)
	return cast.ToInt64(v)
}

// Float64 returns the value at key as a float64, or 0 when absent or not convertible.
func (p *Provider) Float64(key string) float64 {
	v, _ := p.value(key)
	return cast.ToFloat64(v)
}

// Bool returns the value at key as a bool, or false when absent or not convertible.
func (p *Provider) Bool(key string) bool {
	v, _ := p.value(key)
	return cast.ToBool(v)
}

// Duration returns the value at key as a time.Duration. Strings are parsed
// with [time.ParseDuration]; plain numbers are nanoseconds.
//
// Example:
//
//	timeout := p.Duration("server.timeout") // "30s"
func (p *Provider) Duration(key string) time.Duration {
	v, _ := p.value(key)
	return cast.ToDuration(v)
}

// StringSlice returns the value at key as a []string.
func (p *Provider) StringSlice(key string) []string {
	v, ok := p.value(key)
	if !ok {
		return []string{}
	}
	return cast.ToStringSlice(v)
}

// StringMap returns the mapping at key, or an empty map.
func (p *Provider) StringMap(key string) map[string]any {
	v, ok := p.value(key)
	if !ok {
		return map[string]any{}
	}
	return cast.ToStringMap(v)
}

// StringOr returns the value at key as a string, or defaultVal when absent.
func (p *Provider) StringOr(key, defaultVal string) string {
	return GetOr(p, key, defaultVal)
}

// IntOr returns the value at key as an int, or defaultVal when absent or not convertible.
func (p *Provider) IntOr(key string, defaultVal int) int {
	return GetOr(p, key, defaultVal)
}

// BoolOr returns the value at key as a bool, or defaultVal when absent or not convertible.
func (p *Provider) BoolOr(key string, defaultVal bool) bool {
	return GetOr(p, key, defaultVal)
}

// DurationOr returns the value at key as a time.Duration, or defaultVal when absent or not convertible.
func (p *Provider) DurationOr(key string, defaultVal time.Duration) time.Duration {
	return GetOr(p, key, defaultVal)
}

// Get returns the value associated with the given key as type T.
// If the key is not found or cannot be converted to type T, it returns the zero value of T.
//
// Example:
//
//	port := configdoctor.Get[int](p, "server.port")
//	timeout := configdoctor.Get[time.Duration](p, "timeout")
func Get[T any](p *Provider, key string) T {
	var zero T
	v, ok := p.value(key)
	if !ok {
		return zero
	}
	if result, ok := convertToType[T](v); ok {
		return result
	}
	return zero
}

// GetOr returns the value associated with the given key as type T.
// If the key is not found or cannot be converted to type T, it returns the provided default value.
// The type T is inferred from the default value.
//
// Example:
//
//	port := configdoctor.GetOr(p, "server.port", 8080)
//	host := configdoctor.GetOr(p, "server.host", "localhost")
func GetOr[T any](p *Provider, key string, defaultVal T) T {
	v, ok := p.value(key)
	if !ok || v == nil {
		return defaultVal
	}
	if result, ok := convertToType[T](v); ok {
		return result
	}
	return defaultVal
}

// GetE returns the value associated with the given key as type T, with error handling.
// It returns an error if the key is not found or the value cannot be converted to type T.
//
// Example:
//
//	port, err := configdoctor.GetE[int](p, "server.port")
//	if err != nil {
//	    return fmt.Errorf("failed to get port: %w", err)
//	}
func GetE[T any](p *Provider, key string) (T, error) {
	zero := getZeroValue[T]()
	if p == nil {
		return zero, fmt.Errorf("provider is nil")
	}
	v, ok := p.value(key)
	if !ok {
		return zero, fmt.Errorf("key %q not found", key)
	}
	if result, ok := convertToType[T](v); ok {
		return result, nil
	}
	return zero, fmt.Errorf("cannot convert value at key %q to type %T", key, zero)
}

// getZeroValue returns a proper zero value for type T.
// For slices and maps, it returns empty initialized values instead of nil.
func getZeroValue[T any]() T {
	var zero T
	v := reflect.ValueOf(&zero).Elem()

	switch v.Kind() {
	case reflect.Slice:
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	case reflect.Map:
		v.Set(reflect.MakeMap(v.Type()))
	}

	return zero
}

// convertToType converts val to T: directly when val already is a T,
// otherwise with the cast library for the common scalar, slice and map types.
// Conversion failures are reported, not swallowed.
func convertToType[T any](val any) (T, bool) {
	var zero T
	if result, ok := val.(T); ok {
		return result, true
	}

	var (
		result any
		err    error
	)
	switch any(zero).(type) {
	case string:
		result, err = cast.ToStringE(val)
	case int:
		result, err = cast.ToIntE(val)
	case int64:
		result, err = cast.ToInt64E(val)
	case int32:
		result, err = cast.ToInt32E(val)
	case uint:
		result, err = cast.ToUintE(val)
	case uint64:
		result, err = cast.ToUint64E(val)
	case float64:
		result, err = cast.ToFloat64E(val)
	case float32:
		result, err = cast.ToFloat32E(val)
	case bool:
		result, err = cast.ToBoolE(val)
	case []string:
		result, err = cast.ToStringSliceE(val)
	case []int:
		result, err = cast.ToIntSliceE(val)
	case map[string]any:
		result, err = cast.ToStringMapE(val)
	case map[string]string:
		result, err = cast.ToStringMapStringE(val)
	case time.Duration:
		result, err = cast.ToDurationE(val)
	case time.Time:
		result, err = cast.ToTimeE(val)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}

	typed, ok := result.(T)
	return typed, ok
}
