package optproxy

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/spf13/cast"
)

// MappingValidator validates that raw is a mapping and returns a string keyed
// copy of it. Keys of other types are converted with their string form, so
// a YAML document with integer keys becomes {"1": ...}.
func MappingValidator(raw any) (Provider, error) {
	return NormalizeMapping(raw)
}

// NormalizeMapping converts any Go map into a Provider. Nested maps whose keys
// are not strings are converted too; string keyed values are left untouched.
func NormalizeMapping(raw any) (Provider, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: got nil", ErrNotMapping)
	}
	if typed, ok := raw.(map[string]any); ok {
		out := make(Provider, len(typed))
		for key, value := range typed {
			out[key] = normalizeNested(value)
		}
		return out, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, raw)
	}
	out := make(Provider, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := cast.ToStringE(iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("%w: key %v: %w", ErrNotMapping, iter.Key().Interface(), err)
		}
		out[key] = normalizeNested(iter.Value().Interface())
	}
	return out, nil
}

func normalizeNested(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() != reflect.String:
		if converted, err := NormalizeMapping(value); err == nil {
			return converted
		}
	case rv.Kind() == reflect.Map:
		if typed, ok := value.(map[string]any); ok {
			out := make(map[string]any, len(typed))
			for key, nested := range typed {
				out[key] = normalizeNested(nested)
			}
			return out
		}
	}
	return value
}

// SequenceValidator validates that raw is a slice or array and returns its
// elements.
func SequenceValidator(raw any) ([]any, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: got nil", ErrNotSequence)
	}
	if typed, ok := raw.([]any); ok {
		return append([]any(nil), typed...), nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: got %T", ErrNotSequence, raw)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func sortedKeys(m Provider) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
