package settings

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Encode converts a typed value into its stored string representation.
// Strings are stored verbatim; every other type is stored as its JSON
// encoding. Keeping strings raw avoids needless quoting for the common case
// and stays compatible with flat string property files.
func Encode[T any](value T) (string, error) {
	if s, ok := any(value).(string); ok {
		return s, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("settings: encode %s: %w", typeName[T](), err)
	}
	return string(data), nil
}

// Decode converts a stored string back into a typed value. A string target
// returns the raw string unchanged; any other target parses the JSON
// encoding. Parse failures return a *DecodeError so callers can fall back to
// a default.
func Decode[T any](key, raw string) (T, error) {
	var out T
	if _, ok := any(out).(string); ok {
		return any(raw).(T), nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		var zero T
		return zero, &DecodeError{
			Key:    key,
			Raw:    raw,
			Target: typeName[T](),
			Err:    err,
		}
	}
	return out, nil
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	return t.String()
}
