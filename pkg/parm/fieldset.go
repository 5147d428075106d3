package parm

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldSet offers typed helpers on top of Result.Fields.
type FieldSet struct {
	data map[string]any
}

// FieldSet returns a FieldSet wrapper for the result's fields.
func (r Result) FieldSet() FieldSet {
	return FieldSet{data: r.Fields}
}

// Map exposes the underlying map.
func (fs FieldSet) Map() map[string]any {
	return fs.data
}

// Raw returns the stored value without conversions.
func (fs FieldSet) Raw(key string) (any, bool) {
	if fs.data == nil {
		return nil, false
	}
	v, ok := fs.data[key]
	return v, ok
}

// String returns the field as a string.
func (fs FieldSet) String(key string) (string, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return "", fmt.Errorf("field %q missing", key)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// Words parses a vector field into its 32-bit words.
func (fs FieldSet) Words(key string) ([]uint32, error) {
	parts, err := fs.list(key)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("field %q word %d is not an unsigned integer: %w", key, i, err)
		}
		out[i] = uint32(n)
	}
	return out, nil
}

// Floats parses a vector field into float64 values; it accepts the float
// slots of group 6 as well as integer words.
func (fs FieldSet) Floats(key string) ([]float64, error) {
	parts, err := fs.list(key)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q value %d is not numeric: %w", key, i, err)
		}
		out[i] = f
	}
	return out, nil
}

// Word returns element i of a vector field.
func (fs FieldSet) Word(key string, i int) (uint32, error) {
	words, err := fs.Words(key)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(words) {
		return 0, fmt.Errorf("field %q has %d words, index %d out of range", key, len(words), i)
	}
	return words[i], nil
}

func (fs FieldSet) list(key string) ([]string, error) {
	s, err := fs.String(key)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, ","), nil
}
