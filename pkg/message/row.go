// Package message implements the tabular message model that carries record
// data between the wire format and the backend: ordered Rows, identified
// Records, per-item multistatus outcomes and section-organized Messages.
package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Row is an ordered mapping of field name to scalar value. Field names are
// unique within a Row; insertion order is preserved for export.
type Row struct {
	names  []string
	values map[string]string
}

// NewRow creates an empty Row.
func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// Set stores a field value, keeping the Row's insertion order. Setting an
// existing field overwrites its value in place.
func (r *Row) Set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns the value for a field and whether the field is present.
func (r *Row) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value for a field, or the empty string if absent.
func (r *Row) Value(name string) string {
	return r.values[name]
}

// Unset removes a field from the Row.
func (r *Row) Unset(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of fields in the Row.
func (r *Row) Len() int {
	return len(r.names)
}

// Names returns the field names in insertion order.
func (r *Row) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Clear removes all fields.
func (r *Row) Clear() {
	r.names = r.names[:0]
	r.values = make(map[string]string)
}

// Copy returns an independent Row with the same fields and order.
func (r *Row) Copy() *Row {
	out := NewRow()
	for _, n := range r.names {
		out.Set(n, r.values[n])
	}
	return out
}

// Equal reports whether two Rows hold the same fields with the same values,
// regardless of insertion order.
func (r *Row) Equal(other *Row) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.names) != len(other.names) {
		return false
	}
	for n, v := range r.values {
		ov, ok := other.values[n]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON renders the Row as a JSON object preserving field order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[n])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the Row, preserving the order the
// keys appear on the wire. Scalar values of any JSON type are normalized to
// their string form; null becomes the empty string.
func (r *Row) UnmarshalJSON(data []byte) error {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row: expected object key, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		value, err := scalarString(valTok)
		if err != nil {
			return fmt.Errorf("row: field %q: %w", key, err)
		}
		r.Set(key, value)
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func scalarString(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unsupported value %v", tok)
	}
}
