// Package backend defines the narrow interface the orchestration engine
// consumes from a record-oriented database: by-id find, unique-key find,
// create, update, delete and script execution over flat key/value records
// with optional repeating fields.
package backend

import (
	"context"

	"github.com/recordgate/recordgate/pkg/message"
)

// Field result types reported by layout metadata.
const (
	TypeText      = "text"
	TypeNumber    = "number"
	TypeDate      = "date"
	TypeContainer = "container"
)

// FieldMeta describes one field of a layout.
type FieldMeta struct {
	Name        string `json:"name"`
	AutoEntered bool   `json:"autoEntered"`
	Global      bool   `json:"global"`
	MaxRepeat   int    `json:"maxRepeat"`
	ResultType  string `json:"resultType"`
}

// Record is a backend record: its identifier, field values in per-repetition
// form, and the layout's field metadata as returned with the read.
type Record struct {
	ID     string
	Fields message.FieldSet
	Meta   []FieldMeta
}

// Backend is the collaborator a gateway drives. Implementations are
// session-scoped handles: safe for sequential use within one request, not for
// sharing across requests. All methods either return a result or an error;
// retries and timeouts are the implementation's concern.
type Backend interface {
	// FindByUniqueKey returns every record on the layout whose field matches
	// value exactly. Zero matches is not an error.
	FindByUniqueKey(ctx context.Context, layout, field, value string) ([]Record, error)

	// FindByID returns the record with the given identifier. A missing record
	// is an *Error with CodeNoMatch.
	FindByID(ctx context.Context, layout, id string) (Record, error)

	// Create inserts a record and returns it with its assigned identifier.
	Create(ctx context.Context, layout string, fields message.FieldSet, hooks *HookSet) (Record, error)

	// Update overwrites the given fields of an existing record. A missing
	// record is an *Error with CodeNoMatch.
	Update(ctx context.Context, layout, id string, fields message.FieldSet, hooks *HookSet) error

	// Delete removes a record. A missing record is an *Error with CodeNoMatch.
	Delete(ctx context.Context, layout, id string, hooks *HookSet) error

	// RunScript executes a named backend-side procedure with at most one
	// opaque parameter and returns whatever records it produced: zero, one or
	// an incidental record even when the script performed no query.
	RunScript(ctx context.Context, layout, name, param string) ([]Record, error)

	// ReadContainer materializes a container reference into its filename and
	// raw bytes.
	ReadContainer(ctx context.Context, ref string) (filename string, data []byte, err error)
}
