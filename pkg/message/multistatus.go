package message

import "strconv"

// RefKind discriminates how a multistatus entry points back at its
// originating record.
type RefKind int

const (
	// RefNone is the zero value; the entry carries no reference.
	RefNone RefKind = iota
	// RefID references a record by its backend identifier.
	RefID
	// RefIndex references a record by its position in the original request,
	// used when no identifier exists yet (e.g. a failed create).
	RefIndex
)

// Ref is a tagged reference to the record a multistatus entry describes:
// either a backend record id or the positional index in the original request.
type Ref struct {
	kind  RefKind
	id    string
	index int
}

// ByID builds a reference to a record by backend identifier.
func ByID(id string) Ref {
	return Ref{kind: RefID, id: id}
}

// ByIndex builds a reference to a record by request position.
func ByIndex(i int) Ref {
	return Ref{kind: RefIndex, index: i}
}

// Kind returns the reference discriminator.
func (r Ref) Kind() RefKind { return r.kind }

// ID returns the referenced record id; valid only when Kind is RefID.
func (r Ref) ID() string { return r.id }

// Index returns the referenced request position; valid only when Kind is
// RefIndex.
func (r Ref) Index() int { return r.index }

// String renders the reference for diagnostics.
func (r Ref) String() string {
	switch r.kind {
	case RefID:
		return r.id
	case RefIndex:
		return "#" + strconv.Itoa(r.index)
	default:
		return ""
	}
}

// MultistatusEntry records the outcome of one failed item in a bulk batch.
// Successes are omitted from the multistatus list, so callers must use Ref,
// not positional order, to map entries back to the request.
type MultistatusEntry struct {
	Status int
	Reason string
	Ref    Ref
}

// row renders the entry as a Row for section export. The reference appears
// as either recordID or index, never both.
func (e MultistatusEntry) row() *Row {
	r := NewRow()
	r.Set("Status", strconv.Itoa(e.Status))
	r.Set("Reason", e.Reason)
	switch e.Ref.Kind() {
	case RefID:
		r.Set("recordID", e.Ref.ID())
	case RefIndex:
		r.Set("index", strconv.Itoa(e.Ref.Index()))
	}
	return r
}

// entryFromRow rebuilds a MultistatusEntry from its exported Row form.
func entryFromRow(r *Row) MultistatusEntry {
	e := MultistatusEntry{Reason: r.Value("Reason")}
	e.Status, _ = strconv.Atoi(r.Value("Status"))
	if id, ok := r.Get("recordID"); ok {
		e.Ref = ByID(id)
	} else if idx, ok := r.Get("index"); ok {
		i, _ := strconv.Atoi(idx)
		e.Ref = ByIndex(i)
	}
	return e
}
