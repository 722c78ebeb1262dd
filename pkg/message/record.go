package message

// Record is a Row plus identity metadata: an opaque backend record identifier
// and an optional navigation href. A Record without an identifier represents a
// not-yet-created record in a request batch.
type Record struct {
	row  *Row
	id   string
	href string
}

// NewRecord creates an empty Record with no identifier.
func NewRecord() *Record {
	return &Record{row: NewRow()}
}

// NewRecordWithID creates an empty Record carrying a backend identifier.
func NewRecordWithID(id string) *Record {
	return &Record{row: NewRow(), id: id}
}

// Row returns the Record's field data by shared reference; mutations are
// visible to every view of the Record.
func (r *Record) Row() *Row {
	return r.row
}

// RecordID returns the backend identifier, or the empty string when unset.
func (r *Record) RecordID() string {
	return r.id
}

// HasRecordID reports whether a backend identifier has been assigned.
func (r *Record) HasRecordID() bool {
	return r.id != ""
}

// SetRecordID assigns the backend identifier. Callers inserting the Record
// into a Message should use Message.SetRecordID so the id index stays
// consistent.
func (r *Record) SetRecordID(id string) {
	r.id = id
}

// Href returns the navigation href, if any.
func (r *Record) Href() string {
	return r.href
}

// SetHref assigns the navigation href.
func (r *Record) SetHref(href string) {
	r.href = href
}

// Equal reports whether two Records have equal identity and field content.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.id == other.id && r.href == other.href && r.row.Equal(other.row)
}
