package message

import (
	"fmt"
	"strings"
)

// Message is the aggregate container carrying one request or response between
// the wire format and the backend: an ordered Record collection with an id
// index, a write-once field-metadata cache, an append-only multistatus list,
// and flat info and nav rows. Sections are derived views over these
// collections, never separate storage.
type Message struct {
	records        []*Record
	byID           map[string]int
	metaFieldNames []string
	metaFields     map[string]*Row
	multistatus    []MultistatusEntry
	info           *Row
	nav            *Row
}

// New creates an empty Message.
func New() *Message {
	return &Message{
		byID:       make(map[string]int),
		metaFields: make(map[string]*Row),
		info:       NewRow(),
		nav:        NewRow(),
	}
}

// SetInfo stores an info key/value, last write wins.
func (m *Message) SetInfo(name, value string) {
	m.info.Set(name, value)
}

// Info returns an info value and whether it is present.
func (m *Message) Info(name string) (string, bool) {
	return m.info.Get(name)
}

// UnsetInfo removes an info key.
func (m *Message) UnsetInfo(name string) {
	m.info.Unset(name)
}

// SetNav stores a navigation key/value, last write wins.
func (m *Message) SetNav(name, value string) {
	m.nav.Set(name, value)
}

// Nav returns a navigation value and whether it is present.
func (m *Message) Nav(name string) (string, bool) {
	return m.nav.Get(name)
}

// AddRecord appends a Record to the collection, indexing its identifier when
// one is set.
func (m *Message) AddRecord(rec *Record) {
	m.records = append(m.records, rec)
	if rec.HasRecordID() {
		m.byID[rec.RecordID()] = len(m.records) - 1
	}
}

// RecordByIndex returns the Record at position i, or nil when out of range.
func (m *Message) RecordByIndex(i int) *Record {
	if i < 0 || i >= len(m.records) {
		return nil
	}
	return m.records[i]
}

// RecordByID returns the Record with the given identifier, or nil.
func (m *Message) RecordByID(id string) *Record {
	i, ok := m.byID[id]
	if !ok {
		return nil
	}
	if i >= len(m.records) || m.records[i].RecordID() != id {
		// Index drifted from the collection; rebuild and retry once.
		m.rebuildIndex()
		i, ok = m.byID[id]
		if !ok {
			return nil
		}
	}
	return m.records[i]
}

// RecordCount returns the number of Records.
func (m *Message) RecordCount() int {
	return len(m.records)
}

// SetRecordID assigns an identifier to a held Record and keeps the id index
// consistent.
func (m *Message) SetRecordID(rec *Record, id string) {
	rec.SetRecordID(id)
	for i, r := range m.records {
		if r == rec {
			m.byID[id] = i
			return
		}
	}
}

func (m *Message) rebuildIndex() {
	m.byID = make(map[string]int, len(m.records))
	for i, r := range m.records {
		if r.HasRecordID() {
			m.byID[r.RecordID()] = i
		}
	}
}

// SetMetaField stores the descriptive Row for a field name. The cache is
// write-once per response cycle: a second Set for the same name is ignored.
func (m *Message) SetMetaField(name string, row *Row) {
	if _, ok := m.metaFields[name]; ok {
		return
	}
	m.metaFieldNames = append(m.metaFieldNames, name)
	m.metaFields[name] = row
}

// MetaField returns the descriptive Row for a field name, or nil.
func (m *Message) MetaField(name string) *Row {
	return m.metaFields[name]
}

// MetaFieldCount returns the number of cached field descriptions.
func (m *Message) MetaFieldCount() int {
	return len(m.metaFieldNames)
}

// AddMultistatus appends a per-item outcome entry. The list is append-only.
func (m *Message) AddMultistatus(e MultistatusEntry) {
	m.multistatus = append(m.multistatus, e)
}

// Multistatus returns the entry at position i.
func (m *Message) Multistatus(i int) MultistatusEntry {
	return m.multistatus[i]
}

// MultistatusCount returns the number of multistatus entries.
func (m *Message) MultistatusCount() int {
	return len(m.multistatus)
}

// Section returns the projection view for a section name.
func (m *Message) Section(name SectionName) Section {
	return Section{name: name, msg: m}
}

// SectionNames returns the non-empty sections in fixed priority order:
// meta, data, info, metaField, multistatus, nav.
func (m *Message) SectionNames() []SectionName {
	var out []SectionName
	for _, n := range sectionOrder {
		if m.Section(n).Len() > 0 {
			out = append(out, n)
		}
	}
	return out
}

// SetSection imports rows into a section. One-dimensional sections accept a
// single row (a flat payload and a one-element list normalize identically at
// the decoding layer). For meta and data, a row at an index with no existing
// Record creates one positionally, so partial updates must align indices with
// prior meta/data calls.
func (m *Message) SetSection(name SectionName, rows []*Row) error {
	if name.Dimensions() == 1 && len(rows) > 1 {
		return fmt.Errorf("message: section %s is one-dimensional, got %d rows", name, len(rows))
	}
	switch name {
	case SectionInfo:
		for _, r := range rows {
			for _, n := range r.Names() {
				m.info.Set(n, r.Value(n))
			}
		}
	case SectionNav:
		for _, r := range rows {
			for _, n := range r.Names() {
				m.nav.Set(n, r.Value(n))
			}
		}
	case SectionMeta:
		for i, r := range rows {
			rec := m.recordAt(i)
			if id, ok := r.Get("recordID"); ok {
				m.SetRecordID(rec, id)
			}
			if href, ok := r.Get("href"); ok {
				rec.SetHref(href)
			}
		}
	case SectionData:
		for i, r := range rows {
			rec := m.recordAt(i)
			for _, n := range r.Names() {
				rec.Row().Set(n, r.Value(n))
			}
		}
	case SectionMetaField:
		for _, r := range rows {
			name, ok := r.Get("name")
			if !ok {
				return fmt.Errorf("message: metaField row missing name")
			}
			m.SetMetaField(name, r)
		}
	case SectionMultistatus:
		for _, r := range rows {
			m.AddMultistatus(entryFromRow(r))
		}
	default:
		return fmt.Errorf("message: unknown section %d", name)
	}
	return nil
}

// recordAt returns the Record at index i, creating empty Records positionally
// as needed.
func (m *Message) recordAt(i int) *Record {
	for len(m.records) <= i {
		m.AddRecord(NewRecord())
	}
	return m.records[i]
}

// ExportedSection is one section of a flattened Message: the section name and
// its rows as independent copies. One-dimensional sections export exactly one
// row.
type ExportedSection struct {
	Name SectionName
	Rows []*Row
}

// Export flattens the Message into its non-empty sections in priority order.
// Rows are copies; mutating the export does not touch the Message.
func (m *Message) Export() []ExportedSection {
	var out []ExportedSection
	for _, name := range m.SectionNames() {
		sec := m.Section(name)
		rows := make([]*Row, 0, sec.Len())
		for i := 0; i < sec.Len(); i++ {
			rows = append(rows, sec.Row(i).Copy())
		}
		out = append(out, ExportedSection{Name: name, Rows: rows})
	}
	return out
}

// Import builds a Message back from exported sections. Import(Export(m))
// yields a Message equal to m in section set, row counts and field values;
// the internal id index representation is not required to match.
func Import(sections []ExportedSection) (*Message, error) {
	m := New()
	for _, sec := range sections {
		if err := m.SetSection(sec.Name, sec.Rows); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Equal reports whether two Messages agree on section set, row counts and
// field values per row.
func (m *Message) Equal(other *Message) bool {
	a, b := m.SectionNames(), other.SectionNames()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
		sa, sb := m.Section(a[i]), other.Section(b[i])
		if sa.Len() != sb.Len() {
			return false
		}
		for j := 0; j < sa.Len(); j++ {
			if !sa.Row(j).Equal(sb.Row(j)) {
				return false
			}
		}
	}
	return true
}

// Dump renders every non-empty section as deterministic multi-line text for
// diagnostics. Not a wire format.
func (m *Message) Dump() string {
	var b strings.Builder
	for _, name := range m.SectionNames() {
		sec := m.Section(name)
		fmt.Fprintf(&b, "%s:\n", name)
		for i := 0; i < sec.Len(); i++ {
			row := sec.Row(i)
			if name.Dimensions() == 2 {
				fmt.Fprintf(&b, "  [%d]\n", i)
			}
			for _, n := range row.Names() {
				fmt.Fprintf(&b, "    %s=%q\n", n, row.Value(n))
			}
		}
	}
	return b.String()
}
