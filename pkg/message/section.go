package message

// SectionName is the closed set of section kinds a Message may expose. Each
// name carries its dimensionality as a fixed fact: Info and Nav are
// one-dimensional (a single row of key/values), the rest are two-dimensional
// (one row per Record, MetaField or Multistatus entry).
type SectionName int

const (
	SectionMeta SectionName = iota
	SectionData
	SectionInfo
	SectionMetaField
	SectionMultistatus
	SectionNav
)

// sectionOrder is the fixed priority order sections are reported in.
var sectionOrder = [...]SectionName{
	SectionMeta,
	SectionData,
	SectionInfo,
	SectionMetaField,
	SectionMultistatus,
	SectionNav,
}

// String returns the wire name of the section.
func (n SectionName) String() string {
	switch n {
	case SectionMeta:
		return "meta"
	case SectionData:
		return "data"
	case SectionInfo:
		return "info"
	case SectionMetaField:
		return "metaField"
	case SectionMultistatus:
		return "multistatus"
	case SectionNav:
		return "nav"
	default:
		return "unknown"
	}
}

// Dimensions returns 1 for flat key/value sections and 2 for row-list
// sections. Immutable per name.
func (n SectionName) Dimensions() int {
	switch n {
	case SectionInfo, SectionNav:
		return 1
	default:
		return 2
	}
}

// ParseSectionName maps a wire name back to its SectionName.
func ParseSectionName(s string) (SectionName, bool) {
	for _, n := range sectionOrder {
		if n.String() == s {
			return n, true
		}
	}
	return 0, false
}

// Section is a projection over one category of a Message's data. It holds no
// rows of its own: it addresses the owning Message's backing collections, so
// where a backing Row exists (data, info, nav, metaField) mutations through
// the Section are visible in the source and vice versa. Identity sections
// (meta, multistatus) synthesize their rows; mutation of those goes through
// the Message API.
type Section struct {
	name SectionName
	msg  *Message
}

// Name returns the section's name.
func (s Section) Name() SectionName { return s.name }

// Dimensions returns the declared dimensionality, fixed at construction.
func (s Section) Dimensions() int { return s.name.Dimensions() }

// Len returns the number of rows currently visible through the section.
func (s Section) Len() int {
	switch s.name {
	case SectionMeta, SectionData:
		return s.msg.RecordCount()
	case SectionInfo:
		return oneIfNonEmpty(s.msg.info)
	case SectionNav:
		return oneIfNonEmpty(s.msg.nav)
	case SectionMetaField:
		return s.msg.MetaFieldCount()
	case SectionMultistatus:
		return s.msg.MultistatusCount()
	default:
		return 0
	}
}

// Row returns row i of the section. For data, info, nav and metaField the
// returned Row is the live backing Row.
func (s Section) Row(i int) *Row {
	switch s.name {
	case SectionData:
		if rec := s.msg.RecordByIndex(i); rec != nil {
			return rec.Row()
		}
	case SectionMeta:
		if rec := s.msg.RecordByIndex(i); rec != nil {
			return metaRow(rec)
		}
	case SectionInfo:
		if i == 0 {
			return s.msg.info
		}
	case SectionNav:
		if i == 0 {
			return s.msg.nav
		}
	case SectionMetaField:
		if i >= 0 && i < len(s.msg.metaFieldNames) {
			return s.msg.metaFields[s.msg.metaFieldNames[i]]
		}
	case SectionMultistatus:
		if i >= 0 && i < len(s.msg.multistatus) {
			return s.msg.multistatus[i].row()
		}
	}
	return nil
}

// Rows returns every row of the section in order.
func (s Section) Rows() []*Row {
	out := make([]*Row, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		out = append(out, s.Row(i))
	}
	return out
}

func metaRow(rec *Record) *Row {
	r := NewRow()
	if rec.HasRecordID() {
		r.Set("recordID", rec.RecordID())
	}
	if rec.Href() != "" {
		r.Set("href", rec.Href())
	}
	return r
}

func oneIfNonEmpty(r *Row) int {
	if r != nil && r.Len() > 0 {
		return 1
	}
	return 0
}
