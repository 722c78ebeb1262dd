package message

import (
	"sort"
	"strconv"
	"strings"
)

// Repetitions holds the per-repetition values of one field in backend-native
// form, keyed by repetition index. Index gaps are meaningful and preserved.
type Repetitions map[int]string

// FieldSet is the backend-native shape of a record's fields: field name to
// ordered per-repetition values.
type FieldSet map[string]Repetitions

// SplitFieldName parses the wire convention "name[i]" into its base name and
// repetition index. A bare name parses as repetition 0 with repeated=false.
func SplitFieldName(name string) (base string, index int, repeated bool) {
	open := strings.LastIndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return name, 0, false
	}
	idx, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil || idx < 0 {
		return name, 0, false
	}
	return name[:open], idx, true
}

// JoinFieldName renders the wire form of a field repetition. Repetition 0 of a
// non-repeating field stays bare; everything else is bracketed.
func JoinFieldName(base string, index int, maxRepeat int) string {
	if index == 0 && maxRepeat <= 1 {
		return base
	}
	return base + "[" + strconv.Itoa(index) + "]"
}

// FieldSet converts the Row's flat "name[i]" wire encoding into the
// backend-native per-repetition structure. Bare names address repetition 0.
func (r *Row) FieldSet() FieldSet {
	fs := make(FieldSet)
	for _, name := range r.Names() {
		base, idx, _ := SplitFieldName(name)
		reps, ok := fs[base]
		if !ok {
			reps = make(Repetitions)
			fs[base] = reps
		}
		reps[idx] = r.Value(name)
	}
	return fs
}

// ExpandField writes one field's repetitions into the Row as "name[i]"
// pseudo-fields in ascending index order, preserving gaps. maxRepeat controls
// whether repetition 0 keeps the bare name.
func (r *Row) ExpandField(base string, reps Repetitions, maxRepeat int) {
	indexes := make([]int, 0, len(reps))
	for i := range reps {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		r.Set(JoinFieldName(base, i, maxRepeat), reps[i])
	}
}
