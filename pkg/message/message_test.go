package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMessage() *Message {
	m := New()

	rec := NewRecordWithID("17")
	rec.SetHref("people/record/17")
	rec.Row().Set("name", "Ada")
	rec.Row().Set("phone[2]", "555-0101")
	m.AddRecord(rec)

	rec2 := NewRecord()
	rec2.Row().Set("name", "Grace")
	m.AddRecord(rec2)

	mf := NewRow()
	mf.Set("name", "name")
	mf.Set("autoEntered", "false")
	mf.Set("global", "false")
	mf.Set("maxRepeat", "1")
	mf.Set("resultType", "text")
	m.SetMetaField("name", mf)

	m.SetInfo("tableRecordCount", "2")
	m.AddMultistatus(MultistatusEntry{Status: 404, Reason: "no match", Ref: ByIndex(1)})
	m.SetNav("next", "people/record?skip=1")
	return m
}

func TestSectionNamesFixedOrder(t *testing.T) {
	m := buildMessage()
	assert.Equal(t, []SectionName{
		SectionMeta, SectionData, SectionInfo,
		SectionMetaField, SectionMultistatus, SectionNav,
	}, m.SectionNames())
}

func TestSectionNamesOnlyNonEmpty(t *testing.T) {
	m := New()
	m.SetInfo("foundSetCount", "200")
	m.AddMultistatus(MultistatusEntry{Status: 409, Reason: "conflict", Ref: ByID("3")})

	assert.Equal(t, []SectionName{SectionInfo, SectionMultistatus}, m.SectionNames())
}

func TestMetaDataCorrespondence(t *testing.T) {
	m := buildMessage()
	meta := m.Section(SectionMeta)
	data := m.Section(SectionData)

	require.Equal(t, meta.Len(), data.Len())
	assert.Equal(t, "17", meta.Row(0).Value("recordID"))
	assert.Equal(t, "Ada", data.Row(0).Value("name"))
	// second record has no id yet; rows still correspond positionally
	assert.Equal(t, 0, meta.Row(1).Len())
	assert.Equal(t, "Grace", data.Row(1).Value("name"))
}

func TestDataSectionSharesBackingRows(t *testing.T) {
	m := buildMessage()
	sec := m.Section(SectionData)

	sec.Row(0).Set("name", "Edsger")
	assert.Equal(t, "Edsger", m.RecordByIndex(0).Row().Value("name"))

	m.RecordByIndex(0).Row().Set("name", "Barbara")
	assert.Equal(t, "Barbara", sec.Row(0).Value("name"))
}

func TestRecordByID(t *testing.T) {
	m := buildMessage()
	rec := m.RecordByID("17")
	require.NotNil(t, rec)
	assert.Equal(t, "Ada", rec.Row().Value("name"))
	assert.Nil(t, m.RecordByID("999"))

	// ids assigned after insertion are indexed too
	m.SetRecordID(m.RecordByIndex(1), "42")
	require.NotNil(t, m.RecordByID("42"))
}

func TestMetaFieldWriteOnce(t *testing.T) {
	m := New()
	first := NewRow()
	first.Set("resultType", "text")
	m.SetMetaField("notes", first)

	second := NewRow()
	second.Set("resultType", "number")
	m.SetMetaField("notes", second)

	assert.Equal(t, 1, m.MetaFieldCount())
	assert.Equal(t, "text", m.MetaField("notes").Value("resultType"))
}

func TestSetSectionCreatesPhantomRecords(t *testing.T) {
	m := New()
	row := NewRow()
	row.Set("name", "Ada")
	require.NoError(t, m.SetSection(SectionData, []*Row{NewRow(), row}))

	assert.Equal(t, 2, m.RecordCount())
	assert.Equal(t, "Ada", m.RecordByIndex(1).Row().Value("name"))
}

func TestSetSectionOneDimensionalRejectsMultipleRows(t *testing.T) {
	m := New()
	assert.Error(t, m.SetSection(SectionInfo, []*Row{NewRow(), NewRow()}))
}

func TestExportImportRoundTrip(t *testing.T) {
	m := buildMessage()

	back, err := Import(m.Export())
	require.NoError(t, err)
	assert.True(t, m.Equal(back))

	// and ids survive into the rebuilt index
	require.NotNil(t, back.RecordByID("17"))
}

func TestExportRowsAreCopies(t *testing.T) {
	m := buildMessage()
	export := m.Export()
	export[1].Rows[0].Set("name", "mutated")
	assert.Equal(t, "Ada", m.RecordByIndex(0).Row().Value("name"))
}

func TestMultistatusRefRoundTrip(t *testing.T) {
	m := New()
	m.AddMultistatus(MultistatusEntry{Status: 404, Reason: "no match", Ref: ByIndex(3)})
	m.AddMultistatus(MultistatusEntry{Status: 409, Reason: "conflict", Ref: ByID("12")})

	back, err := Import(m.Export())
	require.NoError(t, err)
	require.Equal(t, 2, back.MultistatusCount())

	first := back.Multistatus(0)
	assert.Equal(t, RefIndex, first.Ref.Kind())
	assert.Equal(t, 3, first.Ref.Index())

	second := back.Multistatus(1)
	assert.Equal(t, RefID, second.Ref.Kind())
	assert.Equal(t, "12", second.Ref.ID())
}

func TestDumpDeterministic(t *testing.T) {
	m := buildMessage()
	assert.Equal(t, m.Dump(), m.Dump())
	assert.Contains(t, m.Dump(), "multistatus:")
	assert.Contains(t, m.Dump(), `name="Ada"`)
}
