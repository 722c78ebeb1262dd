package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFieldName(t *testing.T) {
	tests := []struct {
		in       string
		base     string
		index    int
		repeated bool
	}{
		{"phone[2]", "phone", 2, true},
		{"phone[0]", "phone", 0, true},
		{"phone", "phone", 0, false},
		{"phone[]", "phone[]", 0, false},
		{"phone[x]", "phone[x]", 0, false},
		{"phone[-1]", "phone[-1]", 0, false},
		{"[3]", "[3]", 0, false},
	}
	for _, tt := range tests {
		base, index, repeated := SplitFieldName(tt.in)
		assert.Equal(t, tt.base, base, tt.in)
		assert.Equal(t, tt.index, index, tt.in)
		assert.Equal(t, tt.repeated, repeated, tt.in)
	}
}

func TestFieldSetConversion(t *testing.T) {
	r := NewRow()
	r.Set("name", "Ada")
	r.Set("phone[0]", "555-0100")
	r.Set("phone[2]", "555-0102")

	fs := r.FieldSet()
	assert.Equal(t, FieldSet{
		"name":  {0: "Ada"},
		"phone": {0: "555-0100", 2: "555-0102"},
	}, fs)
}

func TestRepetitionRoundTripPreservesGaps(t *testing.T) {
	r := NewRow()
	r.Set("phone[2]", "555-0102")

	fs := r.FieldSet()
	assert.Equal(t, FieldSet{"phone": {2: "555-0102"}}, fs)

	back := NewRow()
	back.ExpandField("phone", fs["phone"], 0)
	v, ok := back.Get("phone[2]")
	assert.True(t, ok)
	assert.Equal(t, "555-0102", v)
	_, ok = back.Get("phone[0]")
	assert.False(t, ok)
	_, ok = back.Get("phone[1]")
	assert.False(t, ok)
}

func TestExpandFieldAscendingOrder(t *testing.T) {
	back := NewRow()
	back.ExpandField("phone", Repetitions{3: "c", 0: "a", 1: "b"}, 3)
	assert.Equal(t, []string{"phone[0]", "phone[1]", "phone[3]"}, back.Names())
}

func TestNonRepeatingFieldPassesThroughUnchanged(t *testing.T) {
	back := NewRow()
	back.ExpandField("notes", Repetitions{0: "A"}, 1)
	v, ok := back.Get("notes")
	assert.True(t, ok)
	assert.Equal(t, "A", v)
}
