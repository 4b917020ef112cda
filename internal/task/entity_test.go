package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAssignees(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "drops blanks", in: []string{"u1", "", "  "}, want: []string{"u1"}},
		{name: "trims whitespace", in: []string{" u1 "}, want: []string{"u1"}},
		{name: "dedups keeping first", in: []string{"u1", "u2", "u1"}, want: []string{"u1", "u2"}},
		{name: "trimmed duplicate collapses", in: []string{"u1", " u1"}, want: []string{"u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAssignees(tt.in))
		})
	}
}

func TestHistoryEntryHandler(t *testing.T) {
	uid, ok := HistoryEntry{AssigneeIDs: []string{"u1", "u2"}}.Handler()
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	_, ok = HistoryEntry{}.Handler()
	assert.False(t, ok)
}

func TestUpdateEmpty(t *testing.T) {
	assert.True(t, Update{}.Empty())

	status := "doing"
	assert.False(t, Update{Status: &status}.Empty())
	assert.False(t, Update{History: &HistoryEntry{Status: "doing"}}.Empty())
}
