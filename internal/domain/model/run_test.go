package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRunState(t *testing.T) {
	a := NewRunState("/repo")
	b := NewRunState("/repo")
	assert.Len(t, a.RunID, 26, "ULID string length")
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, "/repo", a.Repository)
}

func TestRunState_Stalled(t *testing.T) {
	tests := []struct {
		name    string
		history []int
		want    bool
	}{
		{"empty", nil, false},
		{"single pass", []int{5}, false},
		{"improving", []int{5, 3}, false},
		{"flat", []int{5, 5}, true},
		{"regressing", []int{3, 5}, true},
		{"late stall", []int{9, 5, 5}, true},
		{"recovered", []int{5, 5, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RunState{}
			for _, n := range tt.history {
				r.RecordIssueTotal(n)
			}
			assert.Equal(t, tt.want, r.Stalled())
		})
	}
}
