package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
		ok   bool
	}{
		{StateIdle, StateFetching, true},
		{StateFetching, StateAnalyzing, true},
		{StateAnalyzing, StateMerging, true},
		{StateAnalyzing, StateAwaitingApproval, true},
		{StateAwaitingApproval, StateMerging, true},
		{StateAwaitingApproval, StateIdle, true},
		{StateMerging, StateSaving, true},
		{StateSaving, StateIdle, true},
		{StateFailed, StateFetching, true},

		{StateIdle, StateSaving, false},
		{StateFetching, StateMerging, false},
		{StateSaving, StateFetching, false},
		{StateAwaitingApproval, StateSaving, false},
		{StateIdle, StateIdle, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+" to "+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStateActive(t *testing.T) {
	assert.False(t, StateIdle.Active())
	assert.False(t, StateFailed.Active())
	assert.True(t, StateFetching.Active())
	assert.True(t, StateAnalyzing.Active())
	assert.True(t, StateAwaitingApproval.Active())
	assert.True(t, StateMerging.Active())
	assert.True(t, StateSaving.Active())
}

func TestParseSaveMode(t *testing.T) {
	mode, ok := ParseSaveMode("replace")
	assert.True(t, ok)
	assert.Equal(t, SaveModeReplace, mode)

	mode, ok = ParseSaveMode("append")
	assert.True(t, ok)
	assert.Equal(t, SaveModeAppend, mode)

	_, ok = ParseSaveMode("merge")
	assert.False(t, ok)
}
