package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentTargetFollowsTransitionTable(t *testing.T) {
	want := map[TeamStatus]TeamStatus{
		TeamDraft:       TeamSubmitted,
		TeamSubmitted:   TeamSubmitted,
		TeamRejected:    TeamSubmitted,
		TeamShortlisted: TeamSubmitted,
		TeamEnded:       TeamEnded,
	}
	for _, st := range AllTeamStatuses {
		got, ok := st.AttachmentTarget()
		if st == TeamAwarded {
			assert.False(t, ok)
			continue
		}
		assert.True(t, ok, st)
		assert.Equal(t, want[st], got, st)
		if got != st {
			assert.True(t, st.CanTransitionTo(got), "%s -> %s", st, got)
		}
	}
}

func TestTransitions(t *testing.T) {
	assert.True(t, TeamDraft.CanTransitionTo(TeamSubmitted))
	assert.True(t, TeamShortlisted.CanTransitionTo(TeamAwarded))
	assert.True(t, TeamEnded.CanTransitionTo(TeamDraft))
	assert.False(t, TeamDraft.CanTransitionTo(TeamShortlisted))
	assert.False(t, TeamRejected.CanTransitionTo(TeamShortlisted))
	for _, st := range AllTeamStatuses {
		assert.False(t, TeamAwarded.CanTransitionTo(st), st)
	}

	st, ok := ParseTeamStatus(" Shortlisted ")
	assert.True(t, ok)
	assert.Equal(t, TeamShortlisted, st)
	_, ok = ParseTeamStatus("approved")
	assert.False(t, ok)
}
