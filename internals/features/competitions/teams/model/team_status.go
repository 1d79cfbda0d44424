package model

import "strings"

type TeamStatus string

const (
	TeamDraft       TeamStatus = "draft"
	TeamSubmitted   TeamStatus = "submitted"
	TeamShortlisted TeamStatus = "shortlisted"
	TeamRejected    TeamStatus = "rejected"
	TeamAwarded     TeamStatus = "awarded"
	TeamEnded       TeamStatus = "ended"
)

var AllTeamStatuses = []TeamStatus{
	TeamDraft, TeamSubmitted, TeamShortlisted, TeamRejected, TeamAwarded, TeamEnded,
}

// transitions is the single table of allowed per-team moves.
var transitions = map[TeamStatus][]TeamStatus{
	TeamDraft:       {TeamSubmitted},
	TeamSubmitted:   {TeamShortlisted, TeamRejected},
	TeamRejected:    {TeamSubmitted},
	// a new certificate scan sends a shortlisted team back to review
	TeamShortlisted: {TeamAwarded, TeamEnded, TeamSubmitted},
	TeamEnded:       {TeamDraft},
	TeamAwarded:     nil,
}

func ParseTeamStatus(s string) (TeamStatus, bool) {
	st := TeamStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s TeamStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s TeamStatus) CanTransitionTo(to TeamStatus) bool {
	for _, v := range transitions[s] {
		if v == to {
			return true
		}
	}
	return false
}

// IsLocked: awarded teams accept no further changes.
func (s TeamStatus) IsLocked() bool { return s == TeamAwarded }

// AttachmentTarget is the status a team lands in after a new attachment upload:
// submitted for every team the table lets move there, ended stays ended. ok is
// false when the team is locked.
func (s TeamStatus) AttachmentTarget() (TeamStatus, bool) {
	switch {
	case s.IsLocked():
		return s, false
	case s == TeamEnded, s == TeamSubmitted:
		return s, true
	case s.CanTransitionTo(TeamSubmitted):
		return TeamSubmitted, true
	}
	return s, false
}
