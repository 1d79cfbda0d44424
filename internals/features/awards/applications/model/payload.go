package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"compaward_backend/internals/helpers/apperror"
)

const PayloadVersion = 1

// ApplicationPayload is the competition and people data carried by an
// application until it is approved.
type ApplicationPayload struct {
	Version int `json:"version"`

	CompetitionID    *uuid.UUID `json:"competition_id,omitempty"`
	CompetitionTitle string     `json:"competition_title,omitempty"`
	Year             int        `json:"year,omitempty"`
	CategoryID       uint       `json:"category_id,omitempty"`
	LevelID          uint       `json:"level_id,omitempty"`
	Description      string     `json:"description,omitempty"`
	URI              string     `json:"uri,omitempty"`

	ParticipantIDs []string `json:"participant_ids"`
	InstructorIDs  []string `json:"instructor_ids"`
}

// Validate checks shape only. References are checked at approval time.
func (p ApplicationPayload) Validate() error {
	fields := map[string][]string{}
	add := func(f, msg string) { fields[f] = append(fields[f], msg) }

	if p.Version != PayloadVersion {
		add("version", fmt.Sprintf("unsupported payload version %d", p.Version))
	}
	if p.CompetitionID == nil {
		if strings.TrimSpace(p.CompetitionTitle) == "" {
			add("competition_title", "required when competition_id is empty")
		}
		if p.Year < 1900 || p.Year > 3000 {
			add("year", "must be between 1900 and 3000")
		}
		if p.CategoryID == 0 {
			add("category_id", "required when competition_id is empty")
		}
		if p.LevelID == 0 {
			add("level_id", "required when competition_id is empty")
		}
	}
	if len(cleanIDs(p.ParticipantIDs)) == 0 {
		add("participant_ids", "at least one participant is required")
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid application payload", fields)
	}
	return nil
}

// Normalized trims and de-duplicates the id lists and pins the version.
func (p ApplicationPayload) Normalized() ApplicationPayload {
	if p.Version == 0 {
		p.Version = PayloadVersion
	}
	p.CompetitionTitle = strings.TrimSpace(p.CompetitionTitle)
	p.ParticipantIDs = cleanIDs(p.ParticipantIDs)
	p.InstructorIDs = cleanIDs(p.InstructorIDs)
	return p
}

func cleanIDs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
