package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"compaward_backend/internals/features/awards/reports/dto"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/dbtime"
)

type reportLine struct {
	InstitutionalID string
	RealName        string
	Department      string
	Major           string
	Clazz           string
	Title           string
	AwardID         uuid.UUID
	Competition     string
	AwardLevel      string
	AwardDate       time.Time
}

func linkFor(groupBy string) (table, col string, err error) {
	switch strings.ToLower(strings.TrimSpace(groupBy)) {
	case "", dto.GroupByStudent:
		return "award_participants", "participant_id", nil
	case dto.GroupByTeacher:
		return "award_instructors", "instructor_id", nil
	}
	return "", "", apperror.FieldError("group_by", "group_by must be student or teacher")
}

// Report lists every participant (or instructor) of the awards dated inside
// the range, each with those awards, ordered by institutional id.
func Report(ctx context.Context, db *gorm.DB, f dto.ReportFilter) ([]dto.ReportRow, error) {
	table, col, err := linkFor(f.GroupBy)
	if err != nil {
		return nil, err
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return nil, apperror.FieldError("end_date", "end_date must not be before start_date")
	}

	q := db.WithContext(ctx).
		Table(table+" l").
		Select(`u.institutional_id, COALESCE(p.real_name, '') AS real_name,
			COALESCE(p.department, '') AS department, COALESCE(p.major, '') AS major,
			COALESCE(p.clazz, '') AS clazz, COALESCE(p.title, '') AS title,
			a.id AS award_id, c.title AS competition, a.award_level, a.award_date`).
		Joins("JOIN awards a ON a.id = l.award_id").
		Joins("JOIN users u ON u.id = l."+col).
		Joins("LEFT JOIN user_profiles p ON p.user_id = u.id").
		Joins("JOIN competitions c ON c.id = a.competition_id")
	if f.StartDate != nil {
		q = q.Where("a.award_date >= ?", dbtime.DateOnly(*f.StartDate))
	}
	if f.EndDate != nil {
		q = q.Where("a.award_date <= ?", dbtime.DateOnly(*f.EndDate))
	}

	var lines []reportLine
	if err := q.Order("u.institutional_id, a.award_date, a.id").Scan(&lines).Error; err != nil {
		return nil, apperror.Internal(err, "build award report")
	}

	out := make([]dto.ReportRow, 0)
	for _, ln := range lines {
		if n := len(out); n == 0 || out[n-1].UserID != ln.InstitutionalID {
			out = append(out, dto.ReportRow{
				UserID:     ln.InstitutionalID,
				RealName:   ln.RealName,
				Department: ln.Department,
				Major:      ln.Major,
				Clazz:      ln.Clazz,
				Title:      ln.Title,
				Awards:     []dto.ReportAward{},
			})
		}
		last := &out[len(out)-1]
		last.Awards = append(last.Awards, dto.ReportAward{
			ID:              ln.AwardID,
			CompetitionName: ln.Competition,
			AwardLevel:      ln.AwardLevel,
			AwardDate:       ln.AwardDate.Format("2006-01-02"),
		})
	}
	return out, nil
}
