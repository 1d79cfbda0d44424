package service

import (
	"context"
	"math"

	"gorm.io/gorm"

	"compaward_backend/internals/features/awards/reports/dto"
	"compaward_backend/internals/helpers/apperror"
)

// GrowthRates gives each count's change against the one before it, in percent
// rounded to two decimals. The first entry and any entry after a zero are 0.
func GrowthRates(counts []int64) []float64 {
	out := make([]float64, len(counts))
	for i := 1; i < len(counts); i++ {
		prev := counts[i-1]
		if prev == 0 {
			continue
		}
		r := float64(counts[i]-prev) / float64(prev) * 100
		out[i] = math.Round(r*100) / 100
	}
	return out
}

func yearScope(q *gorm.DB, f dto.StatisticsFilter) *gorm.DB {
	if f.StartYear > 0 {
		q = q.Where("a.award_year >= ?", f.StartYear)
	}
	if f.EndYear > 0 {
		q = q.Where("a.award_year <= ?", f.EndYear)
	}
	return q
}

// Statistics runs each aggregate as its own query over the awards in range.
func Statistics(ctx context.Context, db *gorm.DB, f dto.StatisticsFilter) (*dto.Statistics, error) {
	if f.StartYear > 0 && f.EndYear > 0 && f.EndYear < f.StartYear {
		return nil, apperror.FieldError("end_year", "end_year must not be before start_year")
	}
	db = db.WithContext(ctx)
	out := &dto.Statistics{}
	var err error

	if out.Yearly, err = yearly(db, f); err != nil {
		return nil, err
	}
	if out.ByCategory, err = byCatalog(db, f, "competition_categories", "c.category_id"); err != nil {
		return nil, err
	}
	if out.ByLevel, err = byCatalog(db, f, "competition_levels", "c.level_id"); err != nil {
		return nil, err
	}
	if out.ByDepartment, err = byDepartment(db, f); err != nil {
		return nil, err
	}
	if out.Totals, err = totals(db, f); err != nil {
		return nil, err
	}
	return out, nil
}

func yearly(db *gorm.DB, f dto.StatisticsFilter) ([]dto.YearCount, error) {
	var rows []struct {
		Year  int
		Count int64
	}
	if err := yearScope(db.Table("awards a"), f).
		Select("a.award_year AS year, COUNT(*) AS count").
		Group("a.award_year").
		Order("a.award_year").
		Scan(&rows).Error; err != nil {
		return nil, apperror.Internal(err, "yearly statistics")
	}
	if len(rows) == 0 {
		return []dto.YearCount{}, nil
	}

	// fill the gaps between the first and last year
	byYear := make(map[int]int64, len(rows))
	for _, r := range rows {
		byYear[r.Year] = r.Count
	}
	first, last := rows[0].Year, rows[len(rows)-1].Year
	counts := make([]int64, 0, last-first+1)
	for y := first; y <= last; y++ {
		counts = append(counts, byYear[y])
	}
	rates := GrowthRates(counts)

	out := make([]dto.YearCount, 0, len(counts))
	for i, c := range counts {
		out = append(out, dto.YearCount{Year: first + i, Count: c, GrowthRate: rates[i]})
	}
	return out, nil
}

func byCatalog(db *gorm.DB, f dto.StatisticsFilter, table, fk string) ([]dto.NamedCount, error) {
	out := []dto.NamedCount{}
	if err := yearScope(db.Table("awards a"), f).
		Select("t.name AS name, COUNT(a.id) AS count").
		Joins("JOIN competitions c ON c.id = a.competition_id").
		Joins("JOIN "+table+" t ON t.id = "+fk).
		Group("t.id, t.name").
		Order("count DESC, t.name").
		Scan(&out).Error; err != nil {
		return nil, apperror.Internal(err, "statistics by "+table)
	}
	return out, nil
}

// byDepartment counts distinct awards with at least one participant from the department.
func byDepartment(db *gorm.DB, f dto.StatisticsFilter) ([]dto.NamedCount, error) {
	out := []dto.NamedCount{}
	if err := yearScope(db.Table("awards a"), f).
		Select("p.department AS name, COUNT(DISTINCT a.id) AS count").
		Joins("JOIN award_participants ap ON ap.award_id = a.id").
		Joins("JOIN user_profiles p ON p.user_id = ap.participant_id").
		Where("p.department <> ''").
		Group("p.department").
		Order("count DESC, p.department").
		Scan(&out).Error; err != nil {
		return nil, apperror.Internal(err, "statistics by department")
	}
	return out, nil
}

func totals(db *gorm.DB, f dto.StatisticsFilter) (dto.Totals, error) {
	var t dto.Totals
	if err := yearScope(db.Table("awards a"), f).
		Select("COUNT(*) AS awards, COUNT(DISTINCT a.competition_id) AS competitions").
		Scan(&t).Error; err != nil {
		return t, apperror.Internal(err, "award totals")
	}
	if err := yearScope(db.Table("award_participants ap").Joins("JOIN awards a ON a.id = ap.award_id"), f).
		Select("COUNT(DISTINCT ap.participant_id)").
		Scan(&t.Participants).Error; err != nil {
		return t, apperror.Internal(err, "participant totals")
	}
	return t, nil
}
