package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	GroupByStudent = "student"
	GroupByTeacher = "teacher"
)

type ReportFilter struct {
	GroupBy   string
	StartDate *time.Time
	EndDate   *time.Time
}

type ReportAward struct {
	ID              uuid.UUID `json:"id"`
	CompetitionName string    `json:"competition_name"`
	AwardLevel      string    `json:"award_level"`
	AwardDate       string    `json:"award_date"`
}

// ReportRow is one person and the matching awards they appear on.
type ReportRow struct {
	UserID     string        `json:"user_id"`
	RealName   string        `json:"real_name"`
	Department string        `json:"department"`
	Major      string        `json:"major"`
	Clazz      string        `json:"clazz"`
	Title      string        `json:"title"`
	Awards     []ReportAward `json:"awards"`
}

type StatisticsFilter struct {
	StartYear int `query:"start_year"`
	EndYear   int `query:"end_year"`
}

type YearCount struct {
	Year       int     `json:"year"`
	Count      int64   `json:"count"`
	GrowthRate float64 `json:"growth_rate"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type Totals struct {
	Awards       int64 `json:"awards"`
	Competitions int64 `json:"competitions"`
	Participants int64 `json:"participants"`
}

type Statistics struct {
	Yearly       []YearCount  `json:"yearly"`
	ByCategory   []NamedCount `json:"by_category"`
	ByLevel      []NamedCount `json:"by_level"`
	ByDepartment []NamedCount `json:"by_department"`
	Totals       Totals       `json:"totals"`
}
