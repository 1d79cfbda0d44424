package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"compaward_backend/internals/features/awards/reports/dto"
)

const reportSheet = "Awards"

// AwardLine renders one award as "[YYYY-MM-DD] <competition> - <level>".
func AwardLine(a dto.ReportAward) string {
	return fmt.Sprintf("[%s] %s - %s", a.AwardDate, a.CompetitionName, a.AwardLevel)
}

// ReportWorkbook lays the report out as a single sheet. Students show major
// and class in the fourth column, teachers their title.
func ReportWorkbook(rows []dto.ReportRow, groupBy string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		f.Close()
		return nil, err
	}

	teacher := strings.EqualFold(groupBy, dto.GroupByTeacher)
	fourth := "Major / Class"
	if teacher {
		fourth = "Title"
	}
	header := []interface{}{"ID", "Name", "Department", fourth, "Awards"}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	headStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(reportSheet, "A1", "E1", headStyle); err != nil {
		f.Close()
		return nil, err
	}

	for i, r := range rows {
		lines := make([]string, 0, len(r.Awards))
		for _, a := range r.Awards {
			lines = append(lines, AwardLine(a))
		}
		detail := r.Title
		if !teacher {
			detail = r.Major + " / " + r.Clazz
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{r.UserID, r.RealName, r.Department, detail, strings.Join(lines, "\n")}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
		awardCell, _ := excelize.CoordinatesToCellName(5, i+2)
		if err := f.SetCellStyle(reportSheet, awardCell, awardCell, wrapStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	_ = f.SetColWidth(reportSheet, "A", "B", 16)
	_ = f.SetColWidth(reportSheet, "C", "D", 20)
	_ = f.SetColWidth(reportSheet, "E", "E", 60)
	return f, nil
}
