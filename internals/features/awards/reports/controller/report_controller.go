package controller

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/awards/reports/dto"
	"compaward_backend/internals/features/awards/reports/service"
	helper "compaward_backend/internals/helpers"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// GET /api/a/reports?group_by=student|teacher&start_date=&end_date=&format=xlsx
func (rc *ReportController) Report(c *fiber.Ctx) error {
	start, err := helper.ParseDateQuery(c, "start_date")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	end, err := helper.ParseDateQuery(c, "end_date")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	groupBy := strings.ToLower(strings.TrimSpace(c.Query("group_by", dto.GroupByStudent)))

	rows, err := service.Report(c.UserContext(), rc.DB, dto.ReportFilter{
		GroupBy:   groupBy,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	switch strings.ToLower(c.Query("format")) {
	case "xlsx", "excel":
		f, err := service.ReportWorkbook(rows, groupBy)
		if err != nil {
			log.Printf("[REPORT] workbook failed: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "failed to build report")
		}
		defer f.Close()
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			log.Printf("[REPORT] workbook write failed: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "failed to build report")
		}
		name := fmt.Sprintf("award_report_%s_%s.xlsx", groupBy, time.Now().Format("20060102"))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Send(buf.Bytes())
	}
	return helper.JsonOK(c, "report fetched", rows)
}

// GET /api/a/statistics?start_year=&end_year=
func (rc *ReportController) Statistics(c *fiber.Ctx) error {
	var f dto.StatisticsFilter
	if err := c.QueryParser(&f); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	out, err := service.Statistics(c.UserContext(), rc.DB, f)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "statistics fetched", out)
}
