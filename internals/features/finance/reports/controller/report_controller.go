// file: internals/features/finance/reports/controller/report_controller.go
package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	reportService "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/reports/service"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
	helperAuth "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers/auth"
)

type ReportController struct {
	DB  *gorm.DB
	Svc *reportService.ReportService
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db, Svc: reportService.NewReportService(db)}
}

func yearTermQuery(c *fiber.Ctx) (string, int, error) {
	year := strings.TrimSpace(c.Query("academic_year"))
	term := c.QueryInt("term")
	if year == "" || term < 1 || term > 3 {
		return "", 0, fiber.NewError(fiber.StatusBadRequest, "academic_year and term (1-3) are required")
	}
	return year, term, nil
}

// GET /api/a/fees/reports/class-summary?academic_year=&term=&class_id=&export=
func (ctrl *ReportController) ClassSummary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	year, term, err := yearTermQuery(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	var classID *uuid.UUID
	if raw := c.Query("class_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid class_id")
		}
		classID = &id
	}

	rows, err := ctrl.Svc.ClassSummary(schoolID, year, term, classID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to build class summary")
	}

	if format := c.Query("export"); format != "" {
		base := helper.ExportFilename("class_summary", year, "T"+strconv.Itoa(term))
		return helper.SendTable(c, format, base, reportService.ClassSummaryTable(rows))
	}
	return helper.JsonOK(c, "Class summary fetched", rows)
}

// GET /api/a/fees/reports/defaulters?academic_year=&term=&min_balance=&export=
func (ctrl *ReportController) Defaulters(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	year, term, err := yearTermQuery(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	filter := reportService.DefaulterFilter{
		AcademicYear:  year,
		Term:          term,
		MinBalanceKES: int64(c.QueryInt("min_balance", 1)),
		Limit:         c.QueryInt("limit", 50),
	}
	if raw := c.Query("class_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid class_id")
		}
		filter.ClassID = &id
	}

	rows, err := ctrl.Svc.Defaulters(schoolID, filter)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to build defaulters report")
	}

	if format := c.Query("export"); format != "" {
		base := helper.ExportFilename("defaulters", year, "T"+strconv.Itoa(term))
		return helper.SendTable(c, format, base, reportService.DefaultersTable(rows))
	}
	return helper.JsonOK(c, "Defaulters fetched", rows)
}

// parseDateRange reads the inclusive from/to day filters; both are required.
// The returned upper bound is exclusive so the scan covers the whole last day.
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	const day = "2006-01-02"
	from, err := time.Parse(day, strings.TrimSpace(fromRaw))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := time.Parse(day, strings.TrimSpace(toRaw))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	toEx := to.Add(24 * time.Hour)
	if !from.Before(toEx) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
	}
	return from, toEx, nil
}

// GET /api/a/fees/reports/collections?from=&to=&export=
// from and to are required YYYY-MM-DD; the range is inclusive on both ends.
func (ctrl *ReportController) Collections(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	rows, err := ctrl.Svc.Collections(schoolID, from, to)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to build collections report")
	}

	if format := c.Query("export"); format != "" {
		base := helper.ExportFilename("collections", c.Query("from"), c.Query("to"))
		return helper.SendTable(c, format, base, reportService.CollectionsTable(rows))
	}
	return helper.JsonOK(c, "Collections fetched", rows)
}
