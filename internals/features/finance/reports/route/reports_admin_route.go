// file: internals/features/finance/reports/route/reports_admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	reportCtrl "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/reports/controller"
)

func ReportsAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := reportCtrl.NewReportController(db)

	reports := admin.Group("/reports")
	reports.Get("/class-summary", ctrl.ClassSummary)
	reports.Get("/defaulters", ctrl.Defaulters)
	reports.Get("/collections", ctrl.Collections)
}
