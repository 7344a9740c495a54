// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	feesRoute "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/route"
	invoicesRoute "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/route"
	paymentsRoute "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/route"
	reportsRoute "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/reports/route"
)

// FinanceAdminRoutes mounts the whole fee ledger under the admin group:
// /api/a/fees/{fee-items,fee-plans,invoices,payments,reports}.
func FinanceAdminRoutes(admin fiber.Router, db *gorm.DB) {
	fees := admin.Group("/fees")

	feesRoute.FeesAdminRoutes(fees, db)
	invoicesRoute.InvoicesAdminRoutes(fees, db)
	paymentsRoute.PaymentsAdminRoutes(fees, db)
	reportsRoute.ReportsAdminRoutes(fees, db)
}
