// file: internals/features/finance/payments/route/payments_admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	payCtrl "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/controller"
	"github.com/Ehud-Guzman/granite-sms-sub001/internals/middlewares"
)

func PaymentsAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := payCtrl.NewPaymentController(db)

	// Writes get the tighter limiter: posting retries under flaky networks
	// are expected and the idempotency key absorbs them, but storms should
	// back off at the edge.
	writeLimit := middlewares.LedgerWriteRateLimiter()

	payments := admin.Group("/payments")
	payments.Post("/", writeLimit, ctrl.Post)
	payments.Get("/", ctrl.List)
	payments.Post("/:id/reverse", writeLimit, ctrl.Reverse)
	payments.Get("/:id/receipt", ctrl.Receipt)
}
