// file: internals/features/finance/invoices/route/invoices_admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	invCtrl "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/controller"
)

func InvoicesAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := invCtrl.NewInvoiceController(db)

	invoices := admin.Group("/invoices")
	invoices.Post("/generate", ctrl.Generate)
	invoices.Post("/generate-batch", ctrl.GenerateBatch)
	invoices.Get("/", ctrl.List)
	invoices.Get("/:id", ctrl.GetByID)
	invoices.Post("/:id/void", ctrl.Void)
}
