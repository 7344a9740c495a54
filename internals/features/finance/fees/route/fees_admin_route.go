// file: internals/features/finance/fees/route/fees_admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	feeCtrl "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/controller"
)

// FeesAdminRoutes mounts the catalog + plan endpoints under the admin group.
func FeesAdminRoutes(admin fiber.Router, db *gorm.DB) {
	itemCtrl := feeCtrl.NewFeeItemController(db)
	planCtrl := feeCtrl.NewFeePlanController(db)

	items := admin.Group("/fee-items")
	items.Post("/", itemCtrl.Create)
	items.Get("/", itemCtrl.List)
	items.Patch("/:id", itemCtrl.Update)
	items.Post("/:id/deactivate", itemCtrl.Deactivate)

	plans := admin.Group("/fee-plans")
	plans.Post("/", planCtrl.Create)
	plans.Get("/", planCtrl.List)
	plans.Get("/:id", planCtrl.GetByID)
	plans.Post("/:id/deactivate", planCtrl.Deactivate)
}
