// file: internals/route/index.go
package route

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Ehud-Guzman/granite-sms-sub001/internals/route/details"

	authMiddleware "github.com/Ehud-Guzman/granite-sms-sub001/internals/middlewares/auth"
	featureMiddleware "github.com/Ehud-Guzman/granite-sms-sub001/internals/middlewares/features"
)

// SetupRoutes wires the three surfaces:
//
//	/api/public — health and other unauthenticated endpoints
//	/api/u      — authenticated, no tenant requirement (reserved)
//	/api/a      — admin surface, tenant-scoped + write-gated; the fee
//	              ledger lives here
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("[ERROR] JWT_SECRET is not set")
	}
	jwtAuth := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              secret,
		AllowCookieFallback: true,
	})

	api := app.Group("/api")

	public := api.Group("/public")
	public.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false, "message": "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})

	// Authenticated, tenant optional. Kept as a mount point for non-ledger
	// user features.
	_ = api.Group("/u", jwtAuth)

	admin := api.Group("/a",
		jwtAuth,
		featureMiddleware.UseSchoolScope(),
		featureMiddleware.GateWrites(),
	)
	details.FinanceAdminRoutes(admin, db)
}
