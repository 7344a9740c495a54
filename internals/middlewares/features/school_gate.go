// file: internals/middlewares/features/school_gate.go
package features

import (
	"github.com/gofiber/fiber/v2"

	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
	helperAuth "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers/auth"
)

// UseSchoolScope rejects any request whose token does not resolve a tenant.
// No ledger component runs without a resolved school.
func UseSchoolScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := helperAuth.GetActiveSchoolID(c); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "no active school resolved for this request")
		}
		return c.Next()
	}
}

// GateWrites blocks mutating methods when the entitlement gate is closed.
func GateWrites() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := c.Method()
		if m != fiber.MethodPost && m != fiber.MethodPut && m != fiber.MethodPatch && m != fiber.MethodDelete {
			return c.Next()
		}
		sid, err := helperAuth.GetActiveSchoolID(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "no active school resolved for this request")
		}
		if err := helperAuth.RequireWritesOpen(c, sid); err != nil {
			return helper.WriteServiceError(c, err)
		}
		return c.Next()
	}
}
