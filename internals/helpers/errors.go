// file: internals/helpers/errors.go
package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

/* ===============================
   Error taxonomy
=================================*/

// PolicyError is a business-rule rejection (overpayment, void with active
// payments, write gate closed). It carries the numeric state the client
// needs to correct the request.
type PolicyError struct {
	Message string
	Details fiber.Map
}

func (e *PolicyError) Error() string { return e.Message }

func NewPolicyError(msg string, details fiber.Map) *PolicyError {
	return &PolicyError{Message: msg, Details: details}
}

// --- PG error mapping ---

type pgSQLErr interface {
	SQLState() string
	Error() string
}

// IsUniqueViolation reports SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr pgSQLErr
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}

// IsForeignKeyViolation reports SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	var pgErr pgSQLErr
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23503"
}

// WriteServiceError maps a service-layer error onto the response shape:
// *PolicyError → 400 POLICY_VIOLATION with details, *fiber.Error → its
// status, unique violation → 409, FK violation → 400, anything else → 500.
func WriteServiceError(c *fiber.Ctx, err error) error {
	var pe *PolicyError
	if errors.As(err, &pe) {
		return JsonErrorWith(c, fiber.StatusBadRequest, "POLICY_VIOLATION", pe.Message, pe.Details)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	if IsUniqueViolation(err) {
		return JsonError(c, fiber.StatusConflict, "duplicate record (unique violation)")
	}
	if IsForeignKeyViolation(err) {
		return JsonError(c, fiber.StatusBadRequest, "referenced record not found (FK violation)")
	}
	return JsonError(c, fiber.StatusInternalServerError, err.Error())
}
