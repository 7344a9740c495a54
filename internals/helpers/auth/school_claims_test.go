// file: internals/helpers/auth/school_claims_test.go
package helper

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
)

// runWithLocals executes fn inside a real request so the guards read genuine
// fiber Locals, and returns whatever error fn produced.
func runWithLocals(t *testing.T, locals map[string]any, fn func(c *fiber.Ctx) error) error {
	t.Helper()
	app := fiber.New()
	var out error
	app.Get("/g", func(c *fiber.Ctx) error {
		for k, v := range locals {
			c.Locals(k, v)
		}
		out = fn(c)
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/g", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return out
}

func fiberCode(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected a fiber error, got %v", err)
	return fe.Code
}

func TestGetActiveSchoolID(t *testing.T) {
	want := uuid.New()

	t.Run("string local", func(t *testing.T) {
		err := runWithLocals(t, map[string]any{LocActiveSchoolID: want.String()}, func(c *fiber.Ctx) error {
			got, err := GetActiveSchoolID(c)
			assert.Equal(t, want, got)
			return err
		})
		assert.NoError(t, err)
	})
	t.Run("missing", func(t *testing.T) {
		err := runWithLocals(t, nil, func(c *fiber.Ctx) error {
			_, err := GetActiveSchoolID(c)
			return err
		})
		assert.Equal(t, fiber.StatusUnauthorized, fiberCode(t, err))
	})
	t.Run("garbage", func(t *testing.T) {
		err := runWithLocals(t, map[string]any{LocActiveSchoolID: "not-a-uuid"}, func(c *fiber.Ctx) error {
			_, err := GetActiveSchoolID(c)
			return err
		})
		assert.Equal(t, fiber.StatusUnauthorized, fiberCode(t, err))
	})
}

func schoolRoleLocals(schoolID uuid.UUID, roles ...string) map[string]any {
	rs := make([]interface{}, 0, len(roles))
	for _, r := range roles {
		rs = append(rs, r)
	}
	return map[string]any{
		LocActiveSchoolID: schoolID.String(),
		LocSchoolRoles: []interface{}{
			map[string]any{"school_id": schoolID.String(), "roles": rs},
		},
	}
}

func TestRequireSchoolAdmin(t *testing.T) {
	schoolID := uuid.New()

	t.Run("bursar allowed", func(t *testing.T) {
		err := runWithLocals(t, schoolRoleLocals(schoolID, "bursar"), func(c *fiber.Ctx) error {
			return RequireSchoolAdmin(c, schoolID)
		})
		assert.NoError(t, err)
	})
	t.Run("teacher forbidden", func(t *testing.T) {
		err := runWithLocals(t, schoolRoleLocals(schoolID, "teacher"), func(c *fiber.Ctx) error {
			return RequireSchoolAdmin(c, schoolID)
		})
		assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
	})
	t.Run("foreign school forbidden", func(t *testing.T) {
		err := runWithLocals(t, schoolRoleLocals(schoolID, "admin"), func(c *fiber.Ctx) error {
			return RequireSchoolAdmin(c, uuid.New())
		})
		assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
	})
	t.Run("owner bypass", func(t *testing.T) {
		err := runWithLocals(t, map[string]any{LocIsOwner: true}, func(c *fiber.Ctx) error {
			return RequireSchoolAdmin(c, schoolID)
		})
		assert.NoError(t, err)
	})
}

func TestRequireSchoolStaff(t *testing.T) {
	schoolID := uuid.New()
	err := runWithLocals(t, schoolRoleLocals(schoolID, "teacher"), func(c *fiber.Ctx) error {
		return RequireSchoolStaff(c, schoolID)
	})
	assert.NoError(t, err)
}

func TestRequireWritesOpen(t *testing.T) {
	schoolID := uuid.New()

	t.Run("open by default", func(t *testing.T) {
		err := runWithLocals(t, nil, func(c *fiber.Ctx) error {
			return RequireWritesOpen(c, schoolID)
		})
		assert.NoError(t, err)
	})
	t.Run("locked is a policy rejection", func(t *testing.T) {
		err := runWithLocals(t, map[string]any{LocWritesLocked: true}, func(c *fiber.Ctx) error {
			return RequireWritesOpen(c, schoolID)
		})
		var pe *helper.PolicyError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, schoolID.String(), pe.Details["school_id"])
	})
	t.Run("string claim", func(t *testing.T) {
		err := runWithLocals(t, map[string]any{LocWritesLocked: "true"}, func(c *fiber.Ctx) error {
			return RequireWritesOpen(c, schoolID)
		})
		assert.Error(t, err)
	})
}

func TestRequireAllStopsAtFirstFailure(t *testing.T) {
	schoolID := uuid.New()
	boom := fiber.NewError(fiber.StatusForbidden, "nope")
	calls := 0

	g := RequireAll(
		func(c *fiber.Ctx, id uuid.UUID) error { calls++; return boom },
		func(c *fiber.Ctx, id uuid.UUID) error { calls++; return nil },
	)
	err := runWithLocals(t, nil, func(c *fiber.Ctx) error {
		return g(c, schoolID)
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}
