// file: internals/features/finance/reports/controller/report_controller_test.go
package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badRequest(t *testing.T, err error) {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected a fiber error, got %v", err)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestParseDateRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		from, to, err := parseDateRange("2026-08-01", "2026-08-20")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)
		// upper bound is exclusive so the 20th itself is covered
		assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("single day", func(t *testing.T) {
		from, to, err := parseDateRange("2026-08-20", "2026-08-20")
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, to.Sub(from))
	})

	t.Run("missing from", func(t *testing.T) {
		_, _, err := parseDateRange("", "2026-08-20")
		badRequest(t, err)
	})

	t.Run("missing to", func(t *testing.T) {
		_, _, err := parseDateRange("2026-08-01", "")
		badRequest(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := parseDateRange("20/08/2026", "2026-08-20")
		badRequest(t, err)
	})

	t.Run("inverted", func(t *testing.T) {
		_, _, err := parseDateRange("2026-08-20", "2026-08-01")
		badRequest(t, err)
	})
}
