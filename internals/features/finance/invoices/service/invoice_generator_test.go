// file: internals/features/finance/invoices/service/invoice_generator_test.go
package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
)

func TestFormatInvoiceNo(t *testing.T) {
	assert.Equal(t, "INV-000001", FormatInvoiceNo(1))
	assert.Equal(t, "INV-000123", FormatInvoiceNo(123))
	assert.Equal(t, "INV-1000000", FormatInvoiceNo(1000000)) // grows past the pad
}

func planRow(planID, schoolID, classID uuid.UUID, year string, term int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"fee_plan_id", "fee_plan_school_id", "fee_plan_class_id",
		"fee_plan_academic_year", "fee_plan_term", "fee_plan_name", "fee_plan_is_active",
	}).AddRow(planID.String(), schoolID.String(), classID.String(), year, term, "Term Fees", true)
}

// A student already invoiced for the (year, term) gets a conflict back, and
// nothing is written.
func TestGenerateInvoiceDuplicatePeriodConflict(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := GenerateInvoice(db, GenerateInvoiceInput{
		SchoolID:     uuid.New(),
		StudentID:    uuid.New(),
		ClassID:      uuid.New(),
		FeePlanID:    uuid.New(),
		AcademicYear: "2026",
		Term:         1,
	})
	assert.Equal(t, fiber.StatusConflict, fiberStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateInvoiceUnknownPlan(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "fee_plans" WHERE \(?fee_plan_id`).
		WillReturnRows(sqlmock.NewRows([]string{"fee_plan_id"}))
	mock.ExpectRollback()

	_, err := GenerateInvoice(db, GenerateInvoiceInput{
		SchoolID:     uuid.New(),
		StudentID:    uuid.New(),
		ClassID:      uuid.New(),
		FeePlanID:    uuid.New(),
		AcademicYear: "2026",
		Term:         1,
	})
	assert.Equal(t, fiber.StatusNotFound, fiberStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The plan must target exactly the requested class, year and term; a plan for
// another class is a bad reference, not a fallback.
func TestGenerateInvoicePlanTargetMismatch(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, planID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "fee_plans" WHERE \(?fee_plan_id`).
		WillReturnRows(planRow(planID, schoolID, uuid.New(), "2026", 1))
	mock.ExpectQuery(`SELECT \* FROM "fee_plan_items"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"fee_plan_item_id", "fee_plan_item_plan_id", "fee_plan_item_item_id", "fee_plan_item_amount_kes",
		}))
	mock.ExpectRollback()

	_, err := GenerateInvoice(db, GenerateInvoiceInput{
		SchoolID:     schoolID,
		StudentID:    uuid.New(),
		ClassID:      uuid.New(), // not the plan's class
		FeePlanID:    planID,
		AcademicYear: "2026",
		Term:         1,
	})
	assert.Equal(t, fiber.StatusBadRequest, fiberStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Full single-student generation: lines snapshot the plan items and the
// invoice opens ISSUED with balance == total.
func TestGenerateInvoiceCreatesSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, studentID, classID, planID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	itemTuition, itemTransport := uuid.New(), uuid.New()
	invID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "fee_plans" WHERE \(?fee_plan_id`).
		WillReturnRows(planRow(planID, schoolID, classID, "2026", 1))
	mock.ExpectQuery(`SELECT \* FROM "fee_plan_items"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"fee_plan_item_id", "fee_plan_item_plan_id", "fee_plan_item_item_id", "fee_plan_item_amount_kes",
		}).
			AddRow(uuid.NewString(), planID.String(), itemTuition.String(), 3000).
			AddRow(uuid.NewString(), planID.String(), itemTransport.String(), 2000))
	mock.ExpectQuery(`SELECT \* FROM "fee_items"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"fee_item_id", "fee_item_school_id", "fee_item_name", "fee_item_is_active",
		}).
			AddRow(itemTuition.String(), schoolID.String(), "Tuition", true).
			AddRow(itemTransport.String(), schoolID.String(), "Transport", true))
	mock.ExpectQuery(`SELECT \* FROM "students" WHERE \(?student_id`).
		WillReturnRows(sqlmock.NewRows([]string{
			"student_id", "student_school_id", "student_class_id", "student_full_name", "student_is_active",
		}).AddRow(studentID.String(), schoolID.String(), classID.String(), "Achieng Otieno", true))
	mock.ExpectQuery(`SELECT COALESCE`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_id", "invoice_paid_kes"}).AddRow(invID.String(), 0))
	mock.ExpectQuery(`INSERT INTO "invoice_lines"`).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_line_id"}).
			AddRow(uuid.NewString()).
			AddRow(uuid.NewString()))
	mock.ExpectCommit()

	inv, err := GenerateInvoice(db, GenerateInvoiceInput{
		SchoolID:     schoolID,
		StudentID:    studentID,
		ClassID:      classID,
		FeePlanID:    planID,
		AcademicYear: "2026",
		Term:         1,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", inv.InvoiceNo)
	assert.EqualValues(t, 5000, inv.InvoiceTotalKES)
	assert.EqualValues(t, 5000, inv.InvoiceBalanceKES)
	assert.Zero(t, inv.InvoicePaidKES)
	assert.Equal(t, invModel.InvoiceStatusIssued, inv.InvoiceStatus)

	require.Len(t, inv.InvoiceLines, 2)
	assert.Equal(t, "Tuition", inv.InvoiceLines[0].InvoiceLineName)
	assert.EqualValues(t, 3000, inv.InvoiceLines[0].InvoiceLineAmountKES)
	assert.Equal(t, "Transport", inv.InvoiceLines[1].InvoiceLineName)
	assert.EqualValues(t, 2000, inv.InvoiceLines[1].InvoiceLineAmountKES)
	assert.NoError(t, mock.ExpectationsWereMet())
}
