// file: internals/features/finance/payments/service/payment_ledger_db_test.go
package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func invoiceRow(invID, schoolID uuid.UUID, status invModel.InvoiceStatus, total, paid, balance int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"invoice_id", "invoice_school_id", "invoice_student_id",
		"invoice_academic_year", "invoice_term", "invoice_seq", "invoice_no",
		"invoice_total_kes", "invoice_paid_kes", "invoice_balance_kes", "invoice_status",
	}).AddRow(
		invID.String(), schoolID.String(), uuid.NewString(),
		"2026", 1, int64(3), "INV-000003",
		total, paid, balance, string(status),
	)
}

func paymentRow(payID, schoolID, invID uuid.UUID, amount int64, clientTxnID *string, reversed bool) *sqlmock.Rows {
	var txn any
	if clientTxnID != nil {
		txn = *clientTxnID
	}
	return sqlmock.NewRows([]string{
		"payment_id", "payment_school_id", "payment_invoice_id",
		"payment_amount_kes", "payment_method", "payment_client_txn_id",
		"payment_receipt_seq", "payment_receipt_no",
		"payment_is_reversed", "payment_received_at",
	}).AddRow(
		payID.String(), schoolID.String(), invID.String(),
		amount, payModel.MethodCash, txn,
		int64(1), "RCT-000001",
		reversed, time.Now().UTC(),
	)
}

func fiberStatus(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected a fiber error, got %v", err)
	return fe.Code
}

// A posting lands both sides together: the payment row plus the invoice's
// paid/balance/status, all derived through the gateway.
func TestPostPaymentAppliesAndPersists(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, invID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE \(?invoice_id`).
		WillReturnRows(invoiceRow(invID, schoolID, invModel.InvoiceStatusIssued, 5000, 0, 5000))
	mock.ExpectQuery(`SELECT COALESCE`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow(uuid.NewString()))
	mock.ExpectExec(`UPDATE "invoices" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := PostPayment(db, PostInput{
		SchoolID:  schoolID,
		InvoiceID: invID,
		AmountKES: 2000,
		Method:    payModel.MethodCash,
	})
	require.NoError(t, err)

	assert.False(t, res.Idempotent)
	assert.Equal(t, "RCT-000001", res.Payment.PaymentReceiptNo)
	assert.EqualValues(t, 2000, res.Invoice.InvoicePaidKES)
	assert.EqualValues(t, 3000, res.Invoice.InvoiceBalanceKES)
	assert.Equal(t, invModel.InvoiceStatusPartiallyPaid, res.Invoice.InvoiceStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Replaying a client_txn_id returns the original payment and leaves the
// invoice untouched; the absence of INSERT/UPDATE expectations proves no
// second write happened.
func TestPostPaymentIdempotentReplay(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, invID, payID := uuid.New(), uuid.New(), uuid.New()
	key := "till-7741-0042"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE \(?payment_school_id`).
		WillReturnRows(paymentRow(payID, schoolID, invID, 2000, &key, false))
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE \(?invoice_id`).
		WillReturnRows(invoiceRow(invID, schoolID, invModel.InvoiceStatusPartiallyPaid, 5000, 2000, 3000))
	mock.ExpectCommit()

	res, err := PostPayment(db, PostInput{
		SchoolID:    schoolID,
		InvoiceID:   invID,
		AmountKES:   2000,
		Method:      payModel.MethodCash,
		ClientTxnID: &key,
	})
	require.NoError(t, err)

	assert.True(t, res.Idempotent)
	assert.Equal(t, payID, res.Payment.PaymentID)
	assert.EqualValues(t, 2000, res.Invoice.InvoicePaidKES)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The same key with a different amount is a collision, not a retry.
func TestPostPaymentClientTxnCollision(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, invID := uuid.New(), uuid.New()
	key := "till-7741-0042"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE \(?payment_school_id`).
		WillReturnRows(paymentRow(uuid.New(), schoolID, invID, 9999, &key, false))
	mock.ExpectRollback()

	_, err := PostPayment(db, PostInput{
		SchoolID:    schoolID,
		InvoiceID:   invID,
		AmountKES:   2000,
		Method:      payModel.MethodCash,
		ClientTxnID: &key,
	})
	assert.Equal(t, fiber.StatusConflict, fiberStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Reversal puts the money back on the invoice and stamps the payment; the
// invoice falls back to ISSUED once paid returns to zero.
func TestReversePaymentRestoresInvoice(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, invID, payID, actorID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE \(?payment_id`).
		WillReturnRows(paymentRow(payID, schoolID, invID, 3000, nil, false))
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE \(?invoice_id`).
		WillReturnRows(invoiceRow(invID, schoolID, invModel.InvoiceStatusPartiallyPaid, 5000, 3000, 2000))
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "invoices" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := ReversePayment(db, schoolID, payID, actorID, "wrong student")
	require.NoError(t, err)

	assert.True(t, res.Payment.PaymentIsReversed)
	require.NotNil(t, res.Payment.PaymentReversedAt)
	require.NotNil(t, res.Payment.PaymentReversalReason)
	assert.Equal(t, "wrong student", *res.Payment.PaymentReversalReason)

	assert.Zero(t, res.Invoice.InvoicePaidKES)
	assert.EqualValues(t, 5000, res.Invoice.InvoiceBalanceKES)
	assert.Equal(t, invModel.InvoiceStatusIssued, res.Invoice.InvoiceStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// is_reversed flips exactly once: a second reversal is rejected before any
// write happens.
func TestReversePaymentAlreadyReversed(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, payID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE \(?payment_id`).
		WillReturnRows(paymentRow(payID, schoolID, uuid.New(), 3000, nil, true))
	mock.ExpectRollback()

	_, err := ReversePayment(db, schoolID, payID, uuid.Nil, "again")
	assert.Equal(t, fiber.StatusConflict, fiberStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReversePaymentNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE \(?payment_id`).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))
	mock.ExpectRollback()

	_, err := ReversePayment(db, uuid.New(), uuid.New(), uuid.Nil, "gone")
	assert.Equal(t, fiber.StatusNotFound, fiberStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
