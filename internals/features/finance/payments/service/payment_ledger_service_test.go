// file: internals/features/finance/payments/service/payment_ledger_service_test.go
package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
)

func TestFormatReceiptNo(t *testing.T) {
	assert.Equal(t, "RCT-000001", FormatReceiptNo(1))
	assert.Equal(t, "RCT-004217", FormatReceiptNo(4217))
}

func TestSameAttempt(t *testing.T) {
	invoiceID := uuid.New()
	key := "txn-2026-0001"
	existing := &payModel.Payment{
		PaymentInvoiceID:   invoiceID,
		PaymentAmountKES:   2000,
		PaymentClientTxnID: &key,
	}

	base := PostInput{InvoiceID: invoiceID, AmountKES: 2000, ClientTxnID: &key}

	t.Run("exact replay", func(t *testing.T) {
		assert.True(t, sameAttempt(existing, base))
	})
	t.Run("same key different amount is a collision", func(t *testing.T) {
		in := base
		in.AmountKES = 3000
		assert.False(t, sameAttempt(existing, in))
	})
	t.Run("same key different invoice is a collision", func(t *testing.T) {
		in := base
		in.InvoiceID = uuid.New()
		assert.False(t, sameAttempt(existing, in))
	})
}
